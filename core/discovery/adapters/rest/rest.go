// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rest is the discovery engine's HTTP adapter. This API has no
// OpenAPI document or generated handlers, so handlers are hand-routed
// with echo and report
// failures as RFC7807 problem documents the same way the rest of the
// repository does (modules/middleware/problem). The returned *echo.Echo
// is itself an http.Handler and mounts onto the stdlib server's mux like
// any other sub-router.
package rest

import (
	"errors"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"app/core/discovery/config"
	"app/core/discovery/domain"
	"app/modules/middleware/problem"
)

// API is the discovery engine's HTTP adapter.
type API struct {
	app    *domain.Application
	matrix config.MatrixConfig
}

// NewAPI constructs the echo router for the discovery endpoints.
func NewAPI(app *domain.Application, matrixConfig config.MatrixConfig) *API {
	return &API{app: app, matrix: matrixConfig}
}

// Register implements modules/server.RegistrableService: it mounts the
// echo router built by Mount under the /profile_api/ prefix on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.Handle("/profile_api/", a.Mount())
}

// Middlewares implements modules/server.RegistrableService. The discovery
// adapter's own middleware (panic recovery) is installed on the echo
// instance in Mount, so no additional global middleware is required here.
func (a *API) Middlewares() []func(http.Handler) http.Handler {
	return nil
}

// Mount registers every discovery route on a fresh echo.Echo and returns
// it; the caller mounts it at a path prefix on the outer mux.
func (a *API) Mount() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.POST("/profile_api/next_page", a.nextPage)
	e.POST("/profile_api/reset_iterator", a.resetIterator)
	e.GET("/profile_api/location", a.getLocation)
	e.PUT("/profile_api/location", a.putLocation)

	return e
}

// --- request/response shapes ---

type attributeFilterRequest struct {
	AttributeID            int32   `json:"attribute_id"`
	Bitflags               uint16  `json:"bitflags,omitempty"`
	TopLevel               int32   `json:"top_level,omitempty"`
	SubLevel               *int32  `json:"sub_level,omitempty"`
	Numbers                []int32 `json:"numbers,omitempty"`
	AcceptMissingAttribute bool    `json:"accept_missing_attribute"`
}

type nextPageRequest struct {
	AccountID        uuid.UUID                `json:"account_id"`
	Age              int                      `json:"age"`
	SearchAgeMin     int                      `json:"search_age_min"`
	SearchAgeMax     int                      `json:"search_age_max"`
	SearchGroups     uint16                   `json:"search_groups"`
	AttributeFilters []attributeFilterRequest `json:"attribute_filters"`
	PageSize         int                      `json:"page_size"`
}

type profileLinkResponse struct {
	AccountID      uuid.UUID `json:"account_id"`
	ProfileVersion int64     `json:"profile_version"`
	ContentVersion int64     `json:"content_version"`
	ETag           string    `json:"etag"`
}

type resetIteratorRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type putLocationRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type locationResponse struct {
	CellX uint16 `json:"cell_x"`
	CellY uint16 `json:"cell_y"`
}

func (a *API) nextPage(c echo.Context) error {
	var req nextPageRequest
	if err := c.Bind(&req); err != nil {
		return writeProblem(c, problem.BadRequest("malformed request body"))
	}

	filters := make([]domain.AttributeFilter, 0, len(req.AttributeFilters))
	for _, f := range req.AttributeFilters {
		if len(f.Numbers) > domain.MaxNumberListFilterValues {
			return writeProblem(c, problem.BadRequest("too many number-list filter values"))
		}
		filters = append(filters, domain.AttributeFilter{
			AttributeID:            f.AttributeID,
			Bitflags:               f.Bitflags,
			TopLevel:               f.TopLevel,
			SubLevel:               f.SubLevel,
			Numbers:                f.Numbers,
			AcceptMissingAttribute: f.AcceptMissingAttribute,
		})
	}

	filter := domain.NewViewerFilter(
		domain.ProfileAge(req.Age),
		domain.AgeRange{Min: domain.ProfileAge(req.SearchAgeMin), Max: domain.ProfileAge(req.SearchAgeMax)},
		domain.SearchGroupFlags(req.SearchGroups),
		filters,
	)

	links, err := a.app.NextPage(c.Request().Context(), req.AccountID, filter, req.PageSize)
	if err != nil {
		return writeProblem(c, problemFromDomainError(err))
	}

	resp := make([]profileLinkResponse, len(links))
	for i, l := range links {
		resp[i] = profileLinkResponse{AccountID: l.AccountID, ProfileVersion: l.ProfileVersion, ContentVersion: l.ContentVersion, ETag: l.ETag}
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *API) resetIterator(c echo.Context) error {
	var req resetIteratorRequest
	if err := c.Bind(&req); err != nil {
		return writeProblem(c, problem.BadRequest("malformed request body"))
	}

	m, err := a.matrix.NewMatrix()
	if err != nil {
		return writeProblem(c, problem.Internal("matrix unavailable"))
	}
	cell := a.matrix.CellKey(m, req.Latitude, req.Longitude)

	if err := a.app.ResetIterator(c.Request().Context(), req.AccountID, cell); err != nil {
		return writeProblem(c, problemFromDomainError(err))
	}
	return c.NoContent(http.StatusNoContent)
}

// getLocation and putLocation implement the SPEC_FULL supplemented
// "profile location" endpoints: a viewer reads back which cell they are
// currently indexed under, or pushes a new raw location which the caller
// then feeds into ProfileMoved.
func (a *API) getLocation(c echo.Context) error {
	rawID := c.QueryParam("account_id")
	accountID, err := uuid.FromString(rawID)
	if err != nil {
		return writeProblem(c, problem.BadRequest("invalid account_id"))
	}

	cell, ok := a.app.CurrentCell(accountID)
	if !ok {
		return writeProblem(c, problem.New(problem.WithStatus(http.StatusNotFound), problem.WithTitle("Not Found"), problem.WithDetail("no known location for account")))
	}
	return c.JSON(http.StatusOK, locationResponse{CellX: cell.X, CellY: cell.Y})
}

func (a *API) putLocation(c echo.Context) error {
	var req putLocationRequest
	if err := c.Bind(&req); err != nil {
		return writeProblem(c, problem.BadRequest("malformed request body"))
	}

	m, err := a.matrix.NewMatrix()
	if err != nil {
		return writeProblem(c, problem.Internal("matrix unavailable"))
	}
	cell := a.matrix.CellKey(m, req.Latitude, req.Longitude)

	a.app.ProfileMoved(c.Request().Context(), req.AccountID, cell)
	return c.JSON(http.StatusOK, locationResponse{CellX: cell.X, CellY: cell.Y})
}

func writeProblem(c echo.Context, p *problem.Problem) error {
	c.Response().Header().Set("Content-Type", "application/problem+json")
	return c.JSON(p.Status, p)
}

func problemFromDomainError(err error) *problem.Problem {
	switch {
	case errors.Is(err, domain.ErrInvalidData):
		return problem.BadRequest(err.Error())
	case errors.Is(err, domain.ErrIteratorStateCorrupt):
		return problem.BadRequest(err.Error())
	default:
		return problem.Internal("unexpected discovery engine error")
	}
}
