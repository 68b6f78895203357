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

package config

import (
	"fmt"
	"math"

	"app/internal/geoindex"
)

// MatrixConfig defines the geographic rectangle and cell size the matrix
// is built from (spec §6 "Matrix configuration").
type MatrixConfig struct {
	LatitudeTopLeft      float64 `env:"LATITUDE_TOP_LEFT,notEmpty"`
	LongitudeTopLeft     float64 `env:"LONGITUDE_TOP_LEFT,notEmpty"`
	LatitudeBottomRight  float64 `env:"LATITUDE_BOTTOM_RIGHT,notEmpty"`
	LongitudeBottomRight float64 `env:"LONGITUDE_BOTTOM_RIGHT,notEmpty"`
	// IndexCellSquareKM is the edge length of one matrix cell, in km.
	IndexCellSquareKM int `env:"INDEX_CELL_SQUARE_KM,notEmpty"`
	AttributeSchemaPath string `env:"ATTRIBUTE_SCHEMA_PATH,notEmpty"`
}

const earthRadiusKM = 6371.0088

// Dimensions computes the matrix width/height from the configured
// rectangle using an equirectangular projection (spec §1 Non-goals:
// geodesic accuracy is explicitly out of scope). Startup fails if either
// resulting dimension is below 1.
func (c MatrixConfig) Dimensions() (width, height uint16, err error) {
	if c.IndexCellSquareKM <= 0 {
		return 0, 0, fmt.Errorf("geoindex config: index_cell_square_km must be positive, got %d", c.IndexCellSquareKM)
	}

	latSpan := math.Abs(c.LatitudeTopLeft - c.LatitudeBottomRight)
	heightKM := latSpan * (math.Pi / 180) * earthRadiusKM

	midLatRad := (c.LatitudeTopLeft + c.LatitudeBottomRight) / 2 * (math.Pi / 180)
	lonSpan := math.Abs(c.LongitudeBottomRight - c.LongitudeTopLeft)
	widthKM := lonSpan * (math.Pi / 180) * earthRadiusKM * math.Cos(midLatRad)

	w := int(math.Ceil(widthKM / float64(c.IndexCellSquareKM)))
	h := int(math.Ceil(heightKM / float64(c.IndexCellSquareKM)))

	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("geoindex config: computed matrix dimensions %dx%d must both be at least 1", w, h)
	}
	if w > math.MaxUint16 || h > math.MaxUint16 {
		return 0, 0, fmt.Errorf("geoindex config: computed matrix dimensions %dx%d exceed u16 range", w, h)
	}

	return uint16(w), uint16(h), nil
}

// NewMatrix builds the geoindex.Matrix described by this configuration.
func (c MatrixConfig) NewMatrix() (*geoindex.Matrix, error) {
	width, height, err := c.Dimensions()
	if err != nil {
		return nil, err
	}
	return geoindex.NewMatrix(width, height)
}

// CellKey maps a raw (latitude, longitude) to the matrix cell it falls
// into, linear in both axes within the configured rectangle.
// Out-of-rectangle locations are clamped to the nearest edge cell
// (spec §6 "Location -> cell mapping").
func (c MatrixConfig) CellKey(m *geoindex.Matrix, latitude, longitude float64) geoindex.Key {
	latSpan := c.LatitudeTopLeft - c.LatitudeBottomRight
	lonSpan := c.LongitudeBottomRight - c.LongitudeTopLeft

	var yFrac, xFrac float64
	if latSpan != 0 {
		yFrac = (c.LatitudeTopLeft - latitude) / latSpan
	}
	if lonSpan != 0 {
		xFrac = (longitude - c.LongitudeTopLeft) / lonSpan
	}

	x := int32(xFrac * float64(m.Width()))
	y := int32(yFrac * float64(m.Height()))
	return m.Clamp(x, y)
}
