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

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DiscoveryMetrics holds counters and histograms for the geographic
// profile discovery engine: how far an outward-spiral scan travels per
// page, how long the index writer's ray repair runs, and how the query
// evaluator's filter chain resolves.
type DiscoveryMetrics struct {
	ringDepthHisto    metric.Int64Histogram
	rayRepairHisto    metric.Int64Histogram
	evaluatorOutcomes metric.Int64Counter
}

// NewDiscoveryMetrics creates a new DiscoveryMetrics instance for a given
// service name, following the same meter-per-service convention as
// NewHTTPMetrics.
func NewDiscoveryMetrics(serviceName string) (*DiscoveryMetrics, error) {
	meter := otel.Meter(serviceName)

	ringDepthHisto, err := meter.Int64Histogram(
		"discovery_scan_ring_depth",
		metric.WithDescription("Outward-spiral ring number reached by a single next_page call"),
		metric.WithUnit("{ring}"),
	)
	if err != nil {
		return nil, err
	}

	rayRepairHisto, err := meter.Int64Histogram(
		"discovery_ray_repair_length",
		metric.WithDescription("Number of cells walked while repairing one directional hint ray"),
		metric.WithUnit("{cell}"),
	)
	if err != nil {
		return nil, err
	}

	evaluatorOutcomes, err := meter.Int64Counter(
		"discovery_evaluator_outcomes_total",
		metric.WithDescription("Query evaluator pass/reject counts"),
		metric.WithUnit("{candidate}"),
	)
	if err != nil {
		return nil, err
	}

	return &DiscoveryMetrics{
		ringDepthHisto:    ringDepthHisto,
		rayRepairHisto:    rayRepairHisto,
		evaluatorOutcomes: evaluatorOutcomes,
	}, nil
}

// RecordRingDepth records how many rings an outward-spiral scan reached
// before a page was filled or the matrix was exhausted.
func (m *DiscoveryMetrics) RecordRingDepth(ctx context.Context, ring int64) {
	m.ringDepthHisto.Record(ctx, ring)
}

// RecordRayRepair records how many cells one SetOccupied/SetEmpty ray
// repair walked in a given direction.
func (m *DiscoveryMetrics) RecordRayRepair(ctx context.Context, direction string, cellsWalked int64) {
	m.rayRepairHisto.Record(ctx, cellsWalked, metric.WithAttributes(attribute.String("direction", direction)))
}

// RecordEvaluatorOutcome records one candidate's verdict, tagged with the
// given stage. NextPage passes "pass" or "reject"; which filter rejected a
// candidate is not recorded.
func (m *DiscoveryMetrics) RecordEvaluatorOutcome(ctx context.Context, stage string) {
	m.evaluatorOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}
