package usecase

import "context"

// MetricsSummary represents aggregated inspection insights.
type MetricsSummary struct {
	TotalRequests              int64   `json:"total_requests"`
	RequestsWithFindings       int64   `json:"requests_with_findings"`
	FindingsRate               float64 `json:"findings_rate"`
	AverageFindings            float64 `json:"average_findings"`
	AverageProcessingLatencyMs float64 `json:"average_processing_latency_ms"`
}

// GetMetricsSummary aggregates inspection metrics from persisted logs.
func (uc *InspectionUseCase) GetMetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	aggregation, err := uc.repo.AggregateMetrics(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MetricsSummary{
		TotalRequests:              aggregation.TotalCount,
		RequestsWithFindings:       aggregation.WithFindingsCount,
		AverageFindings:            aggregation.AverageFindings,
		AverageProcessingLatencyMs: aggregation.AverageProcessingLatencyMs,
	}

	if aggregation.TotalCount > 0 {
		summary.FindingsRate = float64(aggregation.WithFindingsCount) / float64(aggregation.TotalCount)
	}

	return summary, nil
}
