package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harunalpak/agentic-traffic-booster/pkg/monitoring"
)

// Metrics holds the pipeline counters. Labels carry the stage name so both
// consumers share one metric family.
type Metrics struct {
	EventsProcessed *prometheus.CounterVec
	EventsSkipped   *prometheus.CounterVec
	RepliesEmitted  prometheus.Counter
	DLQRouted       prometheus.Counter
	TasksCreated    prometheus.Counter
	TasksDuplicate  prometheus.Counter
}

func NewMetrics(mc *monitoring.MetricsCollector) *Metrics {
	processed := mc.NewCounter("pipeline_events_processed_total",
		"Events processed per stage and outcome", []string{"stage", "outcome"})
	skipped := mc.NewCounter("pipeline_events_skipped_total",
		"Events skipped due to absent campaign or product context", []string{"stage", "reason"})
	emitted := mc.NewCounter("pipeline_replies_emitted_total",
		"Reply suggestions published downstream", nil)
	dlq := mc.NewCounter("pipeline_dead_letter_total",
		"Events routed to the dead-letter stream", nil)
	created := mc.NewCounter("pipeline_tasks_created_total",
		"Tasks persisted in PENDING status", nil)
	duplicate := mc.NewCounter("pipeline_tasks_duplicate_total",
		"Reply suggestions absorbed as duplicates", nil)

	return &Metrics{
		EventsProcessed: processed,
		EventsSkipped:   skipped,
		RepliesEmitted:  emitted.WithLabelValues(),
		DLQRouted:       dlq.WithLabelValues(),
		TasksCreated:    created.WithLabelValues(),
		TasksDuplicate:  duplicate.WithLabelValues(),
	}
}
