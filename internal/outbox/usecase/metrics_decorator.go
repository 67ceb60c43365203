package usecase

import (
	"context"
	"time"

	"github.com/allisson/vouch/internal/metrics"
	"github.com/allisson/vouch/internal/outbox/domain"
)

// eventProcessorWithMetrics decorates EventProcessor with per event type metrics.
type eventProcessorWithMetrics struct {
	next    EventProcessor
	metrics metrics.BusinessMetrics
}

// NewEventProcessorWithMetrics wraps an EventProcessor with metrics recording. The
// operation label is the event type.
func NewEventProcessorWithMetrics(processor EventProcessor, m metrics.BusinessMetrics) EventProcessor {
	return &eventProcessorWithMetrics{
		next:    processor,
		metrics: m,
	}
}

func (p *eventProcessorWithMetrics) Process(ctx context.Context, event *domain.OutboxEvent) error {
	start := time.Now()
	err := p.next.Process(ctx, event)
	metrics.Observe(ctx, p.metrics, "outbox", event.EventType, start, metrics.StatusOf(err))
	return err
}
