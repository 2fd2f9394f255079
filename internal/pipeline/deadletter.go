package pipeline

import (
	"context"

	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
)

// eventPublisher is the subset of the Kafka producer the stages use.
type eventPublisher interface {
	ProduceMessage(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// DeadLetterRouter republishes failed events to a quarantine topic so the
// consumer group keeps moving. Inspection and replay happen out of band.
type DeadLetterRouter struct {
	producer eventPublisher
	topic    string
	consumer string
	logger   logging.Logger
	metrics  *Metrics
}

func NewDeadLetterRouter(producer eventPublisher, topic, consumer string, logger logging.Logger, metrics *Metrics) *DeadLetterRouter {
	return &DeadLetterRouter{
		producer: producer,
		topic:    topic,
		consumer: consumer,
		logger:   logger,
		metrics:  metrics,
	}
}

// Route quarantines a message together with the failure that caused it.
// Routing failures are logged, never propagated: the original message is
// acknowledged either way so a broken quarantine path cannot wedge the
// pipeline.
func (r *DeadLetterRouter) Route(ctx context.Context, msg kafka.Message, cause error) {
	payload, err := kafka.EncodeDLQMessage(msg, cause, r.consumer)
	if err != nil {
		r.logger.WithFields(logging.Fields{
			"topic": msg.Topic,
			"error": err.Error(),
		}).Error("Failed to encode dead letter payload, event lost")
		return
	}

	if err := r.producer.ProduceMessage(ctx, r.topic, msg.Key, payload, nil); err != nil {
		r.logger.WithFields(logging.Fields{
			"topic": msg.Topic,
			"key":   string(msg.Key),
			"error": err.Error(),
		}).Error("Failed to publish dead letter, event lost")
		return
	}

	if r.metrics != nil {
		r.metrics.DLQRouted.Inc()
	}
	r.logger.WithFields(logging.Fields{
		"source_topic": msg.Topic,
		"key":          string(msg.Key),
		"cause":        cause.Error(),
	}).Warn("Event routed to dead letter stream")
}
