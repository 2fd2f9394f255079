package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

// Producer publishes pipeline events synchronously. Synchronous delivery
// keeps the per-message acknowledgment contract simple: an event is only
// acked once its downstream publish has been confirmed by the broker.
type Producer struct {
	client *kgo.Client
	logger *logrus.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, clientID string, logger *logrus.Logger) (*Producer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
		kgo.ProducerBatchMaxBytes(1000000),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Producer{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the underlying client
func (p *Producer) Close() error {
	p.client.Close()
	return nil
}

// ProduceMessage publishes a single record with optional headers.
// The publish is bounded by a timeout; a slow broker fails the call
// rather than stalling the worker indefinitely.
func (p *Producer) ProduceMessage(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	record := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: value,
	}

	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{
			Key:   k,
			Value: []byte(v),
		})
	}

	produceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result := p.client.ProduceSync(produceCtx, record)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	return nil
}

// PublishReplySuggestion publishes a synthesized reply keyed by the
// source post ID so all suggestions for a post land on one partition.
func (p *Producer) PublishReplySuggestion(ctx context.Context, topic string, suggestion *models.ReplySuggestion) error {
	if suggestion == nil {
		return fmt.Errorf("suggestion cannot be nil")
	}

	value, err := json.Marshal(suggestion)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestion: %w", err)
	}

	headers := map[string]string{
		"campaign_id": fmt.Sprintf("%d", suggestion.CampaignID),
		"mode":        suggestion.Mode,
	}

	return p.ProduceMessage(ctx, topic, []byte(suggestion.PostID), value, headers)
}

// PublishDiscoveredPost publishes a discovered post keyed by its post ID.
// Used by the scout seeder; the production crawler is a separate system.
func (p *Producer) PublishDiscoveredPost(ctx context.Context, topic string, post *models.DiscoveredPost) error {
	if post == nil {
		return fmt.Errorf("post cannot be nil")
	}

	value, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	headers := map[string]string{
		"campaign_id": fmt.Sprintf("%d", post.CampaignID),
	}

	return p.ProduceMessage(ctx, topic, []byte(post.PostID), value, headers)
}

// HealthCheck pings the broker
func (p *Producer) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka health check failed: %w", err)
	}
	return nil
}

// GetClient returns the underlying kgo.Client for health checks
func (p *Producer) GetClient() *kgo.Client {
	return p.client
}
