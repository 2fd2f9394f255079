// Package pipeline contains the two consumer stages: reply generation
// (discovered posts in, reply suggestions out) and task persistence
// (reply suggestions in, PENDING tasks out). Both stages acknowledge
// every message they receive; failures resolve to a skip, a degraded
// output or a quarantined event, never to a redelivery loop.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/synthesis"
	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

const defaultConfidence = 0.85

type campaignLookup interface {
	GetCampaign(ctx context.Context, id int64) (*models.Campaign, error)
}

type productLookup interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type linkResolver interface {
	Resolve(ctx context.Context, originalURL string, campaignID, productID int64) (string, error)
}

type replySynthesizer interface {
	Synthesize(ctx context.Context, postText, productTitle, shortLink string) synthesis.Result
}

type suggestionPublisher interface {
	PublishReplySuggestion(ctx context.Context, topic string, suggestion *models.ReplySuggestion) error
}

// ReplyGenerator is the first pipeline stage. For each discovered post it
// fetches campaign and product context, resolves a short link, synthesizes
// a reply and publishes a ReplySuggestion keyed by the post ID.
type ReplyGenerator struct {
	campaigns   campaignLookup
	products    productLookup
	resolver    linkResolver
	synthesizer replySynthesizer
	producer    suggestionPublisher
	dlq         *DeadLetterRouter
	outputTopic string
	logger      logging.Logger
	metrics     *Metrics
}

func NewReplyGenerator(
	campaigns campaignLookup,
	products productLookup,
	resolver linkResolver,
	synthesizer replySynthesizer,
	producer suggestionPublisher,
	dlq *DeadLetterRouter,
	outputTopic string,
	logger logging.Logger,
	metrics *Metrics,
) *ReplyGenerator {
	return &ReplyGenerator{
		campaigns:   campaigns,
		products:    products,
		resolver:    resolver,
		synthesizer: synthesizer,
		producer:    producer,
		dlq:         dlq,
		outputTopic: outputTopic,
		logger:      logger,
		metrics:     metrics,
	}
}

// HandleMessage processes one discovered post. It always returns nil:
// every failure path ends in either a skip or a dead-letter publish, so
// the consumer commits the offset and the group keeps moving.
func (g *ReplyGenerator) HandleMessage(ctx context.Context, msg kafka.Message) error {
	defer func() {
		if r := recover(); r != nil {
			g.logger.WithFields(logging.Fields{
				"topic": msg.Topic,
				"key":   string(msg.Key),
				"panic": fmt.Sprintf("%v", r),
			}).Error("Recovered panic in reply generator")
			g.dlq.Route(ctx, msg, fmt.Errorf("panic during reply generation: %v", r))
		}
	}()

	var post models.DiscoveredPost
	if err := json.Unmarshal(msg.Value, &post); err != nil {
		g.dlq.Route(ctx, msg, fmt.Errorf("malformed discovered post: %w", err))
		g.countProcessed("reply_generator", "dead_letter")
		return nil
	}

	log := g.logger.WithFields(logging.Fields{
		"post_id":     post.PostID,
		"campaign_id": post.CampaignID,
	})

	campaign, err := g.campaigns.GetCampaign(ctx, post.CampaignID)
	if err != nil {
		g.dlq.Route(ctx, msg, fmt.Errorf("campaign lookup: %w", err))
		g.countProcessed("reply_generator", "dead_letter")
		return nil
	}
	if campaign == nil {
		log.Info("Campaign not found, skipping post")
		g.countSkipped("reply_generator", "campaign_absent")
		g.countProcessed("reply_generator", "skipped")
		return nil
	}

	product, err := g.products.GetProduct(ctx, campaign.ProductID)
	if err != nil {
		g.dlq.Route(ctx, msg, fmt.Errorf("product lookup: %w", err))
		g.countProcessed("reply_generator", "dead_letter")
		return nil
	}
	if product == nil {
		log.WithFields(logging.Fields{"product_id": campaign.ProductID}).
			Info("Product not found, skipping post")
		g.countSkipped("reply_generator", "product_absent")
		g.countProcessed("reply_generator", "skipped")
		return nil
	}

	shortLink, err := g.resolver.Resolve(ctx, product.ProductURL, campaign.ID, product.ID)
	if err != nil {
		// The resolver degrades internally; an error here means there was
		// no URL to shorten. Proceed without a link.
		log.WithFields(logging.Fields{"error": err.Error()}).
			Warn("Short link unavailable, continuing without one")
		shortLink = ""
	}

	result := g.synthesizer.Synthesize(ctx, post.Text, product.Title, shortLink)

	mode := campaign.Mode
	if mode == "" {
		mode = models.ModeSemiAuto
	}

	suggestion := &models.ReplySuggestion{
		PostID:     post.PostID,
		CampaignID: campaign.ID,
		ReplyText:  result.ReplyText,
		Confidence: defaultConfidence,
		ShortLink:  shortLink,
		PostAuthor: post.Author,
		PostText:   post.Text,
		PostURL:    post.URL,
		Mode:       mode,
		IsRisky:    result.IsRisky,
		RiskReason: result.RiskReason,
		CreatedAt:  time.Now().UTC(),
	}

	if err := g.producer.PublishReplySuggestion(ctx, g.outputTopic, suggestion); err != nil {
		g.dlq.Route(ctx, msg, fmt.Errorf("publish reply suggestion: %w", err))
		g.countProcessed("reply_generator", "dead_letter")
		return nil
	}

	if g.metrics != nil {
		g.metrics.RepliesEmitted.Inc()
	}
	g.countProcessed("reply_generator", "ok")
	log.WithFields(logging.Fields{
		"mode":     mode,
		"is_risky": result.IsRisky,
	}).Info("Published reply suggestion")
	return nil
}

func (g *ReplyGenerator) countProcessed(stage, outcome string) {
	if g.metrics != nil {
		g.metrics.EventsProcessed.WithLabelValues(stage, outcome).Inc()
	}
}

func (g *ReplyGenerator) countSkipped(stage, reason string) {
	if g.metrics != nil {
		g.metrics.EventsSkipped.WithLabelValues(stage, reason).Inc()
	}
}
