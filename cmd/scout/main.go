// Scout seeds the discovered-posts topic with synthetic posts built from
// active campaign keywords. It stands in for the production discovery
// crawler during development and load testing.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/harunalpak/agentic-traffic-booster/internal/clients/campaign"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

var postTemplates = []string{
	"Looking for %s products! Any recommendations?",
	"Just started searching for %s, what should I know first?",
	"Anyone tried %s recently? Worth it?",
	"Need a gift idea, thinking something around %s",
	"Finally treating myself to some %s this weekend",
}

func main() {
	logger := logging.NewLoggerWithService("scout")
	config.LoadEnv(logger)

	logger.Info("Starting Scout (Discovered Post Seeder)")

	brokersEnv := config.RequireEnv("KAFKA_BROKERS")
	campaignServiceURL := config.RequireEnv("CAMPAIGN_SERVICE_URL")
	topic := config.GetEnv("KAFKA_TOPIC_DISCOVERED_POSTS", "discovered-posts")
	interval := config.GetEnvDuration("SCOUT_INTERVAL", 5*time.Minute)
	postsPerCampaign := config.GetEnvInt("SCOUT_POSTS_PER_CAMPAIGN", 3)

	producer, err := kafka.NewProducer(strings.Split(brokersEnv, ","), "scout-producer", logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}
	defer producer.Close()

	campaignClient := campaign.NewClient(campaignServiceURL, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Seed once on startup, then on every tick.
	seed(ctx, campaignClient, producer, topic, postsPerCampaign, logger)
	for {
		select {
		case <-ticker.C:
			seed(ctx, campaignClient, producer, topic, postsPerCampaign, logger)
		case <-sigChan:
			logger.Info("Shutting down Scout...")
			return
		}
	}
}

func seed(ctx context.Context, campaigns *campaign.Client, producer *kafka.Producer, topic string, perCampaign int, logger logging.Logger) {
	active, err := campaigns.ListActive(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to list active campaigns")
		return
	}
	if len(active) == 0 {
		logger.Info("No active campaigns, nothing to seed")
		return
	}

	var published int
	for _, c := range active {
		query := searchQuery(c)
		if query == "" {
			continue
		}
		for i := 0; i < perCampaign; i++ {
			post := syntheticPost(c, query)
			if err := producer.PublishDiscoveredPost(ctx, topic, post); err != nil {
				logger.WithFields(logging.Fields{
					"campaign_id": c.ID,
					"error":       err.Error(),
				}).Error("Failed to publish discovered post")
				continue
			}
			published++
		}
	}

	logger.WithFields(logging.Fields{
		"campaigns": len(active),
		"published": published,
	}).Info("Seeded discovered posts")
}

// searchQuery joins campaign hashtags and keywords, falling back to the
// campaign name when neither is set.
func searchQuery(c models.Campaign) string {
	parts := append([]string{}, c.Hashtags...)
	parts = append(parts, c.Keywords...)
	if len(parts) == 0 && c.Name != "" {
		parts = append(parts, c.Name)
	}
	for i, p := range parts {
		parts[i] = strings.TrimPrefix(p, "#")
	}
	return strings.Join(parts, " ")
}

func syntheticPost(c models.Campaign, query string) *models.DiscoveredPost {
	id := uuid.NewString()
	author := fmt.Sprintf("user_%s", id[:8])
	return &models.DiscoveredPost{
		PostID:     fmt.Sprintf("scout_%s", id),
		CampaignID: c.ID,
		Author:     author,
		Text:       fmt.Sprintf(postTemplates[rand.Intn(len(postTemplates))], query),
		URL:        fmt.Sprintf("https://x.example/%s/status/%s", author, id),
		Likes:      rand.Intn(100),
		Reposts:    rand.Intn(50),
		Language:   "en",
		CreatedAt:  time.Now().UTC(),
	}
}
