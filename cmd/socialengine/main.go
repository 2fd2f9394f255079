package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harunalpak/agentic-traffic-booster/internal/clients/campaign"
	"github.com/harunalpak/agentic-traffic-booster/internal/clients/product"
	"github.com/harunalpak/agentic-traffic-booster/internal/handlers"
	"github.com/harunalpak/agentic-traffic-booster/internal/pipeline"
	"github.com/harunalpak/agentic-traffic-booster/internal/shortlink"
	"github.com/harunalpak/agentic-traffic-booster/internal/synthesis"
	"github.com/harunalpak/agentic-traffic-booster/internal/tasks"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	"github.com/harunalpak/agentic-traffic-booster/pkg/database"
	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
	"github.com/harunalpak/agentic-traffic-booster/pkg/llm"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/monitoring"
	"github.com/harunalpak/agentic-traffic-booster/pkg/server"
	"github.com/harunalpak/agentic-traffic-booster/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("social-engine")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Social Engine (Reply Generation & Task Pipeline)")

	databaseURL := config.RequireEnv("DATABASE_URL")
	brokersEnv := config.RequireEnv("KAFKA_BROKERS")
	campaignServiceURL := config.RequireEnv("CAMPAIGN_SERVICE_URL")
	productServiceURL := config.RequireEnv("PRODUCT_SERVICE_URL")

	inputTopic := config.GetEnv("KAFKA_TOPIC_DISCOVERED_POSTS", "discovered-posts")
	outputTopic := config.GetEnv("KAFKA_TOPIC_REPLY_SUGGESTIONS", "reply-suggestions")
	dlqTopic := config.GetEnv("KAFKA_TOPIC_DEAD_LETTER", "dead-letter")

	// Connect to Postgres
	dbConfig := database.DefaultConfig()
	dbConfig.URL = databaseURL
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("social-engine", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("social-engine", version.Version, version.GitCommit)
	pipelineMetrics := pipeline.NewMetrics(metricsCollector)

	// Stores
	taskStore := tasks.NewStore(db)
	linkStore := shortlink.NewStore(db)

	// Context service clients
	campaignClient := campaign.NewClient(campaignServiceURL, logger)
	productClient := product.NewClient(productServiceURL, logger)

	// Short link resolver. Without a provider token every link takes the
	// fallback path.
	var shortener shortlink.Shortener
	if token := config.GetEnv("SHORTENER_API_TOKEN", ""); token != "" {
		shortener = shortlink.NewBitlyShortener(
			config.GetEnv("SHORTENER_API_URL", "https://api-ssl.bitly.com"), token)
	}
	resolver := shortlink.NewResolver(linkStore, shortener, logger)

	// Generative provider. Optional: without one the synthesizer serves
	// template replies only.
	var provider llm.Provider
	llmConfig := llm.LoadConfig()
	if llmConfig.APIKey != "" || llmConfig.Provider == "ollama" {
		p, err := llm.NewProvider(llmConfig)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create generative provider")
		}
		provider = p
		logger.WithFields(logging.Fields{
			"provider": llmConfig.Provider,
			"model":    llmConfig.Model,
		}).Info("Generative provider configured")
	} else {
		logger.Warn("No generative provider configured, replies will use templates")
	}

	synthConfig := synthesis.DefaultConfig()
	synthConfig.MaxReplyLen = config.GetEnvInt("MAX_REPLY_LENGTH", synthConfig.MaxReplyLen)
	synthConfig.CTAProbability = config.GetEnvFloat("CTA_PROBABILITY", synthConfig.CTAProbability)
	synthConfig.LinkProbability = config.GetEnvFloat("LINK_PROBABILITY", synthConfig.LinkProbability)
	synthesizer := synthesis.NewSynthesizer(provider, synthConfig, logger)

	// Kafka producer and pipeline stages
	brokers := strings.Split(brokersEnv, ",")
	producer, err := kafka.NewProducer(brokers, "social-engine-producer", logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}
	defer producer.Close()

	dlqRouter := pipeline.NewDeadLetterRouter(producer, dlqTopic, "social-engine", logger, pipelineMetrics)
	replyGenerator := pipeline.NewReplyGenerator(
		campaignClient, productClient, resolver, synthesizer, producer,
		dlqRouter, outputTopic, logger, pipelineMetrics)
	taskWriter := pipeline.NewTaskWriter(taskStore, logger, pipelineMetrics)

	// Kafka consumer over both stages. One group keeps deployment simple;
	// partitions still fan out across instances.
	groupID := config.GetEnv("KAFKA_GROUP_ID", "social-engine")
	clientID := config.GetEnv("KAFKA_CLIENT_ID", "social-engine")
	consumer, err := kafka.NewConsumer(brokers, groupID, clientID, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka consumer")
	}
	consumer.AddHandler(inputTopic, replyGenerator.HandleMessage)
	consumer.AddHandler(outputTopic, taskWriter.HandleMessage)

	// Health checks
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("kafka", monitoring.KafkaHealthCheck(consumer.GetClient()))
	healthChecker.AddCheck("campaign_service", monitoring.HTTPServiceHealthCheck("campaign-service", campaignServiceURL+"/health"))
	healthChecker.AddCheck("product_service", monitoring.HTTPServiceHealthCheck("product-service", productServiceURL+"/health"))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":  databaseURL,
		"KAFKA_BROKERS": brokersEnv,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Error("Kafka consumer error")
		}
	}()

	// REST API for task review and reporting
	handlers.Init(taskStore, linkStore, logger)
	router := server.SetupServiceRouter(logger, "social-engine", healthChecker, metricsCollector)
	handlers.RegisterRoutes(router)

	serverConfig := server.DefaultConfig("social-engine", config.GetEnv("PORT", "18090"))
	go func() {
		if err := server.Run(ctx, serverConfig, router, logger); err != nil {
			logger.WithError(err).Error("API server error")
		}
	}()

	logger.WithFields(logging.Fields{
		"input_topic":  inputTopic,
		"output_topic": outputTopic,
		"dlq_topic":    dlqTopic,
	}).Info("Social Engine started")

	// Wait for interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down Social Engine...")
	cancel()
	consumer.Close()
	logger.Info("Social Engine stopped")
}
