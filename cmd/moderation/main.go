package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/blogapi"
	"github.com/brdnvt/django-blog-recommendation-system/config"
	"github.com/brdnvt/django-blog-recommendation-system/moderation"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
	"github.com/brdnvt/django-blog-recommendation-system/sentiment"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "moderation").Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	brokerCfg, err := config.LoadBroker()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid broker configuration")
	}
	blogAPIURL, err := config.LoadBlogAPIURL()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid blog API configuration")
	}

	client, err := rabbit.NewClient(rabbit.Config{
		Host:          brokerCfg.Host,
		User:          brokerCfg.User,
		Password:      brokerCfg.Password,
		DialAttempts:  10,
		DialBackoff:   3 * time.Second,
		PrefetchCount: 1,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to broker")
	}
	defer client.Close()

	if err := client.DeclareTopology(brokerCfg.Topology()); err != nil {
		logger.Fatal().Err(err).Msg("failed to declare broker topology")
	}

	publisher := rabbit.NewPublisher(client, brokerCfg.EventExchange, logger)
	moderator := moderation.NewModerator(
		blogapi.NewClient(blogAPIURL),
		sentiment.NewAnalyzer(),
		brokerCfg.RecommendationKey,
		brokerCfg.NotificationKey,
		logger,
	)

	consumer := rabbit.NewConsumer(client, brokerCfg.ModerationQueue, moderator.Handle, publisher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("waiting for blog post creation events")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("consumer stopped")
	}

	logger.Info().Msg("moderation service stopped")
}
