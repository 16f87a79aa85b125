package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/config"
	database "github.com/brdnvt/django-blog-recommendation-system/db"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
	"github.com/brdnvt/django-blog-recommendation-system/repository"
	"github.com/brdnvt/django-blog-recommendation-system/subscriber"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "recommendation").Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	brokerCfg, err := config.LoadBroker()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid broker configuration")
	}
	dbCfg, err := config.LoadDatabase("RECOMMENDATION_")
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid database configuration")
	}
	redisCfg, err := config.LoadRedis()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid redis configuration")
	}

	dbConn, err := database.NewConnection(database.Config{
		Host:         dbCfg.Host,
		Port:         dbCfg.Port,
		User:         dbCfg.User,
		Password:     dbCfg.Password,
		DBName:       dbCfg.DBName,
		SSLMode:      dbCfg.SSLMode,
		MaxOpenConns: dbCfg.MaxOpenConns,
		MaxIdleConns: dbCfg.MaxIdleConns,
		MaxLifetime:  dbCfg.MaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to recommendation database")
	}
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
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

	repo := repository.NewRecommendationRepository(dbConn.DB, redisClient)
	sub := subscriber.NewRecommendationSubscriber(repo, logger)
	consumer := rabbit.NewConsumer(client, brokerCfg.RecommendationQueue, sub.Handle, nil, logger)

	logger.Info().Msg("waiting for recommendation events")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("consumer stopped")
	}

	logger.Info().Msg("recommendation service stopped")
}
