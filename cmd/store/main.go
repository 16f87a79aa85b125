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

	"github.com/brdnvt/django-blog-recommendation-system/config"
	database "github.com/brdnvt/django-blog-recommendation-system/db"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
	"github.com/brdnvt/django-blog-recommendation-system/repository"
	"github.com/brdnvt/django-blog-recommendation-system/subscriber"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "store").Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	brokerCfg, err := config.LoadBroker()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid broker configuration")
	}
	dbCfg, err := config.LoadDatabase("EVENT_STORE_")
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid database configuration")
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
		logger.Fatal().Err(err).Msg("failed to connect to event store database")
	}
	defer dbConn.Close()

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

	repo := repository.NewEventRepository(dbConn.DB)
	sub := subscriber.NewStoreSubscriber(repo, logger)
	consumer := rabbit.NewConsumer(client, brokerCfg.StoreQueue, sub.Handle, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("waiting for store events")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("consumer stopped")
	}

	logger.Info().Msg("event store service stopped")
}
