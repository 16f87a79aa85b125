package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/config"
	database "github.com/brdnvt/django-blog-recommendation-system/db"
	"github.com/brdnvt/django-blog-recommendation-system/handler"
	jwtverify "github.com/brdnvt/django-blog-recommendation-system/pkg/jwt"
	"github.com/brdnvt/django-blog-recommendation-system/repository"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "api").Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	dbCfg, err := config.LoadDatabase("RECOMMENDATION_")
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid database configuration")
	}
	redisCfg, err := config.LoadRedis()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid redis configuration")
	}
	jwksURL, err := config.LoadJWKSURL()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid auth configuration")
	}
	port := config.LoadAPIPort()

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

	verifier, err := jwtverify.NewJWKSVerifier(ctx, jwksURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize JWKS verifier")
	}

	repo := repository.NewRecommendationRepository(dbConn.DB, redisClient)
	recHandler := handler.NewRecommendationHandler(repo, logger)
	server := handler.NewServer(port, recHandler, verifier, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("recommendation API stopped")
}
