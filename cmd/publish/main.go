// Command publish emits well-formed blog post creation events onto the
// moderation routing key, for exercising the pipeline end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/config"
	"github.com/brdnvt/django-blog-recommendation-system/events"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		postID   int64
		authorID int64
		email    string
		uri      string
		count    int
	)

	flag.Int64Var(&postID, "post", 0, "post id to emit a creation event for")
	flag.Int64Var(&authorID, "author", 0, "author id of the post")
	flag.StringVar(&email, "email", "", "author email (optional)")
	flag.StringVar(&uri, "uri", "", "post URI (optional)")
	flag.IntVar(&count, "count", 1, "number of events to publish")
	flag.Parse()

	if postID == 0 || authorID == 0 {
		return fmt.Errorf("--post and --author are required")
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "publish").Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	brokerCfg, err := config.LoadBroker()
	if err != nil {
		return err
	}

	client, err := rabbit.NewClient(rabbit.Config{
		Host:         brokerCfg.Host,
		User:         brokerCfg.User,
		Password:     brokerCfg.Password,
		DialAttempts: 3,
		DialBackoff:  time.Second,
	}, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(brokerCfg.Topology()); err != nil {
		return err
	}

	publisher := rabbit.NewPublisher(client, brokerCfg.EventExchange, logger)
	ctx := context.Background()

	for i := 0; i < count; i++ {
		env := events.NewPostCreatedEvent(events.PostRef{
			ID:     postID,
			Author: events.Author{ID: authorID, Email: email},
			URI:    uri,
		})
		if err := publisher.Publish(ctx, brokerCfg.ModerationKey, env); err != nil {
			return err
		}
	}

	return nil
}
