// Package main is the scheduled Lambda that synchronizes the agenda feed.
package main

import (
	"context"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"agenda-sync/infrastructure/config"
	"agenda-sync/infrastructure/di"
	"agenda-sync/interfaces/scheduler"
)

var (
	container *di.Container
	handler   *scheduler.Handler
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateFetcher(); err != nil {
		log.Fatalf("Invalid fetcher configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	handler = scheduler.NewHandler(container.Pipeline, container.Logger)
}

// Handler runs one sync per scheduled event.
func Handler(ctx context.Context, event awsevents.CloudWatchEvent) (*scheduler.Response, error) {
	defer container.Flush(ctx)
	return handler.Handle(ctx, event)
}

func main() {
	lambda.Start(Handler)
}
