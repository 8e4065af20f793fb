// Package main is the AppSync direct Lambda resolver serving agenda reads.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"agenda-sync/infrastructure/config"
	"agenda-sync/infrastructure/di"
	"agenda-sync/interfaces/appsync"
)

var (
	container *di.Container
	resolver  *appsync.Resolver
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	resolver = appsync.NewResolver(container.Queries, container.Logger)
}

// Handler resolves one GraphQL field.
func Handler(ctx context.Context, event appsync.Event) (interface{}, error) {
	defer container.Flush(ctx)
	return resolver.Handle(ctx, event)
}

func main() {
	lambda.Start(Handler)
}
