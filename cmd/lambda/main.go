// cmd/lambda is the AWS Lambda entry point. API Gateway proxy events are
// served by the same router as the HTTP server.
package main

import (
	"context"
	"log"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/app"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/config"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/lambdaproxy"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// Lambda is stateless between cold starts; the memory store would lose
	// every booking, so default to DynamoDB when STORE is not set.
	if cfg.Store == config.StoreMemory && !cfg.StoreSet {
		cfg.Store = config.StoreDynamoDB
	}

	// lambda.Start never returns, so connections live until the runtime
	// freezes the sandbox; the cleanup func is not used here.
	router, _, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	lambda.Start(lambdaproxy.Handler(router))
}
