package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"groq-relay/handler"
	"groq-relay/internal/app"
	"groq-relay/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger(os.Stdout, cfg)

	svc, err := app.NewRelayService(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create relay service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(svc, handler.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.HandleLambda)
}
