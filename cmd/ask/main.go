// Command ask sends a single prompt through the relay and prints the reply.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"groq-relay/internal/app"
	"groq-relay/internal/config"
	"groq-relay/internal/usecase"
)

const defaultPrompt = "What is agentic AI? give me it in three lines"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger(os.Stderr, cfg)

	svc, err := app.NewRelayService(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create relay service", "err", err)
		os.Exit(1)
	}

	prompt := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if prompt == "" {
		prompt = defaultPrompt
	}

	out, err := svc.Chat(context.Background(), usecase.ChatInput{Message: prompt})
	if err != nil {
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) && ucErr.Detail != "" {
			logger.Error("completion failed", "detail", ucErr.Detail, "err", err)
		} else {
			logger.Error("completion failed", "err", err)
		}
		os.Exit(1)
	}
	fmt.Println(out.Response)
}
