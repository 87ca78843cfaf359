package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"groq-relay/internal/config"
	"groq-relay/internal/integrations/groq"
	"groq-relay/internal/integrations/paramstore"
	"groq-relay/internal/usecase"
)

// NewLogger returns a JSON slog logger writing to w at the configured level.
func NewLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// NewRelayService wires the Groq client and its key source from cfg.
func NewRelayService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*usecase.RelayService, error) {
	keys, err := keySource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var opts []groq.Option
	if cfg.BaseURL != "" {
		opts = append(opts, groq.WithBaseURL(cfg.BaseURL))
	}
	client, err := groq.NewClient(keys, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: create groq client: %w", err)
	}

	svc, err := usecase.NewRelayService(client, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("app: create relay service: %w", err)
	}
	return svc, nil
}

func keySource(ctx context.Context, cfg config.Config, logger *slog.Logger) (groq.KeySource, error) {
	if !cfg.UseParamStore() {
		if cfg.APIKey == "" {
			logger.Warn("GROQ_API_KEY is not set; upstream requests will be rejected")
		}
		return groq.StaticKey(cfg.APIKey), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}
	src, err := paramstore.NewKeySource(awsssm.NewFromConfig(awsCfg), cfg.APIKeyParam)
	if err != nil {
		return nil, fmt.Errorf("app: create SSM key source: %w", err)
	}
	logger.Info("resolving Groq API key from parameter store", "param", cfg.APIKeyParam)
	return src, nil
}
