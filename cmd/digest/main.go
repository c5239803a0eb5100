package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FranksOps/newsbrief/internal/config"
	"github.com/FranksOps/newsbrief/internal/digest"
	"github.com/FranksOps/newsbrief/internal/llm/openai"
	"github.com/FranksOps/newsbrief/internal/metrics"
	"github.com/FranksOps/newsbrief/internal/storage/tables"
)

const previewRunes = 500

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "digest [table]",
		Short:         "Build a newsletter from the most recent news table",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			return metrics.Run(ctx, cfg.Metrics.Port, logger, func(ctx context.Context) error {
				return build(ctx, cmd.OutOrStdout(), cfg, logger, args)
			})
		},
	}
}

func build(ctx context.Context, out io.Writer, cfg *config.Config, logger *zap.Logger, args []string) error {
	path, err := tablePath(cfg, args)
	if err != nil {
		if errors.Is(err, tables.ErrNoTable) {
			return fmt.Errorf("no '%s' %s table in %s", cfg.Export.Prefix, cfg.Export.Format, cfg.Export.Dir)
		}
		return err
	}
	fmt.Fprintf(out, "Processing file: %s\n", path)

	if err := cfg.RequireAPIKey(); err != nil {
		return fmt.Errorf("%w: set it in the environment or in .env", err)
	}

	client, err := openai.New(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		return err
	}

	topic := digest.Topic(path, cfg.Newsletter.DefaultTopic)
	fmt.Fprintf(out, "Analyzing news about '%s'...\n", topic)

	doc, err := digest.NewBuilder(cfg.Newsletter, client, logger).Build(ctx, path)
	if err != nil {
		return err
	}

	output := filepath.Join(cfg.Export.Dir, digest.OutputName(topic, time.Now()))
	if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write newsletter: %w", err)
	}

	rule := strings.Repeat("=", 50)
	fmt.Fprintf(out, "\nNewsletter saved to '%s'.\n\n", output)
	fmt.Fprintf(out, "%s\nNewsletter preview (first %d characters):\n%s\n", rule, previewRunes, rule)
	fmt.Fprintln(out, digest.Preview(doc, previewRunes))
	return nil
}

func tablePath(cfg *config.Config, args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	return tables.Latest(cfg.Export.Dir, cfg.Export.Prefix, cfg.Export.Format)
}
