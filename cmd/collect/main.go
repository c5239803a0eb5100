package main

import (
	"bufio"
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
	"github.com/FranksOps/newsbrief/internal/metrics"
	"github.com/FranksOps/newsbrief/internal/report"
	"github.com/FranksOps/newsbrief/internal/scraper"
	"github.com/FranksOps/newsbrief/internal/storage"
	"github.com/FranksOps/newsbrief/internal/storage/tables"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "collect [keyword]",
		Short:         "Collect the last day of Naver News results for a keyword into a table",
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
				return collect(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cfg, logger, args)
			})
		},
	}
}

func collect(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config, logger *zap.Logger, args []string) error {
	if err := report.WriteBanner(out, cfg.Search); err != nil {
		return err
	}

	keyword, err := readKeyword(in, out, args)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nStarting collection, please wait...")

	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:     cfg.HTTP.Timeout,
		Fingerprint: cfg.HTTP.TLSProfile,
		Headers: map[string]string{
			"Referer":         cfg.Search.Referer,
			"Accept":          cfg.Search.Accept,
			"Accept-Language": cfg.Search.AcceptLanguage,
		},
	})
	if err != nil {
		return err
	}

	run := scraper.NewCollector(cfg.Search, fetcher, nil, logger).Run(ctx, keyword)

	var saved string
	if len(run.Records) == 0 {
		fmt.Fprintln(out, "No news to save.")
	} else {
		path := filepath.Join(cfg.Export.Dir, tables.FileName(cfg.Export.Prefix, keyword, cfg.Export.Format, time.Now()))
		if err := export(ctx, path, run.Records); err != nil {
			return err
		}
		saved = path
		fmt.Fprintf(out, "%d news articles saved to '%s'.\n", len(run.Records), path)
	}

	fmt.Fprintln(out)
	return report.WriteText(out, report.GenerateSummary(run, saved))
}

func readKeyword(in io.Reader, out io.Writer, args []string) (string, error) {
	if len(args) == 1 {
		if kw := strings.TrimSpace(args[0]); kw != "" {
			return kw, nil
		}
	}

	fmt.Fprint(out, "Enter a search keyword: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read keyword: %w", err)
	}

	kw := strings.TrimSpace(line)
	if kw == "" {
		return "", errors.New("a search keyword is required")
	}
	return kw, nil
}

func export(ctx context.Context, path string, records []storage.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	backend, err := tables.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	saveErr := storage.SaveAll(ctx, backend, records)
	closeErr := backend.Close()
	if err := errors.Join(saveErr, closeErr); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
