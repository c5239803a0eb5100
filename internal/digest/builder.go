// Package digest turns an exported news table into a newsletter document.
package digest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/FranksOps/newsbrief/internal/config"
	"github.com/FranksOps/newsbrief/internal/llm"
	"github.com/FranksOps/newsbrief/internal/metrics"
	"github.com/FranksOps/newsbrief/internal/storage"
	"github.com/FranksOps/newsbrief/internal/storage/tables"
)

type Builder struct {
	brand  config.NewsletterConfig
	client llm.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewBuilder(brand config.NewsletterConfig, client llm.Client, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{brand: brand, client: client, logger: logger, now: time.Now}
}

// Build reads the table at path and returns the rendered newsletter. Only a
// table that cannot be read is an error; generation problems degrade to the
// fallback analysis.
func (b *Builder) Build(ctx context.Context, path string) (string, error) {
	records, err := ReadTable(ctx, path)
	if err != nil {
		return "", err
	}

	topic := Topic(path, b.brand.DefaultTopic)
	logger := b.logger.With(zap.String("topic", topic))
	logger.Info("table loaded", zap.String("path", path), zap.Int("articles", len(records)))

	result := b.analyze(ctx, topic, records)
	metrics.RecordGeneration(result.Kind.String())

	now := b.now()
	featured, used := selectFeatured(records, result.Analysis.Recommended)

	var out strings.Builder
	err = Render(&out, Newsletter{
		Brand:          b.brand,
		Date:           now.Format(dateLayout),
		Year:           now.Year(),
		Topic:          topic,
		OneLineSummary: result.Analysis.OneLineSummary,
		MainSummary:    result.Analysis.MainSummary,
		Keywords:       result.Analysis.Keywords,
		Featured:       featured,
		Perspectives:   result.Analysis.Perspectives,
		Additional:     selectAdditional(records, used),
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func (b *Builder) analyze(ctx context.Context, topic string, records []storage.Record) Result {
	b.logger.Info("requesting analysis", zap.String("topic", topic))

	raw, err := b.client.CompleteWithSystem(ctx, SystemPrompt, BuildPrompt(topic, records))
	if err != nil {
		b.logger.Warn("generation failed, using fallback analysis", zap.Error(err))
		return Fallback(topic, fmt.Sprintf("generation: %v", err))
	}

	res := Extract(raw, topic)
	if res.Kind == KindFallback {
		b.logger.Warn("unusable analysis, using fallback", zap.String("reason", res.Reason))
	}
	return res
}

// ReadTable loads every row of an existing table. Missing cells read back
// as storage.NotAvailable.
func ReadTable(ctx context.Context, path string) ([]storage.Record, error) {
	// Backends create missing files, so check first.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	backend, err := tables.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	defer backend.Close()

	rows, err := backend.Query(ctx, storage.Filter{})
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}

	records := make([]storage.Record, len(rows))
	for i, r := range rows {
		records[i] = r.Normalized()
	}
	return records, nil
}

// Topic is the second "_"-separated part of the file name, without its
// extension: navernews_election_20250403_222536.xlsx gives "election".
func Topic(path, fallback string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "_")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return fallback
}

// OutputName is the document file name for topic on the given day.
func OutputName(topic string, at time.Time) string {
	return fmt.Sprintf("newsletter_%s_%s.md", topic, at.Format(outputDateForm))
}
