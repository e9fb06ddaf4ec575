package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsForge/internal/config"
	"NewsForge/internal/domain"
	"NewsForge/internal/jsonx"
	"NewsForge/internal/ports"
)

// Batcher turns discovered URL lists into validated articles via the
// generation backend. Batches are issued strictly one at a time; the backend
// rate limit is the shared bottleneck and concurrency would not help.
type Batcher struct {
	completer ports.Completer
	cfg       config.PipelineConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewBatcher constructs a Batcher; zero-valued tunables get defaults.
func NewBatcher(completer ports.Completer, cfg config.PipelineConfig, logger *slog.Logger) *Batcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batcher{completer: completer, cfg: cfg, logger: logger, now: time.Now}
}

// Generate partitions urls into batches, prompts the backend per batch, and
// returns every accepted article. Per-batch failures are contained; an error
// is returned only when every batch failed and nothing was produced. Output
// order is not guaranteed to match input order.
func (b *Batcher) Generate(ctx context.Context, urls []string, category domain.Category, sourceName string) ([]domain.Article, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	batches := chunk(urls, b.cfg.BatchSize)

	var out []domain.Article
	var lastErr error
	failed := 0

	for i, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && len(out) > 0 {
			b.wait(ctx, b.cfg.BatchDelay.Std())
		}

		items, err := b.runBatch(ctx, batch, category, sourceName)
		if err != nil {
			failed++
			lastErr = err
			b.logger.Warn("batch failed", "category", category, "batch", i, "error", err)
			continue
		}

		if len(items) == 0 && len(batch) > 1 {
			items = b.escalate(ctx, batch, category, sourceName)
		}

		out = append(out, items...)
	}

	if len(out) == 0 && failed == len(batches) && lastErr != nil {
		return nil, fmt.Errorf("all %d batches failed: %w", failed, lastErr)
	}
	return out, nil
}

// runBatch issues one generation request and returns the accepted items.
// An unusable response is zero items, not an error.
func (b *Batcher) runBatch(ctx context.Context, batch []string, category domain.Category, sourceName string) ([]domain.Article, error) {
	raw, err := b.complete(ctx, buildPrompt(batch, b.cfg.Bounds))
	if err != nil {
		return nil, err
	}

	var items []generatedItem
	if err := jsonx.DecodeArray(raw, &items); err != nil {
		b.logger.Warn("generation output unusable", "category", category, "error", err)
		return nil, nil
	}

	allowed := make(map[string]struct{}, len(batch))
	for _, u := range batch {
		allowed[u] = struct{}{}
	}

	accepted := make([]domain.Article, 0, len(items))
	for _, item := range items {
		article, ok := cleanItem(item, allowed, category, sourceName, b.cfg.Bounds, b.now())
		if !ok {
			b.logger.Debug("item rejected", "category", category, "reference_url", item.ReferenceURL)
			continue
		}
		accepted = append(accepted, article)
	}
	return accepted, nil
}

// escalate retries each URL of a zero-yield batch individually, once, with a
// pause between requests. Per-URL failures are logged and skipped.
func (b *Batcher) escalate(ctx context.Context, batch []string, category domain.Category, sourceName string) []domain.Article {
	b.logger.Info("escalating batch to single requests", "category", category, "urls", len(batch))

	var out []domain.Article
	for i, u := range batch {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			b.wait(ctx, b.cfg.SingleDelay.Std())
		}

		items, err := b.runBatch(ctx, []string{u}, category, sourceName)
		if err != nil {
			b.logger.Warn("single url failed", "category", category, "url", u, "error", err)
			continue
		}
		out = append(out, items...)
	}
	return out
}

// complete calls the backend, retrying transient failures with linear backoff.
func (b *Batcher) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		raw, err := b.completer.Complete(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !errors.Is(err, ports.ErrTransient) {
			return "", err
		}
		if attempt < b.cfg.MaxAttempts {
			b.wait(ctx, b.cfg.BaseDelay.Std()*time.Duration(attempt))
		}
	}
	return "", lastErr
}

func (b *Batcher) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func chunk(urls []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(urls); start += size {
		end := start + size
		if end > len(urls) {
			end = len(urls)
		}
		batches = append(batches, urls[start:end])
	}
	return batches
}

func buildPrompt(urls []string, bounds config.BoundsConfig) string {
	var sb strings.Builder
	sb.WriteString("Read each of the following article URLs. If a URL cannot be fetched directly, search for the article instead. ")
	sb.WriteString("Using only facts stated in the articles, write one synthesized item per URL.\n\nURLs:\n")
	for _, u := range urls {
		sb.WriteString("- ")
		sb.WriteString(u)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, `
Respond with a strict JSON array (no prose, no markdown) of at most %d objects, one per URL you could read, each shaped exactly like:
{"reference_url": "<the url>", "reference_name": "<publication name>", "reference_published_at": "<ISO 8601 date>", "header": "", "subheader": "", "summary": "", "body": ""}
Field limits: header 30-%d characters, subheader 35-%d characters or empty, summary 120-%d characters, body 100-%d characters.
Skip any URL whose article you could not read; never invent content.`,
		len(urls), bounds.HeaderMax, bounds.SubheaderMax, bounds.SummaryMax, bounds.BodyMax)
	return sb.String()
}
