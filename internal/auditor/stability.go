package auditor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/net/html"

	"github.com/a11ygate/a11ygate/internal/model"
)

// Strategy names accepted in site configuration.
const (
	StrategyContentHash = "content-hash"
	StrategyNodeCount   = "node-count"
	StrategyQuietPeriod = "quiet-period"
)

// DefaultSettleDelay is the pause between the two observations a settle
// comparison is based on.
const DefaultSettleDelay = 300 * time.Millisecond

// Fetcher re-fetches the page body for settle comparison.
type Fetcher func(ctx context.Context) ([]byte, error)

// StabilityStrategy is one heuristic for judging that a page has finished
// rendering enough to be scanned reliably. Strategies are tried in the
// configured order until one succeeds.
//
// Design decision: Strategies implement a named interface, mirroring how
// pipeline steps carry a Name() for logging, because the winning strategy
// is recorded in the report and surfaced to consumers.
type StabilityStrategy interface {
	// Name returns the strategy's configuration name.
	Name() string

	// Probe reports whether the page is stable. The body is the
	// navigation response; fetch re-fetches the page when the strategy
	// compares two observations.
	Probe(ctx context.Context, body []byte, fetch Fetcher) (bool, error)
}

// contentHashStrategy judges a page stable when a cryptographic
// fingerprint of the body is unchanged across two fetches separated by a
// settle delay. This is the strictest strategy: any dynamic content
// (timestamps, CSRF tokens) defeats it.
type contentHashStrategy struct {
	settleDelay time.Duration
}

func (s *contentHashStrategy) Name() string { return StrategyContentHash }

func (s *contentHashStrategy) Probe(ctx context.Context, body []byte, fetch Fetcher) (bool, error) {
	first := blake2b.Sum256(body)

	if err := sleepCtx(ctx, s.settleDelay); err != nil {
		return false, err
	}

	second, err := fetch(ctx)
	if err != nil {
		return false, fmt.Errorf("content-hash refetch failed: %w", err)
	}

	return first == blake2b.Sum256(second), nil
}

// nodeCountStrategy judges a page stable when the HTML element count is
// unchanged across two fetches. More tolerant than content-hash: rotating
// text content passes as long as the document structure settled.
type nodeCountStrategy struct {
	settleDelay time.Duration
}

func (s *nodeCountStrategy) Name() string { return StrategyNodeCount }

func (s *nodeCountStrategy) Probe(ctx context.Context, body []byte, fetch Fetcher) (bool, error) {
	first := countElements(body)

	if err := sleepCtx(ctx, s.settleDelay); err != nil {
		return false, err
	}

	second, err := fetch(ctx)
	if err != nil {
		return false, fmt.Errorf("node-count refetch failed: %w", err)
	}

	return first == countElements(second), nil
}

// countElements counts start and self-closing tags in the document using
// the streaming tokenizer; a full parse is unnecessary for a settle
// comparison.
func countElements(body []byte) int {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	count := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return count
		case html.StartTagToken, html.SelfClosingTagToken:
			count++
		}
	}
}

// quietPeriodStrategy waits a fixed settle delay and declares the page
// stable unconditionally. It exists as a terminal fallback for pages whose
// content never settles but are still worth scanning.
type quietPeriodStrategy struct {
	settleDelay time.Duration
}

func (s *quietPeriodStrategy) Name() string { return StrategyQuietPeriod }

func (s *quietPeriodStrategy) Probe(ctx context.Context, _ []byte, _ Fetcher) (bool, error) {
	if err := sleepCtx(ctx, s.settleDelay); err != nil {
		return false, err
	}
	return true, nil
}

// ParseStrategies converts configured strategy names into strategy
// instances, preserving order. Unknown names are rejected so a typo in
// site configuration surfaces immediately rather than silently weakening
// the probe.
func ParseStrategies(names []string, settleDelay time.Duration) ([]StabilityStrategy, error) {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}

	strategies := make([]StabilityStrategy, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case StrategyContentHash:
			strategies = append(strategies, &contentHashStrategy{settleDelay: settleDelay})
		case StrategyNodeCount:
			strategies = append(strategies, &nodeCountStrategy{settleDelay: settleDelay})
		case StrategyQuietPeriod:
			strategies = append(strategies, &quietPeriodStrategy{settleDelay: settleDelay})
		default:
			return nil, fmt.Errorf("unknown stability strategy %q", name)
		}
	}

	return strategies, nil
}

// ProbeStability tries the strategies in order and returns the outcome of
// the first one that judges the page stable. Strategy errors are logged
// and the next strategy is tried; exhausting the list yields a not-ok
// result naming the last strategy tried.
func ProbeStability(ctx context.Context, strategies []StabilityStrategy, body []byte, fetch Fetcher, logger *slog.Logger) *model.Stability {
	start := time.Now()
	lastName := ""

	for _, strategy := range strategies {
		lastName = strategy.Name()

		ok, err := strategy.Probe(ctx, body, fetch)
		if err != nil {
			logger.Warn("stability strategy failed",
				"strategy", strategy.Name(),
				"error", err,
			)
			continue
		}
		if ok {
			return &model.Stability{
				OK:         true,
				Strategy:   strategy.Name(),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}
	}

	return &model.Stability{
		OK:         false,
		Strategy:   lastName,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
