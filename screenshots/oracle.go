package screenshots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// FallbackRankReason marks records produced without the oracle.
const FallbackRankReason = "Fallback alphabetical ordering (API error)"

// Oracle is the external vision service that captions and ranks screenshots.
// Implementations make a single request per call and do not retry.
type Oracle interface {
	RankScreenshots(ctx context.Context, paths []string, platform Platform) ([]RankedScreenshot, error)
	AnalyzeScreenshot(ctx context.Context, path string, platform Platform) (ScreenshotAnalysis, error)
}

// Oracle failure kinds.
const (
	KindRateLimit = "rate_limit"
	KindServer    = "server"
	KindDecode    = "decode"
	KindRequest   = "request"
	KindOther     = "other"
)

// OracleError describes why an oracle call failed.
type OracleError struct {
	Op   string
	Kind string
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// Analyzer wraps an Oracle and never fails: any oracle error, or a ranking that does not
// cover every input exactly once, is replaced by a deterministic fallback.
type Analyzer struct {
	oracle Oracle
	app    AppContext
	logger *slog.Logger
}

func NewAnalyzer(oracle Oracle, app AppContext, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{oracle: oracle, app: app, logger: logger}
}

// Rank returns a total ranking over paths: one record per path, ranks 1..N, hero on rank 1.
// The only error is ctx's: a cancelled run gets no fallback, so nothing is renamed.
func (a *Analyzer) Rank(ctx context.Context, paths []string, platform Platform) ([]RankedScreenshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	if a.oracle == nil {
		return FallbackRanking(paths, a.app), nil
	}
	ranked, err := a.oracle.RankScreenshots(ctx, paths, platform)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err == nil {
		ranked, err = NormalizeRanking(paths, ranked)
	}
	if err != nil {
		a.logFallback("rank", platform.Key, err)
		return FallbackRanking(paths, a.app), nil
	}
	return ranked, nil
}

// Analyze returns marketing copy for a single screenshot, falling back to the generic copy.
// Like Rank, it fails only when ctx is done.
func (a *Analyzer) Analyze(ctx context.Context, path string, platform Platform) (ScreenshotAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return ScreenshotAnalysis{}, err
	}
	if a.oracle == nil {
		return FallbackAnalysis(a.app), nil
	}
	res, err := a.oracle.AnalyzeScreenshot(ctx, path, platform)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ScreenshotAnalysis{}, ctxErr
	}
	if err != nil {
		a.logFallback("analyze "+filepath.Base(path), platform.Key, err)
		return FallbackAnalysis(a.app), nil
	}
	res.DetectedContent = dedupeStrings(res.DetectedContent)
	return res, nil
}

func (a *Analyzer) logFallback(op, platform string, err error) {
	kind := KindOther
	var oe *OracleError
	if errors.As(err, &oe) {
		kind = oe.Kind
	}
	a.logger.Error("oracle failed, using fallback copy",
		"op", op, "platform", platform, "kind", kind, "err", err)
}

// FallbackRanking orders paths alphabetically by file name and assigns the generic copy.
func FallbackRanking(paths []string, app AppContext) []RankedScreenshot {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)

	out := make([]RankedScreenshot, 0, len(names))
	for i, name := range names {
		out = append(out, RankedScreenshot{
			OriginalName:    name,
			Rank:            i + 1,
			RankReason:      FallbackRankReason,
			HeroShot:        i == 0,
			Title:           app.FallbackTitle,
			Subtitle:        app.FallbackSubtitle,
			DetectedContent: []string{"unknown"},
			Confidence:      0.0,
		})
	}
	return out
}

// FallbackAnalysis is the generic single-image result.
func FallbackAnalysis(app AppContext) ScreenshotAnalysis {
	return ScreenshotAnalysis{
		Title:           app.FallbackTitle,
		Subtitle:        app.FallbackSubtitle,
		DetectedContent: []string{"unknown"},
		Confidence:      0.0,
	}
}

// NormalizeRanking matches oracle records to the input files and renumbers them densely.
// Records naming unknown files are dropped, duplicates keep the best-ranked entry.
// It fails when any input file is left without a record.
func NormalizeRanking(paths []string, ranked []RankedScreenshot) ([]RankedScreenshot, error) {
	byKey := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		byKey[NormalizeWhitespace(name)] = name
	}

	sorted := append([]RankedScreenshot(nil), ranked...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	claimed := make(map[string]struct{}, len(paths))
	out := make([]RankedScreenshot, 0, len(paths))
	for _, r := range sorted {
		name, ok := byKey[NormalizeWhitespace(strings.TrimSpace(r.OriginalName))]
		if !ok {
			continue
		}
		if _, dup := claimed[name]; dup {
			continue
		}
		claimed[name] = struct{}{}
		r.OriginalName = name
		r.DetectedContent = dedupeStrings(r.DetectedContent)
		out = append(out, r)
	}
	if len(out) != len(paths) {
		return nil, &OracleError{
			Op:   "rank",
			Kind: KindDecode,
			Err:  fmt.Errorf("ranking covers %d of %d screenshots", len(out), len(paths)),
		}
	}
	for i := range out {
		out[i].Rank = i + 1
		out[i].HeroShot = i == 0
	}
	return out, nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
