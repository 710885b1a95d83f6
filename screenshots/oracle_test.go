package screenshots

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

type fakeOracle struct {
	rank    func(paths []string) ([]RankedScreenshot, error)
	analyze func(path string) (ScreenshotAnalysis, error)
	calls   int
}

func (f *fakeOracle) RankScreenshots(_ context.Context, paths []string, _ Platform) ([]RankedScreenshot, error) {
	f.calls++
	return f.rank(paths)
}

func (f *fakeOracle) AnalyzeScreenshot(_ context.Context, path string, _ Platform) (ScreenshotAnalysis, error) {
	f.calls++
	return f.analyze(path)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackRanking(t *testing.T) {
	t.Parallel()

	app := DefaultCatalog().App
	got := FallbackRanking([]string{"/in/c.png", "/in/a.png", "/in/b.png"}, app)
	if len(got) != 3 {
		t.Fatalf("len=%d, want 3", len(got))
	}
	for i, want := range []string{"a.png", "b.png", "c.png"} {
		r := got[i]
		if r.OriginalName != want || r.Rank != i+1 {
			t.Fatalf("got[%d]=%s rank %d, want %s rank %d", i, r.OriginalName, r.Rank, want, i+1)
		}
		if r.HeroShot != (i == 0) {
			t.Fatalf("got[%d].HeroShot=%v", i, r.HeroShot)
		}
		if r.Title != "Get Hooked!" || r.Subtitle != "Your intelligent fishing companion" {
			t.Fatalf("got[%d] copy=%q/%q", i, r.Title, r.Subtitle)
		}
		if r.Confidence != 0 || len(r.DetectedContent) != 1 || r.DetectedContent[0] != "unknown" {
			t.Fatalf("got[%d]=%+v, want fallback markers", i, r)
		}
		if r.RankReason != FallbackRankReason {
			t.Fatalf("got[%d].RankReason=%q", i, r.RankReason)
		}
	}
}

func TestAnalyzer_RankFallsBackOnError(t *testing.T) {
	t.Parallel()

	o := &fakeOracle{rank: func([]string) ([]RankedScreenshot, error) {
		return nil, &OracleError{Op: "rank", Kind: KindRateLimit, Err: errors.New("429")}
	}}
	a := NewAnalyzer(o, DefaultCatalog().App, discardLogger())
	got, err := a.Rank(context.Background(), []string{"b.png", "a.png"}, Platform{Key: "android"})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if o.calls != 1 {
		t.Fatalf("oracle calls=%d, want 1 (no retries)", o.calls)
	}
	if len(got) != 2 || got[0].OriginalName != "a.png" || got[0].RankReason != FallbackRankReason {
		t.Fatalf("got %+v, want alphabetical fallback", got)
	}
}

func TestAnalyzer_RankFallsBackOnIncompleteRanking(t *testing.T) {
	t.Parallel()

	o := &fakeOracle{rank: func([]string) ([]RankedScreenshot, error) {
		return []RankedScreenshot{{OriginalName: "a.png", Rank: 1, Title: "Heat Map"}}, nil
	}}
	a := NewAnalyzer(o, DefaultCatalog().App, discardLogger())
	got, err := a.Rank(context.Background(), []string{"a.png", "b.png"}, Platform{Key: "android"})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Get Hooked!" {
		t.Fatalf("got %+v, want fallback", got)
	}
}

func TestAnalyzer_AnalyzeFallsBack(t *testing.T) {
	t.Parallel()

	o := &fakeOracle{analyze: func(string) (ScreenshotAnalysis, error) {
		return ScreenshotAnalysis{}, errors.New("boom")
	}}
	a := NewAnalyzer(o, DefaultCatalog().App, discardLogger())
	got, err := a.Analyze(context.Background(), "x.png", Platform{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Title != "Get Hooked!" || got.Confidence != 0 {
		t.Fatalf("got %+v, want fallback", got)
	}
}

func TestAnalyzer_CancelledRunGetsNoFallback(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o := &fakeOracle{
		rank: func([]string) ([]RankedScreenshot, error) {
			cancel()
			return nil, context.Canceled
		},
		analyze: func(string) (ScreenshotAnalysis, error) {
			t.Errorf("oracle called after cancellation")
			return ScreenshotAnalysis{}, nil
		},
	}
	a := NewAnalyzer(o, DefaultCatalog().App, discardLogger())
	got, err := a.Rank(ctx, []string{"a.png", "b.png"}, Platform{Key: "android"})
	if !errors.Is(err, context.Canceled) || got != nil {
		t.Fatalf("Rank got=%v err=%v, want context.Canceled and no ranking", got, err)
	}
	if _, err := a.Analyze(ctx, "a.png", Platform{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze err=%v, want context.Canceled", err)
	}
}

func TestNormalizeRanking(t *testing.T) {
	t.Parallel()

	dir := "/in"
	withNNBSP := "Screenshot 9.41\u202fAM.png"
	paths := []string{
		filepath.Join(dir, withNNBSP),
		filepath.Join(dir, "map.png"),
		filepath.Join(dir, "dna.png"),
	}
	ranked := []RankedScreenshot{
		{OriginalName: "dna.png", Rank: 7, HeroShot: true, DetectedContent: []string{"chart", "Chart", " "}},
		{OriginalName: "Screenshot 9.41 AM.png", Rank: 2},
		{OriginalName: "ghost.png", Rank: 1},
		{OriginalName: "map.png", Rank: 4},
		{OriginalName: "map.png", Rank: 9},
	}
	got, err := NormalizeRanking(paths, ranked)
	if err != nil {
		t.Fatalf("NormalizeRanking: %v", err)
	}
	wantNames := []string{withNNBSP, "map.png", "dna.png"}
	for i, r := range got {
		if r.OriginalName != wantNames[i] {
			t.Fatalf("got[%d]=%q, want %q", i, r.OriginalName, wantNames[i])
		}
		if r.Rank != i+1 || r.HeroShot != (i == 0) {
			t.Fatalf("got[%d] rank=%d hero=%v", i, r.Rank, r.HeroShot)
		}
	}
	if dc := got[2].DetectedContent; len(dc) != 1 || dc[0] != "chart" {
		t.Fatalf("detected=%v, want [chart]", dc)
	}
}

func TestNormalizeRanking_IncompleteIsDecodeError(t *testing.T) {
	t.Parallel()

	_, err := NormalizeRanking([]string{"a.png", "b.png"}, []RankedScreenshot{{OriginalName: "a.png", Rank: 1}})
	var oe *OracleError
	if !errors.As(err, &oe) || oe.Kind != KindDecode {
		t.Fatalf("err=%v, want decode OracleError", err)
	}
}
