package screenshots

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testCatalog() Catalog {
	cat := DefaultCatalog()
	cat.Platforms = []Platform{{
		Key:        "ios_iphone",
		DeviceType: "iphone",
		Theme:      "gradient_blue",
		OutputDir:  "ios/iphone",
		Sizes: []SizeSpec{
			{Width: 120, Height: 240, Label: "small"},
			{Width: 90, Height: 180, Label: "tiny"},
		},
	}}
	return cat
}

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestPipeline(t *testing.T, base string) *Pipeline {
	t.Helper()
	fonts, err := EmbeddedFontSet()
	if err != nil {
		t.Fatalf("EmbeddedFontSet: %v", err)
	}
	cat := testCatalog()
	return NewPipeline(base, cat, NewCompositor(fonts, cat.Themes), Options{
		Logger: discardLogger(),
		Now:    func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
}

// reverseOracle ranks files in reverse alphabetical order and titles them after their stem.
func reverseOracle() *fakeOracle {
	return &fakeOracle{
		rank: func(paths []string) ([]RankedScreenshot, error) {
			var out []RankedScreenshot
			for i := len(paths) - 1; i >= 0; i-- {
				name := filepath.Base(paths[i])
				stem := strings.TrimSuffix(name, filepath.Ext(name))
				out = append(out, RankedScreenshot{
					OriginalName: name,
					Rank:         len(paths) - i,
					RankReason:   "shows " + stem,
					Title:        strings.ToUpper(stem) + " View",
					Subtitle:     "All about " + stem,
					Confidence:   0.9,
				})
			}
			return out, nil
		},
		analyze: func(path string) (ScreenshotAnalysis, error) {
			return ScreenshotAnalysis{Title: "Solo", Subtitle: filepath.Base(path), Confidence: 0.5}, nil
		},
	}
}

func TestPipeline_AnalyzeRenamesAndWritesConfig(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	in := filepath.Join(base, "Input", "ios_iphone")
	writePNG(t, filepath.Join(in, "a.png"), color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(in, "b.png"), color.RGBA{G: 255, A: 255})
	writePNG(t, filepath.Join(in, "c.png"), color.RGBA{B: 255, A: 255})

	p := newTestPipeline(t, base)
	a := NewAnalyzer(reverseOracle(), p.catalog.App, discardLogger())
	res, err := p.Analyze(context.Background(), a, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Analyzed != 3 || res.Renamed != 3 {
		t.Fatalf("res=%+v", res)
	}

	got := dirNames(t, in)
	want := []string{"01_C_View.png", "02_B_View.png", "03_A_View.png"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("input dir=%v, want %v", got, want)
	}

	cfg, err := LoadConfig(p.ConfigPath())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Version != ConfigVersion || cfg.Generated != "2025-03-01T12:00:00Z" || !cfg.AutoOrdered {
		t.Fatalf("cfg header=%+v", cfg)
	}
	shots := cfg.Platforms["ios_iphone"].Screenshots
	if len(shots) != 3 || shots[0].File != "01_C_View.png" || shots[0].OriginalName != "c.png" || !shots[0].HeroShot {
		t.Fatalf("shots=%+v", shots)
	}
	if cfg.Platforms["ios_iphone"].Theme != "gradient_blue" {
		t.Fatalf("theme=%q", cfg.Platforms["ios_iphone"].Theme)
	}
}

func TestPipeline_AnalyzeFallbackKeepsRunning(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	in := filepath.Join(base, "Input", "ios_iphone")
	writePNG(t, filepath.Join(in, "b.png"), color.White)
	writePNG(t, filepath.Join(in, "a.png"), color.White)

	p := newTestPipeline(t, base)
	o := &fakeOracle{rank: func([]string) ([]RankedScreenshot, error) {
		return nil, &OracleError{Op: "rank", Kind: KindServer, Err: errors.New("503")}
	}}
	if _, err := p.Analyze(context.Background(), NewAnalyzer(o, p.catalog.App, discardLogger()), AnalyzeOptions{}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	got := dirNames(t, in)
	if strings.Join(got, ",") != "01_Get_Hooked.png,02_Get_Hooked.png" {
		t.Fatalf("input dir=%v", got)
	}
	cfg, _ := LoadConfig(p.ConfigPath())
	if s := cfg.Platforms["ios_iphone"].Screenshots[0]; s.OriginalName != "a.png" || s.RankReason != FallbackRankReason {
		t.Fatalf("first=%+v", s)
	}
}

func TestPipeline_AnalyzeInterruptedLeavesInputsAlone(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	in := filepath.Join(base, "Input", "ios_iphone")
	writePNG(t, filepath.Join(in, "b.png"), color.White)
	writePNG(t, filepath.Join(in, "a.png"), color.White)

	p := newTestPipeline(t, base)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o := &fakeOracle{rank: func([]string) ([]RankedScreenshot, error) {
		cancel()
		return nil, context.Canceled
	}}
	_, err := p.Analyze(ctx, NewAnalyzer(o, p.catalog.App, discardLogger()), AnalyzeOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze err=%v, want context.Canceled", err)
	}
	if got := dirNames(t, in); strings.Join(got, ",") != "a.png,b.png" {
		t.Fatalf("input dir=%v, want untouched", got)
	}
	if _, err := os.Stat(p.ConfigPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config must not be written, stat err=%v", err)
	}
}

func TestPipeline_AnalyzePreserveNames(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	in := filepath.Join(base, "Input", "ios_iphone")
	writePNG(t, filepath.Join(in, "home.png"), color.White)
	writePNG(t, filepath.Join(in, "map.png"), color.White)
	if err := os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newTestPipeline(t, base)
	res, err := p.Analyze(context.Background(), NewAnalyzer(reverseOracle(), p.catalog.App, discardLogger()), AnalyzeOptions{PreserveNames: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Renamed != 0 || res.Config.AutoOrdered {
		t.Fatalf("res=%+v", res)
	}
	if got := dirNames(t, in); strings.Join(got, ",") != "home.png,map.png,notes.txt" {
		t.Fatalf("input dir changed: %v", got)
	}
	shots := res.Config.Platforms["ios_iphone"].Screenshots
	if len(shots) != 2 || shots[0].Rank != 0 || shots[0].Title != "Solo" || shots[1].Subtitle != "map.png" {
		t.Fatalf("shots=%+v", shots)
	}
}

func TestPipeline_AnalyzeRequiresInputDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	p := newTestPipeline(t, base)
	if _, err := p.Analyze(context.Background(), NewAnalyzer(nil, p.catalog.App, discardLogger()), AnalyzeOptions{}); err == nil {
		t.Fatalf("expected error for missing Input dir")
	}
	if _, err := os.Stat(p.ConfigPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config must not be written, stat err=%v", err)
	}
}

func TestPipeline_GenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	in := filepath.Join(base, "Input", "ios_iphone")
	writePNG(t, filepath.Join(in, "a.png"), color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(in, "b.png"), color.RGBA{G: 255, A: 255})

	p := newTestPipeline(t, base)
	if _, err := p.Analyze(context.Background(), NewAnalyzer(reverseOracle(), p.catalog.App, discardLogger()), AnalyzeOptions{}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	stray := filepath.Join(base, "Output", "ios", "iphone", "small", "old.png")
	writePNG(t, stray, color.Black)

	res, err := p.Generate(context.Background(), GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Generated != 4 || res.Failed != 0 || res.Missing != 0 || len(res.Manifests) != 1 {
		t.Fatalf("res=%+v", res)
	}
	if _, err := os.Stat(stray); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("full generate must clean stale output, stat err=%v", err)
	}

	out := filepath.Join(base, "Output", "ios", "iphone", "small", "01_B_View.png")
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 240 {
		t.Fatalf("output bounds=%v, want 120x240", b)
	}
	manifest, err := os.ReadFile(filepath.Join(base, "Output", "ios", "iphone", ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(manifest), "| 1 | 01_B_View.png | B View |") {
		t.Fatalf("manifest missing first row:\n%s", manifest)
	}

	if _, err := p.Generate(context.Background(), GenerateOptions{}); err != nil {
		t.Fatalf("Generate again: %v", err)
	}
	second, _ := os.ReadFile(out)
	if !bytes.Equal(first, second) {
		t.Fatalf("output differs between runs")
	}
	manifest2, _ := os.ReadFile(filepath.Join(base, "Output", "ios", "iphone", ManifestName))
	if !bytes.Equal(manifest, manifest2) {
		t.Fatalf("manifest differs between runs")
	}
}

func TestPipeline_GenerateOnlySkipsClean(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	in := filepath.Join(base, "Input", "ios_iphone")
	writePNG(t, filepath.Join(in, "a.png"), color.White)
	writePNG(t, filepath.Join(in, "b.png"), color.White)

	p := newTestPipeline(t, base)
	if _, err := p.Analyze(context.Background(), NewAnalyzer(reverseOracle(), p.catalog.App, discardLogger()), AnalyzeOptions{}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	stray := filepath.Join(base, "Output", "ios", "iphone", "small", "keep.png")
	writePNG(t, stray, color.Black)

	res, err := p.Generate(context.Background(), GenerateOptions{Only: []string{"ios_iphone/02_A_View.png"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Generated != 2 {
		t.Fatalf("Generated=%d, want 2 (one file, two sizes)", res.Generated)
	}
	if _, err := os.Stat(stray); err != nil {
		t.Fatalf("regenerate must not clean output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "Output", "ios", "iphone", "tiny", "01_B_View.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unselected screenshot was rendered, stat err=%v", err)
	}
}

func TestPipeline_GenerateSkipsMissingAndBrokenSources(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	in := filepath.Join(base, "Input", "ios_iphone")
	writePNG(t, filepath.Join(in, "good.png"), color.White)
	if err := os.WriteFile(filepath.Join(in, "broken.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newTestPipeline(t, base)
	cfg := PipelineConfig{
		Version: ConfigVersion,
		Platforms: map[string]PlatformConfig{
			"ios_iphone": {Theme: "gradient_blue", Screenshots: []ScreenshotConfig{
				{File: "gone.png", Title: "Gone"},
				{File: "broken.png", Title: "Broken"},
				{File: "good.png", Title: "Good"},
			}},
			"windows_phone": {Theme: "gradient_blue"},
		},
	}
	if err := SaveConfig(p.ConfigPath(), "", cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	res, err := p.Generate(context.Background(), GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Missing != 1 || res.Failed != 2 || res.Generated != 2 {
		t.Fatalf("res=%+v", res)
	}
}

func TestPipeline_GenerateWithoutConfig(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, t.TempDir())
	_, err := p.Generate(context.Background(), GenerateOptions{})
	if !errors.Is(err, ErrNoConfig) {
		t.Fatalf("err=%v, want ErrNoConfig", err)
	}
}

func TestSaveConfig_BacksUpPrevious(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	prev := filepath.Join(dir, PrevConfigFileName)

	if err := SaveConfig(path, prev, PipelineConfig{Version: "old"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := SaveConfig(path, prev, PipelineConfig{Version: "new"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	old, err := LoadConfig(prev)
	if err != nil || old.Version != "old" {
		t.Fatalf("backup=%+v err=%v", old, err)
	}
	cur, err := LoadConfig(path)
	if err != nil || cur.Version != "new" {
		t.Fatalf("current=%+v err=%v", cur, err)
	}
}
