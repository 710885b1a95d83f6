package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/theimaginaryfoundation/store-assets/screenshots"
	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
	"github.com/theimaginaryfoundation/store-assets/screenshots/provider"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		flag.CommandLine.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := deps{stderr: os.Stderr, getenv: os.Getenv, newOracle: provider.New}
	if err := run(ctx, cfg, d); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// usageError marks failures of a precondition the caller can fix (exit code 2).
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type deps struct {
	stderr    io.Writer
	getenv    func(string) string
	newOracle func(name string, cfg provider.Config) (screenshots.Oracle, error)
}

func run(ctx context.Context, cfg Config, d deps) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(d.stderr, &slog.HandlerOptions{Level: level}))
	rep := newReporter(d.stderr)

	cat, err := screenshots.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return usageError{err}
	}
	cat, err = cat.Select(cfg.Platforms)
	if err != nil {
		return usageError{fmt.Errorf("-platforms: %w", err)}
	}

	fonts, err := screenshots.LoadFontSet(cat.FontPaths)
	if err != nil {
		return err
	}
	logger.Debug("font", "source", fonts.Source())

	p := screenshots.NewPipeline(cfg.BaseDir, cat, screenshots.NewCompositor(fonts, cat.Themes), screenshots.Options{Logger: logger})

	var analyzer *screenshots.Analyzer
	if cfg.NeedsOracle() {
		if !fileutils.DirExists(p.InputDir()) {
			return usageError{fmt.Errorf("input directory not found: %s (expected %s/<platform>/)", p.InputDir(), p.InputDir())}
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = d.getenv(provider.APIKeyEnv(cfg.Provider))
		}
		if apiKey == "" {
			return usageError{fmt.Errorf("missing %s (or pass -api-key)", provider.APIKeyEnv(cfg.Provider))}
		}
		oracle, err := d.newOracle(cfg.Provider, provider.Config{
			APIKey: apiKey,
			Model:  cfg.Model,
			App:    cat.App,
			Limits: provider.Limits{TitleMaxLen: cat.TitleMaxLen, SubtitleMaxLen: cat.SubtitleMaxLen},
		})
		if err != nil {
			return usageError{err}
		}
		analyzer = screenshots.NewAnalyzer(oracle, cat.App, logger)
	} else if !fileutils.FileExists(p.ConfigPath()) {
		return usageError{fmt.Errorf("config not found: %s (run -analyze first)", p.ConfigPath())}
	}

	aopts := screenshots.AnalyzeOptions{PreserveNames: cfg.PreserveNames}
	switch cfg.Action() {
	case actionAnalyze:
		rep.banner("screenshot analysis")
		res, err := p.Analyze(ctx, analyzer, aopts)
		if err != nil {
			return err
		}
		rep.analysis(cat, res)
		fmt.Fprintf(d.stderr, "Review %s, then run with -generate.\n", p.ConfigPath())
	case actionGenerate, actionRegenerate:
		rep.banner("screenshot generation")
		res, err := p.Generate(ctx, screenshots.GenerateOptions{Only: cfg.Regenerate})
		if err != nil {
			return err
		}
		rep.generation(res)
	case actionAuto:
		rep.banner("screenshot pipeline (auto)")
		ares, gres, err := p.Auto(ctx, analyzer, aopts)
		if err != nil {
			return err
		}
		rep.analysis(cat, ares)
		rep.generation(gres)
	}
	return nil
}

// stringList is a repeatable, comma-separated flag value.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	var regenerate, platforms stringList
	fs.SetOutput(os.Stderr)
	fs.BoolVar(&cfg.Analyze, "analyze", false, "Rank and caption screenshots, rename them, write screenshot_config.json")
	fs.BoolVar(&cfg.Generate, "generate", false, "Render every store size from screenshot_config.json (cleans output first)")
	fs.BoolVar(&cfg.Auto, "auto", false, "Run -analyze then -generate")
	fs.Var(&regenerate, "regenerate", "Re-render only these platform/file entries (repeatable or comma-separated; extra positional args are added)")
	fs.BoolVar(&cfg.PreserveNames, "preserve-names", false, "Caption screenshots one by one without ranking or renaming")
	fs.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "Directory holding Input/, Output/ and screenshot_config.json")
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Optional YAML file overriding platforms, sizes, themes, fonts and app copy")
	fs.Var(&platforms, "platforms", "Only process these platform keys (comma-separated)")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "Vision provider: anthropic or openai")
	fs.StringVar(&cfg.Model, "model", "", "Model to use (default depends on -provider)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (overrides ANTHROPIC_API_KEY / OPENAI_API_KEY)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s -analyze|-generate|-auto|-regenerate <platform/file>... [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/screenshot-pipeline -auto")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/screenshot-pipeline -analyze -provider openai -platforms ios_iphone,ios_ipad")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/screenshot-pipeline -regenerate android/01_Find_Fish.png ios_iphone/02_Plan_Trips.png")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		if len(regenerate) == 0 {
			return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
		}
		for _, r := range rest {
			_ = regenerate.Set(r)
		}
	}
	for i, r := range regenerate {
		regenerate[i] = filepath.ToSlash(r)
	}
	cfg.Regenerate = regenerate
	cfg.Platforms = platforms
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.BaseDir = filepath.Clean(cfg.BaseDir)
	if cfg.CatalogPath != "" {
		cfg.CatalogPath = filepath.Clean(cfg.CatalogPath)
	}
	return cfg, nil
}
