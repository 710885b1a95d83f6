package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theimaginaryfoundation/store-assets/icons"
	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
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
	if err := run(cfg, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func run(cfg Config, stderr io.Writer) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	r := lipgloss.NewRenderer(stderr)
	heading := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))

	title := "KMP ICON GENERATOR"
	if cfg.Mode == modeIOS {
		title = "iOS ICON GENERATOR"
	}
	fmt.Fprintln(stderr, heading.Render(strings.Repeat("=", 50)))
	fmt.Fprintln(stderr, heading.Render(title))
	fmt.Fprintln(stderr, heading.Render(strings.Repeat("=", 50)))

	if !fileutils.DirExists(cfg.ProjectRoot) {
		return usageError{fmt.Errorf("project not found: %s", cfg.ProjectRoot)}
	}
	if !fileutils.FileExists(cfg.SourcePath) {
		return usageError{fmt.Errorf("source image not found: %s", cfg.SourcePath)}
	}
	src, err := icons.LoadSource(cfg.SourcePath)
	if err != nil {
		return err
	}
	logger.Info("source", "path", src.Path, "width", src.Width, "height", src.Height)
	if src.Cropped {
		logger.Warn("source not square, cropped to center", "size", src.Image.Bounds().Dx())
	}

	var res icons.Result
	switch cfg.Mode {
	case modeIOS:
		res, err = icons.GenerateXcode(cfg.ProjectRoot, src.Image, logger)
	default:
		res, err = icons.GenerateKMP(cfg.ProjectRoot, src.Image, logger)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(stderr, heading.Render(fmt.Sprintf("COMPLETE: %d files generated", res.Total())))
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d platform(s) failed: %w", len(res.Errors), errors.Join(res.Errors...))
	}
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.ProjectRoot, "project", "", "Project root (KMP: contains iosApp/ and/or composeApp/; ios: Xcode project folder)")
	fs.StringVar(&cfg.SourcePath, "source", "", "Source icon image, at least 1024x1024 (non-square sources are center-cropped)")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Project layout: kmp or ios")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags] [<project_root> <source_image>]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/icon-generator -project ../MyKMPApp -source icon.png")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/icon-generator -mode ios ../MyApp icon-1024.png")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	// Positional form: <project_root> <source_image>.
	rest := fs.Args()
	if len(rest) > 0 {
		if len(rest) != 2 || cfg.ProjectRoot != "" || cfg.SourcePath != "" {
			return Config{}, errors.New("usage: icon-generator [-mode kmp|ios] <project_root> <source_image>")
		}
		cfg.ProjectRoot, cfg.SourcePath = rest[0], rest[1]
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.ProjectRoot != "" {
		cfg.ProjectRoot = filepath.Clean(cfg.ProjectRoot)
	}
	if cfg.SourcePath != "" {
		cfg.SourcePath = filepath.Clean(cfg.SourcePath)
	}
	return cfg, nil
}
