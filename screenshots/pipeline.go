package screenshots

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

const (
	ConfigFileName     = "screenshot_config.json"
	PrevConfigFileName = "screenshot_config.prev.json"
	InputDirName       = "Input"
	OutputDirName      = "Output"
)

// Options configures a Pipeline.
type Options struct {
	Logger *slog.Logger
	// Now stamps the config document (defaults to time.Now).
	Now func() time.Time
}

// Pipeline sequences analyze (rank, rename, persist config) and generate (compose every size,
// write the manifest) over a base directory laid out as Input/<platform>/, Output/ and
// screenshot_config.json.
type Pipeline struct {
	baseDir    string
	catalog    Catalog
	compositor *Compositor
	logger     *slog.Logger
	now        func() time.Time
}

func NewPipeline(baseDir string, catalog Catalog, compositor *Compositor, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		baseDir:    filepath.Clean(baseDir),
		catalog:    catalog,
		compositor: compositor,
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

func (p *Pipeline) InputDir() string   { return filepath.Join(p.baseDir, InputDirName) }
func (p *Pipeline) OutputDir() string  { return filepath.Join(p.baseDir, OutputDirName) }
func (p *Pipeline) ConfigPath() string { return filepath.Join(p.baseDir, ConfigFileName) }

// AnalyzeOptions controls Analyze.
type AnalyzeOptions struct {
	// PreserveNames analyzes each screenshot on its own and leaves file names alone.
	PreserveNames bool
}

// AnalyzeResult summarizes an analyze run.
type AnalyzeResult struct {
	Config   PipelineConfig
	Analyzed int
	Renamed  int
}

// Analyze builds and persists the PipelineConfig. The input directory must exist; nothing
// is renamed or written when it does not.
func (p *Pipeline) Analyze(ctx context.Context, analyzer *Analyzer, opts AnalyzeOptions) (AnalyzeResult, error) {
	if analyzer == nil {
		return AnalyzeResult{}, errors.New("Analyze: analyzer is nil")
	}
	if !fileutils.DirExists(p.InputDir()) {
		return AnalyzeResult{}, fmt.Errorf("Analyze: input directory not found: %s", p.InputDir())
	}

	res := AnalyzeResult{
		Config: PipelineConfig{
			Version:     ConfigVersion,
			Generated:   p.now().Format(time.RFC3339),
			AutoOrdered: !opts.PreserveNames,
			Platforms:   map[string]PlatformConfig{},
		},
	}
	for _, platform := range p.catalog.Platforms {
		if err := ctx.Err(); err != nil {
			return AnalyzeResult{}, err
		}
		dir := filepath.Join(p.InputDir(), platform.Key)
		if !fileutils.DirExists(dir) {
			p.logger.Warn("skipping platform, directory not found", "platform", platform.Key, "dir", dir)
			continue
		}
		files, err := ListImages(dir)
		if err != nil {
			return AnalyzeResult{}, fmt.Errorf("Analyze: %w", err)
		}
		if len(files) == 0 {
			p.logger.Warn("skipping platform, no images found", "platform", platform.Key, "dir", dir)
			continue
		}
		p.logger.Info("analyzing platform", "platform", platform.Key, "screenshots", len(files), "theme", platform.Theme)

		var shots []ScreenshotConfig
		if opts.PreserveNames {
			for _, name := range files {
				a, err := analyzer.Analyze(ctx, filepath.Join(dir, name), platform)
				if err != nil {
					return AnalyzeResult{}, fmt.Errorf("Analyze: %s: %w", platform.Key, err)
				}
				shots = append(shots, ScreenshotConfig{
					File:            name,
					OriginalName:    name,
					Title:           a.Title,
					Subtitle:        a.Subtitle,
					DetectedContent: a.DetectedContent,
					Confidence:      a.Confidence,
				})
			}
		} else {
			paths := make([]string, 0, len(files))
			for _, name := range files {
				paths = append(paths, filepath.Join(dir, name))
			}
			ranked, err := analyzer.Rank(ctx, paths, platform)
			if err != nil {
				return AnalyzeResult{}, fmt.Errorf("Analyze: %s: %w", platform.Key, err)
			}

			plan, err := PlanRenames(dir, files, ranked)
			if err != nil {
				return AnalyzeResult{}, fmt.Errorf("Analyze: %s: %w", platform.Key, err)
			}
			for _, name := range plan.Unmatched {
				p.logger.Warn("ranked file not found", "platform", platform.Key, "name", name)
			}
			if err := ctx.Err(); err != nil {
				return AnalyzeResult{}, err
			}
			n, err := plan.Apply()
			res.Renamed += n
			if err != nil {
				return AnalyzeResult{}, fmt.Errorf("Analyze: %s: %w", platform.Key, err)
			}
			for _, op := range plan.Ops {
				if op.From != op.To {
					p.logger.Info("renamed", "platform", platform.Key, "from", op.From, "to", op.To)
				}
				r := op.Record
				shots = append(shots, ScreenshotConfig{
					File:            op.To,
					OriginalName:    r.OriginalName,
					Rank:            r.Rank,
					RankReason:      r.RankReason,
					HeroShot:        r.HeroShot,
					Title:           r.Title,
					Subtitle:        r.Subtitle,
					DetectedContent: r.DetectedContent,
					Confidence:      r.Confidence,
				})
			}
		}

		res.Analyzed += len(shots)
		res.Config.Platforms[platform.Key] = PlatformConfig{
			Theme:       platform.Theme,
			DeviceType:  platform.DeviceType,
			Screenshots: shots,
		}
	}

	if err := ctx.Err(); err != nil {
		return AnalyzeResult{}, err
	}
	if err := SaveConfig(p.ConfigPath(), filepath.Join(p.baseDir, PrevConfigFileName), res.Config); err != nil {
		return AnalyzeResult{}, fmt.Errorf("Analyze: %w", err)
	}
	p.logger.Info("analysis complete", "analyzed", res.Analyzed, "config", p.ConfigPath())
	return res, nil
}

// GenerateOptions controls Generate.
type GenerateOptions struct {
	// Only regenerates the listed "platform/file" entries and skips the output cleanup.
	Only []string
}

// GenerateResult counts what Generate produced.
type GenerateResult struct {
	Generated int
	Failed    int
	Missing   int
	Manifests []string
}

// Generate renders every configured screenshot at every size of its platform.
// Without Only, each platform's output subtree is removed first so the run is a full rebuild.
func (p *Pipeline) Generate(ctx context.Context, opts GenerateOptions) (GenerateResult, error) {
	if p.compositor == nil {
		return GenerateResult{}, errors.New("Generate: compositor is nil")
	}
	cfg, err := LoadConfig(p.ConfigPath())
	if err != nil {
		return GenerateResult{}, fmt.Errorf("Generate: %w", err)
	}
	p.logger.Info("loaded config", "version", cfg.Version, "generated", cfg.Generated, "auto_ordered", cfg.AutoOrdered)

	type target struct {
		platform Platform
		config   PlatformConfig
	}
	var targets []target
	for _, platform := range p.catalog.Platforms {
		if pc, ok := cfg.Platforms[platform.Key]; ok {
			targets = append(targets, target{platform: platform, config: pc})
		}
	}
	for key := range cfg.Platforms {
		if _, ok := p.catalog.Platform(key); !ok {
			p.logger.Warn("config names a platform the catalog does not know", "platform", key)
		}
	}

	only := toSet(opts.Only)
	if len(only) == 0 {
		for _, t := range targets {
			dir := filepath.Join(p.OutputDir(), filepath.FromSlash(t.platform.OutputDir))
			if !fileutils.DirExists(dir) {
				continue
			}
			p.logger.Info("cleaning", "dir", dir)
			if err := os.RemoveAll(dir); err != nil {
				return GenerateResult{}, fmt.Errorf("Generate: clean %s: %w", dir, err)
			}
		}
	}

	var res GenerateResult
	for _, t := range targets {
		theme := t.config.Theme
		if theme == "" {
			theme = t.platform.Theme
		}
		for _, ss := range t.config.Screenshots {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if len(only) > 0 {
				if _, ok := only[t.platform.Key+"/"+ss.File]; !ok {
					continue
				}
			}
			p.logger.Info("processing", "platform", t.platform.Key, "file", ss.File, "rank", ss.Rank, "hero", ss.HeroShot, "title", ss.Title)

			src := filepath.Join(p.InputDir(), t.platform.Key, ss.File)
			if !fileutils.FileExists(src) {
				p.logger.Error("source file not found", "path", src)
				res.Missing++
				continue
			}
			stem := strings.TrimSuffix(ss.File, filepath.Ext(ss.File))
			for _, size := range t.platform.Sizes {
				out := filepath.Join(p.OutputDir(), t.platform.SizeDir(size), stem+".png")
				if err := p.renderOne(src, out, ss, size, theme); err != nil {
					p.logger.Error("size failed", "file", ss.File, "size", size.String(), "err", err)
					res.Failed++
					continue
				}
				p.logger.Debug("wrote", "size", size.String(), "path", out)
				res.Generated++
			}
		}
	}

	for _, t := range targets {
		path := filepath.Join(p.OutputDir(), filepath.FromSlash(t.platform.OutputDir), ManifestName)
		if err := WriteManifest(path, cfg, t.platform.Key, t.config); err != nil {
			return res, fmt.Errorf("Generate: %w", err)
		}
		res.Manifests = append(res.Manifests, path)
	}
	p.logger.Info("generation complete", "generated", res.Generated, "failed", res.Failed, "missing", res.Missing, "output", p.OutputDir())
	return res, nil
}

func (p *Pipeline) renderOne(src, out string, ss ScreenshotConfig, size SizeSpec, theme string) error {
	img, err := p.compositor.ComposeFile(src, ss.Title, ss.Subtitle, size, theme, p.catalog.ScreenshotScale)
	if err != nil {
		return err
	}
	return fileutils.WritePNGAtomic(out, img)
}

// Auto runs Analyze and then a full Generate.
func (p *Pipeline) Auto(ctx context.Context, analyzer *Analyzer, opts AnalyzeOptions) (AnalyzeResult, GenerateResult, error) {
	ar, err := p.Analyze(ctx, analyzer, opts)
	if err != nil {
		return ar, GenerateResult{}, err
	}
	gr, err := p.Generate(ctx, GenerateOptions{})
	return ar, gr, err
}

// ListImages returns the sorted names of regular image files directly inside dir.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || !IsImageFile(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("read dir entry info %s: %w", name, err)
		}
		if info.Mode()&fs.ModeType != 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out[filepath.ToSlash(s)] = struct{}{}
		}
	}
	return out
}
