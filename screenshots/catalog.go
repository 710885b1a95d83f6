package screenshots

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Platform describes one store target: where its inputs live, what sizes it needs
// and how the oracle should talk about it.
type Platform struct {
	Key        string `yaml:"key"`
	DeviceType string `yaml:"device_type"`
	Theme      string `yaml:"theme"`

	// OutputDir is the platform root under Output/, cleaned on a full rebuild.
	OutputDir string `yaml:"output_dir"`
	// DeviceDir is an optional extra level between OutputDir and the size label.
	DeviceDir string `yaml:"device_dir"`

	Sizes []SizeSpec `yaml:"sizes"`

	DisplayName string `yaml:"display_name"`
	ThemeBlurb  string `yaml:"theme_blurb"`
	Style       string `yaml:"style"`
}

// SizeDir returns the output directory for one size, relative to the Output root.
func (p Platform) SizeDir(size SizeSpec) string {
	parts := []string{filepath.FromSlash(p.OutputDir)}
	if p.DeviceDir != "" {
		parts = append(parts, p.DeviceDir)
	}
	parts = append(parts, size.Label)
	return filepath.Join(parts...)
}

// RGB is an opaque color in catalog files.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Theme is a named vertical gradient.
type Theme struct {
	Top    RGB `yaml:"top"`
	Bottom RGB `yaml:"bottom"`
}

// AppContext is the product description fed to the oracle and the copy used when it fails.
type AppContext struct {
	Name             string `yaml:"name"`
	Pitch            string `yaml:"pitch"`
	FallbackTitle    string `yaml:"fallback_title"`
	FallbackSubtitle string `yaml:"fallback_subtitle"`
}

// Catalog holds every lookup table the pipeline needs.
type Catalog struct {
	Platforms       []Platform       `yaml:"platforms"`
	Themes          map[string]Theme `yaml:"themes"`
	FontPaths       []string         `yaml:"font_paths"`
	App             AppContext       `yaml:"app"`
	ScreenshotScale float64          `yaml:"screenshot_scale"`
	TitleMaxLen     int              `yaml:"title_max_length"`
	SubtitleMaxLen  int              `yaml:"subtitle_max_length"`
}

// DefaultCatalog returns the built-in store targets.
func DefaultCatalog() Catalog {
	return Catalog{
		Platforms: []Platform{
			{
				Key:        "android",
				DeviceType: "phone",
				Theme:      "gradient_green",
				OutputDir:  "android",
				DeviceDir:  "phone",
				Sizes: []SizeSpec{
					{Width: 1080, Height: 1920, Label: "phone_1080x1920"},
					{Width: 1440, Height: 2560, Label: "phone_1440x2560"},
				},
				DisplayName: "Android (Google Play)",
				ThemeBlurb:  "Gradient green - emphasizes precision, data, analytics",
				Style:       "Technical, data-driven, powerful",
			},
			{
				Key:        "ios_iphone",
				DeviceType: "iphone",
				Theme:      "gradient_blue",
				OutputDir:  "ios/iphone",
				Sizes: []SizeSpec{
					{Width: 1320, Height: 2868, Label: "6.9_inch"},
					{Width: 1290, Height: 2796, Label: "6.7_inch"},
					{Width: 1284, Height: 2778, Label: "6.5_inch"},
					{Width: 1242, Height: 2208, Label: "5.5_inch"},
				},
				DisplayName: "iOS iPhone (App Store)",
				ThemeBlurb:  "Gradient blue - emphasizes simplicity, intelligence",
				Style:       "Clean, smart, intuitive, on-the-go",
			},
			{
				Key:        "ios_ipad",
				DeviceType: "ipad",
				Theme:      "gradient_blue",
				OutputDir:  "ios/ipad",
				Sizes: []SizeSpec{
					{Width: 2064, Height: 2752, Label: "13_inch"},
					{Width: 1668, Height: 2388, Label: "11_inch"},
				},
				DisplayName: "iOS iPad (App Store)",
				ThemeBlurb:  "Gradient blue - emphasizes workspace, productivity",
				Style:       "Professional, comprehensive, detailed analysis",
			},
		},
		Themes: map[string]Theme{
			"gradient_green": {Top: RGB{0, 128, 64}, Bottom: RGB{0, 64, 32}},
			"gradient_blue":  {Top: RGB{30, 144, 255}, Bottom: RGB{0, 71, 171}},
		},
		FontPaths: []string{
			"/System/Library/Fonts/SFNSDisplay-Bold.otf",
			"/System/Library/Fonts/Helvetica.ttc",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/truetype/roboto/Roboto-Bold.ttf",
		},
		App: AppContext{
			Name:             "Get Hooked",
			Pitch:            "a fishing intelligence app with features like heat maps, fishing forecasts, angler DNA profiles, weather overlays, and satellite imagery",
			FallbackTitle:    "Get Hooked!",
			FallbackSubtitle: "Your intelligent fishing companion",
		},
		ScreenshotScale: 0.95,
		TitleMaxLen:     30,
		SubtitleMaxLen:  50,
	}
}

// LoadCatalog decodes a YAML override file on top of DefaultCatalog.
// Fields absent from the file keep their defaults; a platforms list replaces the default list.
func LoadCatalog(path string) (Catalog, error) {
	cat := DefaultCatalog()
	if path == "" {
		return cat, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("LoadCatalog: read file: %w", err)
	}
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return Catalog{}, fmt.Errorf("LoadCatalog: unmarshal: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("LoadCatalog: %w", err)
	}
	return cat, nil
}

// Validate checks that every platform is usable.
func (c Catalog) Validate() error {
	if len(c.Platforms) == 0 {
		return errors.New("catalog has no platforms")
	}
	if c.ScreenshotScale <= 0 || c.ScreenshotScale > 1 {
		return fmt.Errorf("screenshot_scale must be in (0,1], got %v", c.ScreenshotScale)
	}
	seen := make(map[string]struct{}, len(c.Platforms))
	for _, p := range c.Platforms {
		if p.Key == "" {
			return errors.New("platform with empty key")
		}
		if _, ok := seen[p.Key]; ok {
			return fmt.Errorf("duplicate platform %q", p.Key)
		}
		seen[p.Key] = struct{}{}
		if p.OutputDir == "" {
			return fmt.Errorf("platform %q: empty output_dir", p.Key)
		}
		if _, ok := c.Themes[p.Theme]; !ok {
			return fmt.Errorf("platform %q: unknown theme %q", p.Key, p.Theme)
		}
		for _, s := range p.Sizes {
			if s.Width <= 0 || s.Height <= 0 || s.Label == "" {
				return fmt.Errorf("platform %q: invalid size %s %q", p.Key, s, s.Label)
			}
		}
	}
	return nil
}

// Platform looks up a platform by key.
func (c Catalog) Platform(key string) (Platform, bool) {
	for _, p := range c.Platforms {
		if p.Key == key {
			return p, true
		}
	}
	return Platform{}, false
}

// Select keeps only the named platforms, in catalog order.
func (c Catalog) Select(keys []string) (Catalog, error) {
	if len(keys) == 0 {
		return c, nil
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := c.Platform(k); !ok {
			return Catalog{}, fmt.Errorf("unknown platform %q", k)
		}
		want[k] = struct{}{}
	}
	out := c
	out.Platforms = nil
	for _, p := range c.Platforms {
		if _, ok := want[p.Key]; ok {
			out.Platforms = append(out.Platforms, p)
		}
	}
	return out, nil
}

// IsImageFile reports whether name has one of the recognized extensions (case-insensitive).
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
