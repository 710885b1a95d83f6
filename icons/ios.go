package icons

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

const (
	appIconSetName  = "AppIcon.appiconset"
	colorSetName    = "AccentColor.colorset"
	contentsName    = "Contents.json"
	contentsIndent  = "    "
	xcodeAuthor     = "xcode"
	luminosityTrait = "luminosity"
)

type xcodeInfo struct {
	Version    int              `json:"version"`
	Author     string           `json:"author"`
	Properties *appIconProperty `json:"properties,omitempty"`
}

type appIconProperty struct {
	DarkAppearance   bool `json:"provides-app-icon-for-dark-appearance"`
	TintedAppearance bool `json:"provides-app-icon-for-tinted-tertiary-appearance"`
}

type appIconImage struct {
	Idiom       string            `json:"idiom"`
	Size        string            `json:"size"`
	Filename    string            `json:"filename"`
	Scale       string            `json:"scale,omitempty"`
	Platform    string            `json:"platform,omitempty"`
	Appearances []appearanceTrait `json:"appearances,omitempty"`
}

type appearanceTrait struct {
	Appearance string `json:"appearance"`
	Value      string `json:"value"`
}

type appIconContents struct {
	Images []appIconImage `json:"images"`
	Info   xcodeInfo      `json:"info"`
}

type catalogContents struct {
	Info xcodeInfo `json:"info"`
}

type colorSetContents struct {
	Colors []map[string]string `json:"colors"`
	Info   xcodeInfo           `json:"info"`
}

// GenerateIOS writes a complete Assets.xcassets at assetsDir: the catalog and accent color
// Contents.json files and an AppIcon.appiconset with every definition and appearance.
// Every PNG is opaque. It returns the number of icon images written.
func GenerateIOS(assetsDir string, src image.Image, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := writeCatalogRoot(assetsDir); err != nil {
		return 0, err
	}

	setDir := filepath.Join(assetsDir, appIconSetName)
	if err := os.MkdirAll(setDir, 0o755); err != nil {
		return 0, fmt.Errorf("GenerateIOS: mkdir: %w", err)
	}

	contents := appIconContents{
		Info: xcodeInfo{
			Version: 1,
			Author:  xcodeAuthor,
			Properties: &appIconProperty{
				DarkAppearance:   true,
				TintedAppearance: true,
			},
		},
	}

	variants := make(map[string]image.Image, len(IOSAppearances))
	files := 0
	for _, def := range IOSDefinitions {
		appearances := IOSAppearances[:1]
		if def.marketing() {
			appearances = IOSAppearances
		}
		for _, a := range appearances {
			variant, ok := variants[a.Mode]
			if !ok {
				variant = ApplyAppearance(src, a.Mode)
				variants[a.Mode] = variant
			}

			name := FileName(def, a)
			px := def.PixelSize()
			icon := Flatten(imaging.Resize(variant, px, px, imaging.Lanczos))
			if err := fileutils.WritePNGAtomic(filepath.Join(setDir, name), icon); err != nil {
				return files, fmt.Errorf("GenerateIOS: %s: %w", name, err)
			}
			files++
			logger.Debug("wrote icon", "file", name, "px", px)

			entry := appIconImage{Idiom: def.Idiom, Size: def.SizeLabel(), Filename: name, Platform: def.Platform}
			if def.Idiom == "mac" {
				entry.Scale = fmt.Sprintf("%dx", def.Scale)
			}
			if a.JSONValue != "" {
				entry.Appearances = []appearanceTrait{{Appearance: luminosityTrait, Value: a.JSONValue}}
			}
			contents.Images = append(contents.Images, entry)
		}
	}

	if err := fileutils.WriteJSONFileAtomic(filepath.Join(setDir, contentsName), contents, contentsIndent); err != nil {
		return files, fmt.Errorf("GenerateIOS: %w", err)
	}
	logger.Info("generated iOS icons", "files", files, "output", assetsDir)
	return files, nil
}

func writeCatalogRoot(assetsDir string) error {
	info := xcodeInfo{Version: 1, Author: xcodeAuthor}
	if err := fileutils.WriteJSONFileAtomic(filepath.Join(assetsDir, contentsName), catalogContents{Info: info}, contentsIndent); err != nil {
		return fmt.Errorf("write catalog Contents.json: %w", err)
	}
	colors := colorSetContents{
		Colors: []map[string]string{{"idiom": "universal"}},
		Info:   info,
	}
	if err := fileutils.WriteJSONFileAtomic(filepath.Join(assetsDir, colorSetName, contentsName), colors, contentsIndent); err != nil {
		return fmt.Errorf("write accent color Contents.json: %w", err)
	}
	return nil
}
