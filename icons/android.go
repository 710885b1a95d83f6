package icons

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

// GenerateAndroid writes mipmap-<density>/ic_launcher.png and ic_launcher_round.png under resDir.
func GenerateAndroid(resDir string, src image.Image, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files := 0
	for _, s := range AndroidSizes {
		dir := filepath.Join(resDir, "mipmap-"+s.Density)
		icon := Flatten(imaging.Resize(src, s.Size, s.Size, imaging.Lanczos))
		for _, name := range []string{LauncherName, LauncherRoundName} {
			if err := fileutils.WritePNGAtomic(filepath.Join(dir, name), icon); err != nil {
				return files, fmt.Errorf("GenerateAndroid: %s/%s: %w", s.Density, name, err)
			}
			files++
		}
		logger.Debug("wrote mipmap", "density", s.Density, "px", s.Size)
	}
	logger.Info("generated Android icons", "files", files, "output", resDir)
	return files, nil
}
