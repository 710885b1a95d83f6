package icons

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

const assetsCatalogName = "Assets.xcassets"

// Kotlin Multiplatform project layout.
var (
	kmpIOSDir          = "iosApp"
	kmpAndroidDir      = "composeApp"
	kmpIOSAssetsPath   = filepath.Join("iosApp", "iosApp", assetsCatalogName)
	kmpAndroidResPath  = filepath.Join("composeApp", "src", "androidMain", "res")
	errNotKMP          = errors.New("not a KMP project (no iosApp or composeApp folder)")
	errNoAssetsCatalog = errors.New("could not determine Assets.xcassets location")
)

// Result reports what a project run produced. Per-platform failures are collected, not fatal.
type Result struct {
	IOSFiles     int
	AndroidFiles int
	AssetsDir    string
	ResDir       string
	Errors       []error
}

func (r Result) Total() int { return r.IOSFiles + r.AndroidFiles }

// GenerateKMP writes the iOS catalog and the Android mipmaps of a Kotlin Multiplatform project.
// Each platform is generated only when its top-level folder exists.
func GenerateKMP(root string, src image.Image, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !fileutils.DirExists(root) {
		return Result{}, fmt.Errorf("GenerateKMP: project not found: %s", root)
	}
	hasIOS := fileutils.DirExists(filepath.Join(root, kmpIOSDir))
	hasAndroid := fileutils.DirExists(filepath.Join(root, kmpAndroidDir))
	if !hasIOS && !hasAndroid {
		return Result{}, fmt.Errorf("GenerateKMP: %s: %w", root, errNotKMP)
	}

	var res Result
	if hasIOS {
		res.AssetsDir = filepath.Join(root, kmpIOSAssetsPath)
		n, err := GenerateIOS(res.AssetsDir, src, logger)
		res.IOSFiles = n
		if err != nil {
			logger.Error("iOS generation failed", "err", err)
			res.Errors = append(res.Errors, err)
		}
	} else {
		logger.Info("skipping iOS (no iosApp folder)")
	}

	if hasAndroid {
		res.ResDir = filepath.Join(root, kmpAndroidResPath)
		n, err := GenerateAndroid(res.ResDir, src, logger)
		res.AndroidFiles = n
		if err != nil {
			logger.Error("Android generation failed", "err", err)
			res.Errors = append(res.Errors, err)
		}
	} else {
		logger.Info("skipping Android (no composeApp folder)")
	}
	return res, nil
}

// GenerateXcode writes the iOS catalog of a plain Xcode project, located with FindAssetsCatalog.
func GenerateXcode(root string, src image.Image, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !fileutils.DirExists(root) {
		return Result{}, fmt.Errorf("GenerateXcode: project not found: %s", root)
	}
	assets, err := FindAssetsCatalog(root)
	if err != nil {
		return Result{}, fmt.Errorf("GenerateXcode: %w", err)
	}
	if projects, _ := filepath.Glob(filepath.Join(root, "*.xcodeproj")); len(projects) == 0 {
		logger.Warn("no .xcodeproj found, is this an Xcode project?", "root", root)
	}
	logger.Info("assets path", "path", assets)

	n, err := GenerateIOS(assets, src, logger)
	res := Result{IOSFiles: n, AssetsDir: assets}
	if err != nil {
		return res, fmt.Errorf("GenerateXcode: %w", err)
	}
	return res, nil
}

// FindAssetsCatalog locates Assets.xcassets in an Xcode project, in order of preference:
// <root>/<name>/Assets.xcassets, */Assets.xcassets, */*/Assets.xcassets. When none exists it
// picks where to create one: a folder named like the project, else a folder containing Swift files.
func FindAssetsCatalog(root string) (string, error) {
	root = filepath.Clean(root)
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("FindAssetsCatalog: %w", err)
	}
	name := filepath.Base(abs)

	direct := filepath.Join(root, name, assetsCatalogName)
	if fileutils.DirExists(direct) {
		return direct, nil
	}
	for _, pattern := range []string{
		filepath.Join(root, "*", assetsCatalogName),
		filepath.Join(root, "*", "*", assetsCatalogName),
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return "", fmt.Errorf("FindAssetsCatalog: %w", err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if fileutils.DirExists(m) {
				return m, nil
			}
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("FindAssetsCatalog: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && e.Name() == name {
			return filepath.Join(root, name, assetsCatalogName), nil
		}
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if swift, _ := filepath.Glob(filepath.Join(root, e.Name(), "*.swift")); len(swift) > 0 {
			return filepath.Join(root, e.Name(), assetsCatalogName), nil
		}
	}
	return "", errNoAssetsCatalog
}
