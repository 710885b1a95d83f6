package screenshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

// ErrNoConfig is returned by LoadConfig when the config document does not exist yet.
var ErrNoConfig = errors.New("config file not found (run analyze first)")

// LoadConfig reads a PipelineConfig document.
func LoadConfig(path string) (PipelineConfig, error) {
	if path == "" {
		return PipelineConfig{}, errors.New("LoadConfig: path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PipelineConfig{}, fmt.Errorf("LoadConfig: %s: %w", path, ErrNoConfig)
		}
		return PipelineConfig{}, fmt.Errorf("LoadConfig: read file: %w", err)
	}
	var cfg PipelineConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return PipelineConfig{}, fmt.Errorf("LoadConfig: unmarshal: %w", err)
	}
	if cfg.Platforms == nil {
		cfg.Platforms = map[string]PlatformConfig{}
	}
	return cfg, nil
}

// SaveConfig writes the document atomically. When backupPath is set and a previous
// document exists, it is copied there first.
func SaveConfig(path, backupPath string, cfg PipelineConfig) error {
	if path == "" {
		return errors.New("SaveConfig: path is empty")
	}
	if backupPath != "" {
		if _, err := fileutils.CopyFileIfExists(path, backupPath, true); err != nil {
			return fmt.Errorf("SaveConfig: backup previous config: %w", err)
		}
	}
	if err := fileutils.WriteJSONFileAtomic(path, cfg, "  "); err != nil {
		return fmt.Errorf("SaveConfig: %w", err)
	}
	return nil
}
