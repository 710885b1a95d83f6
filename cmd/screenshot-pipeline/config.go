package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theimaginaryfoundation/store-assets/screenshots/provider"
)

const (
	actionAnalyze    = "analyze"
	actionGenerate   = "generate"
	actionAuto       = "auto"
	actionRegenerate = "regenerate"
)

type Config struct {
	Analyze    bool
	Generate   bool
	Auto       bool
	Regenerate []string

	PreserveNames bool
	BaseDir       string
	CatalogPath   string
	Platforms     []string

	Provider string
	Model    string
	APIKey   string
	Verbose  bool
}

// Action names the single selected action, or "" when none is set.
func (c Config) Action() string {
	switch {
	case c.Analyze:
		return actionAnalyze
	case c.Generate:
		return actionGenerate
	case c.Auto:
		return actionAuto
	case len(c.Regenerate) > 0:
		return actionRegenerate
	}
	return ""
}

// NeedsOracle reports whether the action calls the vision model.
func (c Config) NeedsOracle() bool {
	a := c.Action()
	return a == actionAnalyze || a == actionAuto
}

func (c Config) Validate() error {
	n := 0
	for _, set := range []bool{c.Analyze, c.Generate, c.Auto, len(c.Regenerate) > 0} {
		if set {
			n++
		}
	}
	if n == 0 {
		return errors.New("missing action: pass one of -analyze, -generate, -auto, -regenerate")
	}
	if n > 1 {
		return errors.New("choose only one of -analyze, -generate, -auto, -regenerate")
	}
	if c.BaseDir == "" {
		return errors.New("missing -base-dir")
	}
	if c.PreserveNames && !c.NeedsOracle() {
		return errors.New("-preserve-names requires -analyze or -auto")
	}
	switch c.Provider {
	case provider.NameAnthropic, provider.NameOpenAI:
	default:
		return fmt.Errorf("unknown -provider %q (want %s or %s)", c.Provider, provider.NameAnthropic, provider.NameOpenAI)
	}
	for _, r := range c.Regenerate {
		platform, file, ok := strings.Cut(r, "/")
		if !ok || platform == "" || file == "" || strings.Contains(file, "/") {
			return fmt.Errorf("invalid -regenerate entry %q (want platform/file)", r)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		BaseDir:  "ScreenShots",
		Provider: provider.NameAnthropic,
	}
}
