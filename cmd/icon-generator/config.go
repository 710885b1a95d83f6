package main

import (
	"errors"
	"fmt"
)

const (
	modeKMP = "kmp"
	modeIOS = "ios"
)

type Config struct {
	ProjectRoot string
	SourcePath  string
	Mode        string
	Verbose     bool
}

func (c Config) Validate() error {
	if c.ProjectRoot == "" {
		return errors.New("missing -project")
	}
	if c.SourcePath == "" {
		return errors.New("missing -source")
	}
	if c.Mode != modeKMP && c.Mode != modeIOS {
		return fmt.Errorf("unknown -mode %q (want %s or %s)", c.Mode, modeKMP, modeIOS)
	}
	return nil
}

func defaultConfig() Config {
	return Config{Mode: modeKMP}
}
