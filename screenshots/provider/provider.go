// Package provider implements screenshots.Oracle on top of hosted vision models.
//
// Each call sends a single request: SDK-level retries are disabled and failures are returned
// as *screenshots.OracleError so the caller can fall back.
package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theimaginaryfoundation/store-assets/screenshots"
)

const (
	NameAnthropic = "anthropic"
	NameOpenAI    = "openai"

	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultOpenAIModel    = "gpt-5-mini"
)

// Config configures an oracle.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL string

	App    screenshots.AppContext
	Limits Limits
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(name string) string {
	if name == NameOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultAnthropicModel
}

// APIKeyEnv names the environment variable holding the key for a provider.
func APIKeyEnv(name string) string {
	if name == NameOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// New builds the named oracle.
func New(name string, cfg Config) (screenshots.Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameAnthropic, "":
		return NewAnthropicOracle(cfg)
	case NameOpenAI:
		return NewOpenAIOracle(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", name, NameAnthropic, NameOpenAI)
	}
}

func (c Config) validate(name string) (Config, error) {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey == "" {
		return Config{}, errors.New("missing API key (set " + APIKeyEnv(name) + ")")
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel(name)
	}
	return c, nil
}

func requestError(op string, err error) error {
	return &screenshots.OracleError{Op: op, Kind: screenshots.KindRequest, Err: err}
}
