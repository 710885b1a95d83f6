package screenshots

import "fmt"

// ConfigVersion is written into every PipelineConfig.
const ConfigVersion = "1.0.0"

// PipelineConfig is the document handed from the analyze phase to the generate phase.
// It is the only state persisted between the two.
type PipelineConfig struct {
	Version     string                    `json:"version"`
	Generated   string                    `json:"generated"`
	AutoOrdered bool                      `json:"auto_ordered"`
	Platforms   map[string]PlatformConfig `json:"platforms"`
}

// PlatformConfig groups the screenshots of one platform key.
type PlatformConfig struct {
	Theme       string             `json:"theme"`
	DeviceType  string             `json:"device_type"`
	Screenshots []ScreenshotConfig `json:"screenshots"`
}

// ScreenshotConfig is one source screenshot and the marketing copy attached to it.
type ScreenshotConfig struct {
	// File is the current (post-rename) file name inside the platform input dir.
	File         string `json:"file"`
	OriginalName string `json:"original_name"`

	// Rank is 1-based; zero means the screenshot was not ranked (preserve-names mode).
	Rank       int    `json:"rank,omitempty"`
	RankReason string `json:"rank_reason,omitempty"`
	HeroShot   bool   `json:"hero_shot,omitempty"`

	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	DetectedContent []string `json:"detected_content"`
	Confidence      float64  `json:"confidence"`
}

// SizeSpec is one required output resolution.
type SizeSpec struct {
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Label  string `json:"label" yaml:"label"`
}

func (s SizeSpec) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// RankedScreenshot is one record of a ranking returned by the vision oracle.
type RankedScreenshot struct {
	OriginalName    string   `json:"original_name" jsonschema:"required"`
	Rank            int      `json:"rank" jsonschema:"required"`
	RankReason      string   `json:"rank_reason" jsonschema:"required"`
	HeroShot        bool     `json:"hero_shot" jsonschema:"required"`
	Title           string   `json:"title" jsonschema:"required"`
	Subtitle        string   `json:"subtitle" jsonschema:"required"`
	DetectedContent []string `json:"detected_content" jsonschema:"required"`
	Confidence      float64  `json:"confidence" jsonschema:"required"`
}

// ScreenshotAnalysis is the single-image oracle result (no ranking).
type ScreenshotAnalysis struct {
	Title           string   `json:"title" jsonschema:"required"`
	Subtitle        string   `json:"subtitle" jsonschema:"required"`
	DetectedContent []string `json:"detected_content" jsonschema:"required"`
	Confidence      float64  `json:"confidence" jsonschema:"required"`
}
