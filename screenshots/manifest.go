package screenshots

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

// ManifestName is the per-platform report written after generation.
const ManifestName = "RESULTS.md"

const manifestReasonMax = 80

// RenderManifest builds the human-readable report for one platform.
func RenderManifest(cfg PipelineConfig, platformKey string, pc PlatformConfig) string {
	autoOrdered := "No"
	if cfg.AutoOrdered {
		autoOrdered = "Yes"
	}
	generated := cfg.Generated
	if generated == "" {
		generated = "unknown"
	}

	lines := []string{
		fmt.Sprintf("# Screenshot Analysis - %s", strings.ToUpper(platformKey)),
		"",
		"Generated: " + generated,
		"Auto-ordered: " + autoOrdered,
		"",
		"## Screenshots",
		"",
		"| # | Filename | Title | Subtitle | Ranking Reason |",
		"|---|----------|-------|----------|----------------|",
	}
	for _, ss := range pc.Screenshots {
		reason := fileutils.Truncate(orDash(ss.RankReason), manifestReasonMax)
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s |",
			rankLabel(ss), ss.File, escapePipes(ss.Title), escapePipes(ss.Subtitle), escapePipes(reason)))
	}

	lines = append(lines, "", "## Detailed Analysis", "")
	for _, ss := range pc.Screenshots {
		hero := ""
		if ss.HeroShot {
			hero = " (HERO)"
		}
		detected := "N/A"
		if len(ss.DetectedContent) > 0 {
			detected = strings.Join(ss.DetectedContent, ", ")
		}
		lines = append(lines,
			fmt.Sprintf("### #%s%s: %s", rankLabel(ss), hero, ss.Title),
			"",
			fmt.Sprintf("**File:** `%s`", ss.File),
			"",
			"**Subtitle:** "+ss.Subtitle,
			"",
			"**Why this ranking:** "+orDash(ss.RankReason),
			"",
			"**Detected content:** "+detected,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

// WriteManifest renders and writes the report to path.
func WriteManifest(path string, cfg PipelineConfig, platformKey string, pc PlatformConfig) error {
	body := RenderManifest(cfg, platformKey, pc)
	if err := fileutils.WriteFileAtomicSameDir(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	return nil
}

func rankLabel(ss ScreenshotConfig) string {
	if ss.Rank <= 0 {
		return "-"
	}
	return strconv.Itoa(ss.Rank)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
