package provider

import (
	"fmt"
	"strings"

	"github.com/theimaginaryfoundation/store-assets/screenshots"
)

const rankingPromptTemplate = `You are an App Store optimization expert analyzing screenshots for %[1]s.

Platform: %[2]s
Theme: %[3]s
Context: This is %[4]s, %[5]s.

I'm providing you with %[6]d screenshots. Each image is followed by its file name. Your task:

1. RANK them in optimal order for store display (1 = hero shot, shown first)
2. Generate a title and subtitle for each (respecting the character limits)
3. Explain your ranking: why this order tells the best story

Ranking criteria:
- Screenshot #1 (HERO): most eye-catching, shows unique value, hooks users immediately
- Screenshots #2-3 (VALUE): demonstrate core functionality and benefits
- Screenshots #4+ (PROOF): additional features, credibility, depth

Store psychology:
- Users often only view the first 2-3 screenshots
- The first screenshot should show what makes this app DIFFERENT
- The order should tell a story: hook, then value, then proof
- Visual impact matters: colorful, data-rich screenshots work better early

Copy requirements:
- TITLE: max %[7]d chars, benefit-focused, punchy
- SUBTITLE: max %[8]d chars, adds context/detail

Every screenshot must appear exactly once, using its exact file name as original_name.
Ranks must be 1..%[6]d with no gaps. Only rank 1 is the hero shot.

Return ONLY JSON sorted by rank:
%[9]s`

const rankingArrayExample = `[
  {
    "original_name": "filename.png",
    "rank": 1,
    "rank_reason": "Why this screenshot is the hero shot",
    "hero_shot": true,
    "title": "Your Title Here",
    "subtitle": "Your subtitle here",
    "detected_content": ["feature1", "feature2"],
    "confidence": 0.95
  }
]`

const rankingObjectExample = `{"screenshots": [ ...records as above, one per screenshot... ]}
where each record is:
{
  "original_name": "filename.png",
  "rank": 1,
  "rank_reason": "Why this screenshot is the hero shot",
  "hero_shot": true,
  "title": "Your Title Here",
  "subtitle": "Your subtitle here",
  "detected_content": ["feature1", "feature2"],
  "confidence": 0.95
}`

const analysisPromptTemplate = `Analyze this screenshot of %[1]s and write store marketing copy for it.

Platform: %[2]s
Theme: %[3]s
Messaging style: %[4]s

Your task:
1. Identify what feature or screen is shown (map, forecast, profile, layers, etc.)
2. Write TWO text elements:
   - TITLE: punchy, benefit-focused headline (max %[5]d chars)
   - SUBTITLE: supporting detail that adds context (max %[6]d chars)

Both are centered above the screenshot and must work together to sell the feature.

Rules:
- Focus on USER BENEFITS, not feature names
- Use active, energetic language
- TITLE should make them want to know more
- SUBTITLE should deliver the "how" or "what"

Example pairs:
- TITLE: "Find Fish in Real-Time" / SUBTITLE: "Heat maps reveal hotspots instantly"
- TITLE: "Never Miss Perfect Conditions" / SUBTITLE: "Weather overlays show rain, wind, pressure"

Return ONLY a JSON object:
{
  "title": "Your Title Here",
  "subtitle": "Your subtitle here",
  "detected_content": ["feature1", "feature2"],
  "confidence": 0.95
}`

// Limits bounds the copy the oracle is asked to write.
type Limits struct {
	TitleMaxLen    int
	SubtitleMaxLen int
}

func (l Limits) withDefaults() Limits {
	if l.TitleMaxLen <= 0 {
		l.TitleMaxLen = 30
	}
	if l.SubtitleMaxLen <= 0 {
		l.SubtitleMaxLen = 50
	}
	return l
}

// RankingPrompt is the instruction appended after the images of a ranking request.
// wrapped selects the {"screenshots": [...]} shape used with strict schemas.
func RankingPrompt(p screenshots.Platform, app screenshots.AppContext, count int, lim Limits, wrapped bool) string {
	lim = lim.withDefaults()
	example := rankingArrayExample
	if wrapped {
		example = rankingObjectExample
	}
	return fmt.Sprintf(rankingPromptTemplate,
		appLabel(app), orUnknown(p.DisplayName, p.Key), orUnknown(p.ThemeBlurb, p.Theme),
		orUnknown(app.Name, "the app"), orUnknown(app.Pitch, "a mobile app"),
		count, lim.TitleMaxLen, lim.SubtitleMaxLen, example)
}

// AnalysisPrompt is the instruction for a single-screenshot request.
func AnalysisPrompt(p screenshots.Platform, app screenshots.AppContext, lim Limits) string {
	lim = lim.withDefaults()
	return fmt.Sprintf(analysisPromptTemplate,
		appLabel(app), orUnknown(p.DisplayName, p.Key), orUnknown(p.ThemeBlurb, p.Theme),
		orUnknown(p.Style, "clear and benefit-focused"), lim.TitleMaxLen, lim.SubtitleMaxLen)
}

// FileCaption labels the image that precedes it in a ranking request.
func FileCaption(name string) string {
	return "Screenshot filename: " + name
}

func appLabel(app screenshots.AppContext) string {
	if strings.TrimSpace(app.Name) == "" {
		return "a mobile app"
	}
	return "the " + app.Name + " app"
}

func orUnknown(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
