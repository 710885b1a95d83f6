package screenshots

import (
	"strings"
	"testing"
)

// advanceMeasurer gives every rune the same advance so layouts are predictable.
type advanceMeasurer struct{}

func (advanceMeasurer) Measure(text string, size int) (int, int) {
	return len([]rune(text)) * size * 35 / 100, size
}

// With a uniform 0.35em advance, a 22-rune title fits the 6.7" canvas at its start size.
// Real faces are wider; the embedded-font test below checks those layouts by range.
func TestFitText_UniformAdvanceFitsAtStartSize(t *testing.T) {
	t.Parallel()

	canvas := SizeSpec{Width: 1290, Height: 2796, Label: "6.7_inch"}
	got := FitText(advanceMeasurer{}, "Find Fish in Real-Time", "Live sonar", canvas)

	if got.TitleSize != 139 {
		t.Fatalf("TitleSize=%d, want 139", got.TitleSize)
	}
	if got.SubtitleSize != 83 {
		t.Fatalf("SubtitleSize=%d, want 83", got.SubtitleSize)
	}
	if got.LineSpacing != 41 {
		t.Fatalf("LineSpacing=%d, want 41", got.LineSpacing)
	}
	if got.TotalHeight != 139+41+83 {
		t.Fatalf("TotalHeight=%d, want %d", got.TotalHeight, 139+41+83)
	}
}

func TestFitText_ShrinksInSteps(t *testing.T) {
	t.Parallel()

	canvas := SizeSpec{Width: 1290, Height: 2796}
	title := strings.Repeat("x", 40)
	got := FitText(advanceMeasurer{}, title, "", canvas)
	// 83 measures 1162 (> 1161), 81 measures 1134.
	if got.TitleSize != 81 {
		t.Fatalf("TitleSize=%d, want 81", got.TitleSize)
	}
}

func TestFitText_ClampsToFloor(t *testing.T) {
	t.Parallel()

	canvas := SizeSpec{Width: 1290, Height: 2796}
	got := FitText(advanceMeasurer{}, strings.Repeat("W", 120), strings.Repeat("w", 200), canvas)
	if got.TitleSize != 69 {
		t.Fatalf("TitleSize=%d, want floor 69", got.TitleSize)
	}
	if got.SubtitleSize != 55 {
		t.Fatalf("SubtitleSize=%d, want floor 55", got.SubtitleSize)
	}
}

func TestFitText_EmbeddedFontStaysInRange(t *testing.T) {
	t.Parallel()

	fonts, err := EmbeddedFontSet()
	if err != nil {
		t.Fatalf("EmbeddedFontSet: %v", err)
	}
	for _, p := range DefaultCatalog().Platforms {
		for _, size := range p.Sizes {
			a := FitText(fonts, "Find Fish in Real-Time", "Heat maps show where fish are biting today", size)
			b := FitText(fonts, "Find Fish in Real-Time", "Heat maps show where fish are biting today", size)
			if a != b {
				t.Fatalf("%s: layout not deterministic: %+v vs %+v", size, a, b)
			}
			start := int(float64(size.Height) * titleStartRatio)
			floor := int(float64(size.Height) * titleMinRatio)
			if a.TitleSize < floor || a.TitleSize > start {
				t.Fatalf("%s: TitleSize=%d, want in [%d,%d]", size, a.TitleSize, floor, start)
			}
			if a.TitleSize > floor {
				if w, _ := fonts.Measure("Find Fish in Real-Time", a.TitleSize); w > int(float64(size.Width)*maxTextWidthRatio) {
					t.Fatalf("%s: title width %d overflows at size %d", size, w, a.TitleSize)
				}
			}
			subStart := int(float64(size.Height) * subtitleStartRatio)
			subFloor := int(float64(size.Height) * subtitleMinRatio)
			if a.SubtitleSize < subFloor || a.SubtitleSize > subStart {
				t.Fatalf("%s: SubtitleSize=%d, want in [%d,%d]", size, a.SubtitleSize, subFloor, subStart)
			}
			if a.TitleHeight <= 0 || a.TotalHeight <= a.TitleHeight {
				t.Fatalf("%s: bad heights %+v", size, a)
			}
			if a.TotalHeight > size.Height {
				t.Fatalf("%s: TotalHeight=%d exceeds canvas height %d", size, a.TotalHeight, size.Height)
			}
		}
	}
}
