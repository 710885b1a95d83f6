package screenshots

// Text fitting ratios, all relative to the canvas.
const (
	titleStartRatio    = 0.05
	subtitleStartRatio = 0.03
	titleMinRatio      = 0.025
	subtitleMinRatio   = 0.02
	maxTextWidthRatio  = 0.90
	lineSpacingRatio   = 0.3
	fontStep           = 2
)

// TextMeasurer reports the rendered ink size of text at a pixel font size.
type TextMeasurer interface {
	Measure(text string, size int) (width, height int)
}

// TextLayout is the result of FitText.
type TextLayout struct {
	TitleSize      int
	SubtitleSize   int
	TitleHeight    int
	SubtitleHeight int
	LineSpacing    int
	TotalHeight    int
}

// FitText picks font sizes so title and subtitle each fit within 90% of the canvas width.
// Sizes shrink linearly from a height-proportional start down to a floor; text that still
// overflows at the floor is accepted as-is.
func FitText(m TextMeasurer, title, subtitle string, canvas SizeSpec) TextLayout {
	maxWidth := int(float64(canvas.Width) * maxTextWidthRatio)

	titleSize := shrinkToFit(m, title, maxWidth,
		int(float64(canvas.Height)*titleStartRatio),
		int(float64(canvas.Height)*titleMinRatio))
	subtitleSize := shrinkToFit(m, subtitle, maxWidth,
		int(float64(canvas.Height)*subtitleStartRatio),
		int(float64(canvas.Height)*subtitleMinRatio))

	_, titleH := m.Measure(title, titleSize)
	_, subtitleH := m.Measure(subtitle, subtitleSize)
	spacing := int(float64(titleH) * lineSpacingRatio)

	return TextLayout{
		TitleSize:      titleSize,
		SubtitleSize:   subtitleSize,
		TitleHeight:    titleH,
		SubtitleHeight: subtitleH,
		LineSpacing:    spacing,
		TotalHeight:    titleH + spacing + subtitleH,
	}
}

func shrinkToFit(m TextMeasurer, text string, maxWidth, start, floor int) int {
	if floor < 1 {
		floor = 1
	}
	if start < floor {
		start = floor
	}
	size := start
	for size > floor {
		if w, _ := m.Measure(text, size); w <= maxWidth {
			return size
		}
		size -= fontStep
	}
	return floor
}
