package screenshots

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	textPaddingRatio = 0.04
	topPaddingRatio  = 0.02
	shadowRatio      = 0.001
	minShadowOffset  = 2
)

var (
	shadowColor   = color.RGBA{A: 0xff}
	titleColor    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	subtitleColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 200}
)

// Compositor renders store screenshots: gradient background, fitted title and subtitle,
// and the source screenshot scaled into the space below the text.
type Compositor struct {
	fonts  *FontSet
	themes map[string]Theme
}

func NewCompositor(fonts *FontSet, themes map[string]Theme) *Compositor {
	return &Compositor{fonts: fonts, themes: themes}
}

// ComposeFile decodes the screenshot at path and composes it. Decode failures are returned
// so the caller can skip the item.
func (c *Compositor) ComposeFile(path, title, subtitle string, size SizeSpec, theme string, scale float64) (*image.RGBA, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return c.Compose(src, title, subtitle, size, theme, scale)
}

// Compose renders one output canvas of the given size.
func (c *Compositor) Compose(src image.Image, title, subtitle string, size SizeSpec, theme string, scale float64) (*image.RGBA, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("Compose: invalid size %s", size)
	}
	if scale <= 0 || scale > 1 {
		return nil, fmt.Errorf("Compose: scale must be in (0,1], got %v", scale)
	}
	th, ok := c.themes[theme]
	if !ok {
		return nil, fmt.Errorf("Compose: unknown theme %q", theme)
	}

	canvas := Gradient(size.Width, size.Height, th)
	layout := FitText(c.fonts, title, subtitle, size)
	textArea := layout.TotalHeight + int(float64(size.Height)*textPaddingRatio)

	sb := src.Bounds()
	if r := FitScreenshot(sb.Dx(), sb.Dy(), size, textArea, scale); !r.Empty() {
		scaled := imaging.Resize(src, r.Dx(), r.Dy(), imaging.Lanczos)
		draw.Draw(canvas, r, scaled, image.Point{}, draw.Over)
	}

	shadow := int(float64(size.Height) * shadowRatio)
	if shadow < minShadowOffset {
		shadow = minShadowOffset
	}
	titleY := int(float64(size.Height) * topPaddingRatio)
	if err := c.drawCentered(canvas, title, layout.TitleSize, titleY, shadow, titleColor); err != nil {
		return nil, err
	}
	subtitleY := titleY + layout.TitleHeight + layout.LineSpacing
	if err := c.drawCentered(canvas, subtitle, layout.SubtitleSize, subtitleY, shadow, subtitleColor); err != nil {
		return nil, err
	}
	return canvas, nil
}

// drawCentered draws text with its ink box top at y, centered horizontally, shadow first.
func (c *Compositor) drawCentered(dst *image.RGBA, text string, size, y, shadow int, fill color.Color) error {
	if text == "" {
		return nil
	}
	face, err := c.fonts.Face(size)
	if err != nil {
		return err
	}
	b, _ := font.BoundString(face, text)
	w := (b.Max.X - b.Min.X).Ceil()
	x := (dst.Bounds().Dx() - w) / 2
	dot := fixed.Point26_6{X: fixed.I(x) - b.Min.X, Y: fixed.I(y) - b.Min.Y}

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(shadowColor),
		Face: face,
		Dot:  dot.Add(fixed.P(shadow, shadow)),
	}
	d.DrawString(text)

	d.Src = image.NewUniform(fill)
	d.Dot = dot
	d.DrawString(text)
	return nil
}

// FitScreenshot returns where a srcW x srcH screenshot lands on the canvas.
// The available box is the area below textArea, scaled by scale in both directions;
// the screenshot keeps its aspect ratio, is centered horizontally and centered vertically
// within the area below the text.
func FitScreenshot(srcW, srcH int, canvas SizeSpec, textArea int, scale float64) image.Rectangle {
	availH := int(float64(canvas.Height-textArea) * scale)
	availW := int(float64(canvas.Width) * scale)
	if srcW <= 0 || srcH <= 0 || availW <= 0 || availH <= 0 {
		return image.Rectangle{}
	}

	srcRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(availW) / float64(availH)

	var w, h int
	if srcRatio > targetRatio {
		// Wider than the box: fit to width.
		w = availW
		h = int(float64(w) / srcRatio)
	} else {
		h = availH
		w = int(float64(h) * srcRatio)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	x := (canvas.Width - w) / 2
	y := textArea + (canvas.Height-textArea-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// Gradient fills a w x h canvas blending linearly from the theme's top color to its bottom color.
func Gradient(w, h int, th Theme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		a := 255 * y / h
		r := mixChannel(th.Top.R, th.Bottom.R, a)
		g := mixChannel(th.Top.G, th.Bottom.G, a)
		b := mixChannel(th.Top.B, th.Bottom.B, a)

		row := img.Pix[img.PixOffset(0, y) : img.PixOffset(0, y)+4*w]
		for x := 0; x < w; x++ {
			row[4*x] = r
			row[4*x+1] = g
			row[4*x+2] = b
			row[4*x+3] = 0xff
		}
	}
	return img
}

func mixChannel(from, to uint8, a int) uint8 {
	return uint8((int(from)*(255-a) + int(to)*a + 127) / 255)
}
