package icons

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Enhancement factors for the iOS appearance variants. A factor of 1 leaves the image unchanged.
const (
	darkBrightness = 1.2
	darkColor      = 1.3
	darkContrast   = 1.15

	tintedColor      = 0.2
	tintedBrightness = 1.15
)

// ApplyAppearance returns the variant of img for the given appearance mode.
func ApplyAppearance(img image.Image, mode string) *image.NRGBA {
	switch mode {
	case "dark":
		out := Brightness(img, darkBrightness)
		out = Saturation(out, darkColor)
		return Contrast(out, darkContrast)
	case "tinted":
		out := Saturation(img, tintedColor)
		return Brightness(out, tintedBrightness)
	default:
		return imaging.Clone(img)
	}
}

// Brightness interpolates each channel between black (0) and the original (1). Alpha is kept.
func Brightness(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = blend(0, c.R, factor)
		c.G = blend(0, c.G, factor)
		c.B = blend(0, c.B, factor)
		return c
	})
}

// Saturation interpolates each pixel between its luma gray (0) and the original (1).
func Saturation(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		l := luma(c)
		c.R = blend(l, c.R, factor)
		c.G = blend(l, c.G, factor)
		c.B = blend(l, c.B, factor)
		return c
	})
}

// Contrast interpolates each channel between the image's mean luma (0) and the original (1).
func Contrast(img image.Image, factor float64) *image.NRGBA {
	mean := meanLuma(img)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = blend(mean, c.R, factor)
		c.G = blend(mean, c.G, factor)
		c.B = blend(mean, c.B, factor)
		return c
	})
}

// Flatten composites img over opaque white.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Point{}, 1.0)
}

func blend(from, to uint8, factor float64) uint8 {
	v := float64(from) + factor*(float64(to)-float64(from))
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// luma is ITU-R 601-2 in 16-bit fixed point.
func luma(c color.NRGBA) uint8 {
	return uint8((uint32(c.R)*19595 + uint32(c.G)*38470 + uint32(c.B)*7471 + 0x8000) >> 16)
}

func meanLuma(img image.Image) uint8 {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var sum uint64
	for i := 0; i+3 < len(nrgba.Pix); i += 4 {
		sum += uint64(luma(color.NRGBA{R: nrgba.Pix[i], G: nrgba.Pix[i+1], B: nrgba.Pix[i+2]}))
	}
	return uint8((sum + uint64(n)/2) / uint64(n))
}
