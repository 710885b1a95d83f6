package icons

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MinSourceSize is the smallest accepted source edge; the iOS marketing icon is 1024px.
const MinSourceSize = 1024

// Source is a validated, square icon master.
type Source struct {
	Image *image.NRGBA
	Path  string

	// Width and Height are the dimensions before any crop.
	Width   int
	Height  int
	Cropped bool
}

// LoadSource decodes path and validates it with PrepareSource.
func LoadSource(path string) (Source, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Source{}, fmt.Errorf("LoadSource: %w", err)
	}
	src, err := PrepareSource(img)
	if err != nil {
		return Source{}, fmt.Errorf("LoadSource: %s: %w", path, err)
	}
	src.Path = path
	return src, nil
}

// PrepareSource rejects images smaller than MinSourceSize on either edge and
// center-crops non-square images to their shorter edge.
func PrepareSource(img image.Image) (Source, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < MinSourceSize || h < MinSourceSize {
		return Source{}, fmt.Errorf("image too small: %dx%dpx (minimum %dx%d)", w, h, MinSourceSize, MinSourceSize)
	}
	src := Source{Width: w, Height: h}
	if w != h {
		side := min(w, h)
		src.Image = imaging.CropCenter(img, side, side)
		src.Cropped = true
	} else {
		src.Image = imaging.Clone(img)
	}
	return src, nil
}
