package screenshots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// EmbeddedFontName is reported by FontSet.Source when no font path could be used.
const EmbeddedFontName = "embedded:gobold"

// FontSet renders one typeface at any pixel size. Faces are cached per size.
type FontSet struct {
	font   *opentype.Font
	source string
	faces  map[int]font.Face
}

// LoadFontSet returns the first usable font from paths, falling back to the embedded Go Bold face.
// Entries that are not readable font files (e.g. family names) are skipped.
func LoadFontSet(paths []string) (*FontSet, error) {
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || !filepath.IsAbs(p) {
			continue
		}
		f, err := parseFontFile(p)
		if err != nil {
			continue
		}
		return newFontSet(f, p), nil
	}
	return EmbeddedFontSet()
}

// EmbeddedFontSet returns the bundled Go Bold face. Output rendered with it is identical on every machine.
func EmbeddedFontSet() (*FontSet, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("EmbeddedFontSet: parse gobold: %w", err)
	}
	return newFontSet(f, EmbeddedFontName), nil
}

func newFontSet(f *opentype.Font, source string) *FontSet {
	return &FontSet{font: f, source: source, faces: make(map[int]font.Face)}
}

func parseFontFile(path string) (*opentype.Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(b)
		if err != nil {
			return nil, err
		}
		if coll.NumFonts() == 0 {
			return nil, errors.New("empty font collection")
		}
		return coll.Font(0)
	}
	return opentype.Parse(b)
}

// Source names the font file in use.
func (fs *FontSet) Source() string {
	return fs.source
}

// Face returns the face for a pixel size (72 DPI, so points == pixels).
func (fs *FontSet) Face(size int) (font.Face, error) {
	if size < 1 {
		size = 1
	}
	if f, ok := fs.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fs.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("FontSet.Face: size %d: %w", size, err)
	}
	fs.faces[size] = f
	return f, nil
}

// Measure returns the ink bounds of text at size.
func (fs *FontSet) Measure(text string, size int) (width, height int) {
	face, err := fs.Face(size)
	if err != nil {
		return 0, 0
	}
	b, _ := font.BoundString(face, text)
	return (b.Max.X - b.Min.X).Ceil(), (b.Max.Y - b.Min.Y).Ceil()
}
