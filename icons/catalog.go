// Package icons renders app icon bundles (Xcode asset catalogs and Android mipmaps)
// from a single square source image.
package icons

import "fmt"

// IconDefinition is one entry of the AppIcon.appiconset.
type IconDefinition struct {
	PtSize   int
	Scale    int
	Idiom    string
	Platform string
}

// PixelSize is the rendered edge length.
func (d IconDefinition) PixelSize() int {
	return d.PtSize * d.Scale
}

// SizeLabel is the point size as written in Contents.json ("16x16").
func (d IconDefinition) SizeLabel() string {
	return fmt.Sprintf("%dx%d", d.PtSize, d.PtSize)
}

// marketing reports whether the definition is the single-size iOS icon, the only one with
// dark and tinted variants.
func (d IconDefinition) marketing() bool {
	return d.Idiom == "universal" && d.Platform == "ios"
}

// Appearance is an iOS icon appearance variant. The zero value is the default appearance.
type Appearance struct {
	Mode      string
	Suffix    string
	JSONValue string
}

// FileName follows Xcode's naming: "1024x1024.png", "16x16@2x.png", "1024x1024@1x_dark.png".
func FileName(d IconDefinition, a Appearance) string {
	if d.Scale == 1 && a.Mode == "" {
		return d.SizeLabel() + a.Suffix + ".png"
	}
	return fmt.Sprintf("%s@%dx%s.png", d.SizeLabel(), d.Scale, a.Suffix)
}

var IOSDefinitions = []IconDefinition{
	{PtSize: 1024, Scale: 1, Idiom: "universal", Platform: "ios"},

	{PtSize: 16, Scale: 1, Idiom: "mac"},
	{PtSize: 16, Scale: 2, Idiom: "mac"},
	{PtSize: 32, Scale: 1, Idiom: "mac"},
	{PtSize: 32, Scale: 2, Idiom: "mac"},
	{PtSize: 128, Scale: 1, Idiom: "mac"},
	{PtSize: 128, Scale: 2, Idiom: "mac"},
	{PtSize: 256, Scale: 1, Idiom: "mac"},
	{PtSize: 256, Scale: 2, Idiom: "mac"},
	{PtSize: 512, Scale: 1, Idiom: "mac"},
	{PtSize: 512, Scale: 2, Idiom: "mac"},
}

var IOSAppearances = []Appearance{
	{},
	{Mode: "dark", Suffix: "_dark", JSONValue: "dark"},
	{Mode: "tinted", Suffix: "_tinted", JSONValue: "tinted"},
}

// AndroidSize is one launcher density bucket.
type AndroidSize struct {
	Density string
	Size    int
}

var AndroidSizes = []AndroidSize{
	{Density: "mdpi", Size: 48},
	{Density: "hdpi", Size: 72},
	{Density: "xhdpi", Size: 96},
	{Density: "xxhdpi", Size: 144},
	{Density: "xxxhdpi", Size: 192},
}

// Android launcher file names; both carry the same pixels, the launcher applies the mask.
const (
	LauncherName      = "ic_launcher.png"
	LauncherRoundName = "ic_launcher_round.png"
)
