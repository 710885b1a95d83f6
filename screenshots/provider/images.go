package provider

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type encodedImage struct {
	Name      string
	MediaType string
	Data      string
}

// MediaType maps a screenshot path to the MIME type sent with it. Unknown extensions are sent as PNG.
func MediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

func encodeImage(path string) (encodedImage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return encodedImage{}, fmt.Errorf("read image: %w", err)
	}
	return encodedImage{
		Name:      filepath.Base(path),
		MediaType: MediaType(path),
		Data:      base64.StdEncoding.EncodeToString(b),
	}, nil
}

func (e encodedImage) dataURL() string {
	return "data:" + e.MediaType + ";base64," + e.Data
}

func encodeImages(paths []string) ([]encodedImage, error) {
	out := make([]encodedImage, 0, len(paths))
	for _, p := range paths {
		img, err := encodeImage(p)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}
