package fileutils

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFileIfExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "screenshot_config.json")
	dst := filepath.Join(dir, "backup", "screenshot_config.prev.json")

	// Missing src: no-op.
	copied, err := CopyFileIfExists(src, dst, true)
	if err != nil {
		t.Fatalf("copy missing src: %v", err)
	}
	if copied {
		t.Fatalf("expected copied=false for missing src")
	}

	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	copied, err = CopyFileIfExists(src, dst, false)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if !copied {
		t.Fatalf("expected copied=true")
	}

	// Without overwrite, should not change dst.
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write src2: %v", err)
	}
	copied, err = CopyFileIfExists(src, dst, false)
	if err != nil {
		t.Fatalf("copy no-overwrite: %v", err)
	}
	if copied {
		t.Fatalf("expected copied=false when dst exists and overwrite=false")
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "hello" {
		t.Fatalf("dst changed unexpectedly: %q", string(b))
	}

	copied, err = CopyFileIfExists(src, dst, true)
	if err != nil || !copied {
		t.Fatalf("copy overwrite: copied=%v err=%v", copied, err)
	}
	b, _ = os.ReadFile(dst)
	if string(b) != "new" {
		t.Fatalf("dst=%q, want new", string(b))
	}
}

func TestWriteJSONFileAtomic_TrailingNewline(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "out", "doc.json")
	if err := WriteJSONFileAtomic(p, map[string]int{"version": 1}, "  "); err != nil {
		t.Fatalf("WriteJSONFileAtomic: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "{\n  \"version\": 1\n}\n"
	if string(b) != want {
		t.Fatalf("content=%q, want %q", string(b), want)
	}
}

func TestWritePNGAtomic_Deterministic(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 90, A: 255})
		}
	}

	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	if err := WritePNGAtomic(a, img); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := WritePNGAtomic(b, img); err != nil {
		t.Fatalf("write b: %v", err)
	}
	ab, _ := os.ReadFile(a)
	bb, _ := os.ReadFile(b)
	if len(ab) == 0 || !bytes.Equal(ab, bb) {
		t.Fatalf("png output differs between identical writes (len a=%d b=%d)", len(ab), len(bb))
	}

	// No temp files left behind.
	ents, _ := os.ReadDir(dir)
	if len(ents) != 2 {
		t.Fatalf("dir entries=%d, want 2", len(ents))
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("  short  ", 80); got != "short" {
		t.Fatalf("Truncate=%q, want short", got)
	}
	long := "abcdefghijklmnopqrstuvwxyz"
	if got := Truncate(long, 10); got != "abcdefg..." {
		t.Fatalf("Truncate=%q, want abcdefg...", got)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	type rec struct {
		Title string `json:"title"`
	}

	var obj rec
	if err := DecodeModelJSON("```json\n{\"title\":\"A\"}\n```", &obj); err != nil {
		t.Fatalf("fenced object: %v", err)
	}
	if obj.Title != "A" {
		t.Fatalf("Title=%q, want A", obj.Title)
	}

	var arr []rec
	if err := DecodeModelJSON("Here you go:\n[{\"title\":\"x\"},{\"title\":\"y\"}]\nThanks", &arr); err != nil {
		t.Fatalf("array with prose: %v", err)
	}
	if len(arr) != 2 || arr[1].Title != "y" {
		t.Fatalf("arr=%v", arr)
	}

	if err := DecodeModelJSON("   ", &obj); err == nil {
		t.Fatalf("expected error for empty output")
	}
	if err := DecodeModelJSON("no json here", &obj); err == nil {
		t.Fatalf("expected error for prose-only output")
	}
}
