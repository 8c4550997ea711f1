package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkwell/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLocalImageStoreResizesAvatar(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	name, err := store.Save(context.Background(), bytes.NewReader(pngBytes(t, 500, 250)), "me.PNG", ImageAvatar)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("Expected .png name, got %s", name)
	}

	f, err := os.Open(filepath.Join(store.Dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 125 || cfg.Height != 62 {
		t.Errorf("Expected 125x62, got %dx%d", cfg.Width, cfg.Height)
	}

	if err := store.Delete(context.Background(), name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir, name)); !os.IsNotExist(err) {
		t.Error("Expected file to be removed")
	}
}

func TestLocalImageStoreRejectsUnknownTypes(t *testing.T) {
	store, _ := NewLocalImageStore(t.TempDir())

	_, err := store.Save(context.Background(), strings.NewReader("MZ"), "tool.exe", ImagePost)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("Expected ErrUnsupportedImage for extension, got %v", err)
	}

	_, err = store.Save(context.Background(), strings.NewReader("not an image"), "fake.png", ImagePost)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("Expected ErrUnsupportedImage for content, got %v", err)
	}
}

func TestLocalImageStoreKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocalImageStore(dir)
	path := filepath.Join(dir, models.DefaultImageFile)
	os.WriteFile(path, []byte("x"), 0o644)

	if err := store.Delete(context.Background(), models.DefaultImageFile); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("default image must not be removed")
	}
	if err := store.Delete(context.Background(), "../etc/passwd"); err != nil {
		t.Errorf("Expected traversal names to be ignored, got %v", err)
	}
}

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1740815725/inkwell/avatars/abc.png": "inkwell/avatars/abc",
		"https://res.cloudinary.com/demo/image/upload/sample.jpg":                          "sample",
	}
	for in, want := range cases {
		got, err := publicIDFromURL(in)
		if err != nil {
			t.Errorf("publicIDFromURL(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("publicIDFromURL(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := publicIDFromURL("https://example.com/a.png"); err == nil {
		t.Error("Expected error for a non-Cloudinary URL")
	}
}
