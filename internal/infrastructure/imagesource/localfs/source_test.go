package localfs

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/suniel12/insightpic/internal/core/domain"
)

func writeTestPNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 128, B: 64, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return name
}

func TestLoadFullResolutionImageDecodesAsset(t *testing.T) {
	dir := t.TempDir()
	name := writeTestPNG(t, dir, "beach.png", 64, 48)

	source, err := NewSource(dir, nil)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	img, err := source.LoadFullResolutionImage(context.Background(), name)
	if err != nil {
		t.Fatalf("LoadFullResolutionImage: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Fatalf("unexpected dimensions %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestLoadFullResolutionImageMissingAsset(t *testing.T) {
	source, err := NewSource(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	_, err = source.LoadFullResolutionImage(context.Background(), "nope.jpg")
	if !domain.IsKind(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestLoadFullResolutionImageUndecodableAsset(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "garbage.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	source, err := NewSource(dir, nil)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	_, err = source.LoadFullResolutionImage(context.Background(), "garbage.jpg")
	if !domain.IsKind(err, domain.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestResolveRejectsEscapingIdentifiers(t *testing.T) {
	dir := t.TempDir()
	source, err := NewSource(dir, nil)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	// The cleaned path stays under the library root, so the escape attempt
	// just resolves to a missing asset.
	_, err = source.LoadFullResolutionImage(context.Background(), "../../etc/passwd")
	if !domain.IsKind(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestExtractMetadataReadsDimensions(t *testing.T) {
	dir := t.TempDir()
	name := writeTestPNG(t, dir, "shot.png", 120, 90)

	source, err := NewSource(dir, nil)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	meta, location, err := source.ExtractMetadata(context.Background(), name)
	if err != nil {
		t.Fatalf("ExtractMetadata: %v", err)
	}
	if meta.Width != 120 || meta.Height != 90 {
		t.Fatalf("unexpected dimensions %dx%d", meta.Width, meta.Height)
	}
	// PNGs written by image/png carry no EXIF block.
	if meta.HasCameraSettings() {
		t.Fatalf("expected no camera settings, got %+v", meta)
	}
	if location != nil {
		t.Fatalf("expected no location, got %+v", location)
	}
}

func TestNewSourceRejectsMissingRoot(t *testing.T) {
	if _, err := NewSource(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Fatal("expected error for missing root")
	}
}
