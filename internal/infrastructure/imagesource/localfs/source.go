// Package localfs serves photo assets from a library directory on disk.
// Asset identifiers are paths relative to the library root.
package localfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bep/imagemeta"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/suniel12/insightpic/internal/core/domain"
)

// Source resolves asset identifiers against a photo-library root.
type Source struct {
	root   string
	logger *slog.Logger
}

func NewSource(root string, logger *slog.Logger) (*Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat photo library root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("photo library root %q is not a directory", root)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{root: root, logger: logger}, nil
}

// LoadFullResolutionImage decodes the asset into memory. Missing files map to
// domain.ErrAssetNotFound, undecodable files to domain.ErrDecode.
func (s *Source) LoadFullResolutionImage(ctx context.Context, assetIdentifier string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(assetIdentifier)
	if err != nil {
		return nil, err
	}

	img, err := decodeFile(path)
	if err != nil {
		s.logger.Warn("image decode failed",
			slog.String("asset", assetIdentifier),
			slog.String("error", err.Error()))
		return nil, domain.WrapError(domain.ErrDecode, "load full resolution image", err)
	}
	return img, nil
}

// ExtractMetadata reads image dimensions and EXIF capture metadata for an
// asset. EXIF extraction is best effort: a photo without readable tags still
// gets its pixel dimensions.
func (s *Source) ExtractMetadata(ctx context.Context, assetIdentifier string) (domain.PhotoMetadata, *domain.Location, error) {
	var meta domain.PhotoMetadata

	if err := ctx.Err(); err != nil {
		return meta, nil, err
	}

	path, err := s.resolve(assetIdentifier)
	if err != nil {
		return meta, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return meta, nil, domain.WrapError(domain.ErrAssetNotFound, "read asset", err)
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}

	location := extractEXIF(&meta, data)
	return meta, location, nil
}

func (s *Source) resolve(assetIdentifier string) (string, error) {
	if assetIdentifier == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve asset", fmt.Errorf("empty asset identifier"))
	}

	// Clean against "/" first so "../" cannot escape the library root.
	path := filepath.Join(s.root, filepath.Clean("/"+filepath.FromSlash(assetIdentifier)))

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.WrapError(domain.ErrAssetNotFound, "resolve asset", err)
		}
		return "", fmt.Errorf("stat asset %q: %w", assetIdentifier, err)
	}
	if info.IsDir() {
		return "", domain.WrapError(domain.ErrAssetNotFound, "resolve asset", fmt.Errorf("%q is a directory", assetIdentifier))
	}
	return path, nil
}

func decodeFile(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	openErr := err

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, openErr
	}

	if img, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
		return img, nil
	}

	if img, _, stdErr := image.Decode(bytes.NewReader(data)); stdErr == nil {
		return img, nil
	}

	return nil, openErr
}

var exifTags = map[string]bool{
	"Model":                   true,
	"FocalLength":             true,
	"FNumber":                 true,
	"ExposureTime":            true,
	"ISOSpeedRatings":         true,
	"PhotographicSensitivity": true,
	"GPSLatitude":             true,
	"GPSLongitude":            true,
}

// extractEXIF fills camera fields from the asset's EXIF block. Any decode
// failure leaves the metadata as-is; screenshots and exports rarely carry
// EXIF at all.
func extractEXIF(meta *domain.PhotoMetadata, data []byte) *domain.Location {
	if len(data) == 0 {
		return nil
	}

	var lat, lon *float64

	err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Source == imagemeta.EXIF && exifTags[ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			switch ti.Tag {
			case "Model":
				if s := tagString(ti.Value); s != "" {
					meta.CameraModel = &s
				}
			case "FocalLength":
				if f, ok := tagFloat(ti.Value); ok && f > 0 {
					meta.FocalLength = &f
				}
			case "FNumber":
				if f, ok := tagFloat(ti.Value); ok && f > 0 {
					meta.FNumber = &f
				}
			case "ExposureTime":
				if f, ok := tagFloat(ti.Value); ok && f > 0 {
					meta.ExposureTime = &f
				}
			case "ISOSpeedRatings", "PhotographicSensitivity":
				if f, ok := tagFloat(ti.Value); ok && f > 0 {
					iso := int(f)
					meta.ISO = &iso
				}
			case "GPSLatitude":
				if f, ok := tagFloat(ti.Value); ok {
					lat = &f
				}
			case "GPSLongitude":
				if f, ok := tagFloat(ti.Value); ok {
					lon = &f
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil
	}

	if lat != nil && lon != nil {
		return &domain.Location{Latitude: *lat, Longitude: *lon}
	}
	return nil
}

func tagString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []string:
		if len(val) > 0 {
			return strings.TrimSpace(val[0])
		}
	}
	return ""
}

func tagFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
