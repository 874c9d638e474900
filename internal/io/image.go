package ioutils

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService reads image metadata for exported media.
//
// Only the image header is decoded, so inspecting large originals is cheap.
// Supported formats: JPEG, PNG, GIF, BMP, TIFF and WebP.
//
// Example usage:
//
//	svc := NewImageService()
//	info, err := svc.Inspect(ctx, "/export/Images/Sun.jpg")
//	fmt.Println(info.Width, info.Height, info.Format)
type ImageService struct{}

// ImageInfo describes a decoded image header.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Inspect returns the dimensions and format of the image at path.
//
// Returns an error if the file cannot be opened or is not in a
// supported image format.
func (s *ImageService) Inspect(ctx context.Context, path string) (ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return ImageInfo{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
