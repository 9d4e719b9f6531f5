// Package imagefile validates uploaded images before they are sent to an OCR engine.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned for data that cannot be decoded as a supported image
var ErrInvalidImage = errors.New("not a valid image")

// DefaultFormats are the formats accepted by the upload form
var DefaultFormats = []string{"png", "jpeg", "bmp"}

// Image is an uploaded file whose header decoded successfully
type Image struct {
	Name   string
	Data   []byte
	Format string // png, jpeg, bmp, tiff, webp, gif
	Width  int
	Height int
}

// MIMEType returns the content type of the image format
func (img *Image) MIMEType() string {
	switch img.Format {
	case "jpeg":
		return "image/jpeg"
	case "":
		return "application/octet-stream"
	default:
		return "image/" + img.Format
	}
}

// Decode checks that data is an image in one of the allowed formats and reads
// its dimensions. A nil or empty allowed list accepts every registered format.
func Decode(name string, data []byte, allowed []string) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidImage, name)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, name, err)
	}
	if len(allowed) > 0 && !isAllowed(format, allowed) {
		return nil, fmt.Errorf("%w: %s is %s, expected one of %s",
			ErrInvalidImage, name, format, strings.Join(allowed, ", "))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s has no pixels", ErrInvalidImage, name)
	}

	return &Image{
		Name:   name,
		Data:   data,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func isAllowed(format string, allowed []string) bool {
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimPrefix(a, "."))
		if a == "jpg" {
			a = "jpeg"
		}
		if a == format {
			return true
		}
	}
	return false
}
