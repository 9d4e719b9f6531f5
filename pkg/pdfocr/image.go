package pdfocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/gardar/ocrlayout/pkg/imagefile"
)

// imageForPDF returns image data fpdf can embed. PNG, JPEG and GIF are passed
// through, other formats are re-encoded as PNG.
func imageForPDF(img *imagefile.Image) ([]byte, string, error) {
	switch img.Format {
	case "png":
		return img.Data, "PNG", nil
	case "jpeg":
		return img.Data, "JPG", nil
	case "gif":
		return img.Data, "GIF", nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s image: %w", img.Format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, "", fmt.Errorf("failed to convert %s image to PNG: %w", img.Format, err)
	}
	return buf.Bytes(), "PNG", nil
}
