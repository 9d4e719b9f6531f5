// Package pdfocr assembles a searchable PDF from an image and its OCR tokens.
//
// The page is sized to the image with one point per pixel, the image is drawn
// full page and every token is written on an optional content layer at its
// box, scaled to the box width. The text is invisible unless Debug is set, so
// the PDF looks like the image but can be searched and selected.
package pdfocr

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/layout"
)

// AssembleWithOCR creates a one-page PDF from the image with the tokens as text layer
func AssembleWithOCR(img *imagefile.Image, tokens []layout.RecognizedToken, config Config) ([]byte, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("image has no dimensions: %dx%d", img.Width, img.Height)
	}
	if config.LayerName == "" {
		config.LayerName = DefaultConfig().LayerName
	}
	if config.Font.Name == "" {
		config.Font = DefaultFont
	}

	data, imageType, err := imageForPDF(img)
	if err != nil {
		return nil, err
	}

	w, h := float64(img.Width), float64(img.Height)
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(img.Name, true)
	pdf.SetCreator("ocrlayout", true)
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
	pdf.RegisterImageOptionsReader("page", opts, bytes.NewReader(data))
	pdf.ImageOptions("page", 0, 0, w, h, false, opts, 0, "")

	drawOCRLayer(pdf, tokens, config)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
