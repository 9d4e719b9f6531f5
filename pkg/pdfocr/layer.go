package pdfocr

import (
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrlayout/pkg/layout"
)

// drawOCRLayer writes the tokens onto a layer of the current page
func drawOCRLayer(pdf *fpdf.Fpdf, tokens []layout.RecognizedToken, config Config) {
	layer := pdf.AddLayer(config.LayerName, true)
	pdf.BeginLayer(layer)
	pdf.SetFont(config.Font.Name, config.Font.Style, config.Font.Size)

	if config.Debug {
		pdf.SetTextColor(255, 0, 0)
		pdf.SetDrawColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0.0, "Normal")
	}

	// the core fonts are latin-1; other runes become '?'
	encoder := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	for _, tok := range tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" || tok.BoundingBox.Width <= 0 {
			continue
		}
		latin1, err := encoder.String(text)
		if err != nil {
			continue
		}
		drawWord(pdf, latin1, tok.BoundingBox, config)
	}

	pdf.EndLayer()
}

// drawWord renders a single word scaled to the width of its box
func drawWord(pdf *fpdf.Fpdf, text string, box layout.BoundingBox, config Config) {
	x, y := float64(box.Left), float64(box.Top)
	width := float64(box.Width)

	if strWidth := pdf.GetStringWidth(text); strWidth > 0 {
		pdf.SetFontSize(config.Font.Size * width / strWidth)
	}

	fontSize, _ := pdf.GetFontSize()
	pdf.Text(x, y+fontSize*config.Font.AscentRatio, text)
	pdf.SetFontSize(config.Font.Size)

	if config.Debug {
		pdf.Rect(x, y, width, float64(box.Height), "D")
	}
}
