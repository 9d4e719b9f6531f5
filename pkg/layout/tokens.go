package layout

import (
	"fmt"
	"math"

	"github.com/gardar/ocrlayout/pkg/hocr"
)

// TokensFromArrays zips the parallel per-token arrays reported by a local OCR
// engine (tesseract's image_to_data layout) into tokens.
// All arrays must have the same length.
func TokensFromArrays(text []string, left, top, width, height []int, conf []float64) ([]RecognizedToken, error) {
	n := len(text)
	columns := []struct {
		name string
		len  int
	}{
		{"left", len(left)},
		{"top", len(top)},
		{"width", len(width)},
		{"height", len(height)},
		{"conf", len(conf)},
	}
	for _, c := range columns {
		if c.len != n {
			return nil, fmt.Errorf("OCR data column %q has %d entries, expected %d", c.name, c.len, n)
		}
	}

	tokens := make([]RecognizedToken, n)
	for i := range text {
		tokens[i] = RecognizedToken{
			Text: text[i],
			BoundingBox: BoundingBox{
				Left:   nonNegative(left[i]),
				Top:    nonNegative(top[i]),
				Width:  nonNegative(width[i]),
				Height: nonNegative(height[i]),
			},
			Confidence: conf[i],
		}
	}
	return tokens, nil
}

// TokensFromHOCR flattens the words of an hOCR document into tokens in reading order
func TokensFromHOCR(doc hocr.HOCR) []RecognizedToken {
	words := hocr.Words(doc)
	tokens := make([]RecognizedToken, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, RecognizedToken{
			Text:        w.Text,
			BoundingBox: BoxFromCorners(w.BBox.X1, w.BBox.Y1, w.BBox.X2, w.BBox.Y2),
			Confidence:  w.Confidence,
		})
	}
	return tokens
}

// BoxFromCorners converts corner coordinates to a pixel box, rounding to the
// nearest pixel and clamping negative values to zero.
func BoxFromCorners(x1, y1, x2, y2 float64) BoundingBox {
	left := nonNegative(int(math.Round(x1)))
	top := nonNegative(int(math.Round(y1)))
	return BoundingBox{
		Left:   left,
		Top:    top,
		Width:  nonNegative(int(math.Round(x2)) - left),
		Height: nonNegative(int(math.Round(y2)) - top),
	}
}

// HOCRWords converts tokens back to hOCR words, for exporting hOCR from
// backends that do not produce it natively.
func HOCRWords(tokens []RecognizedToken) []hocr.Word {
	words := make([]hocr.Word, 0, len(tokens))
	for _, t := range tokens {
		b := t.BoundingBox
		words = append(words, hocr.Word{
			Text:       t.Text,
			Confidence: t.Confidence,
			BBox: hocr.NewBoundingBox(
				float64(b.Left), float64(b.Top),
				float64(b.Left+b.Width), float64(b.Top+b.Height),
			),
		})
	}
	return words
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
