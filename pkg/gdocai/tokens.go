package gdocai

import (
	"math"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrlayout/pkg/layout"
	"github.com/gardar/ocrlayout/pkg/ocr"
)

// ResultFromDocument converts a Document AI response into an OCR result.
// Only the first page carries tokens, since a single image is processed.
func ResultFromDocument(doc *documentaipb.Document) *ocr.Result {
	result := &ocr.Result{
		Engine:     Name,
		Text:       doc.GetText(),
		Tokens:     make([]layout.RecognizedToken, 0),
		Positional: true,
	}
	if pages := doc.GetPages(); len(pages) > 0 {
		result.Tokens = TokensFromPage(pages[0], doc.GetText())
	}
	return result
}

// TokensFromPage converts the page tokens into recognized tokens in document order
func TokensFromPage(page *documentaipb.Document_Page, fullText string) []layout.RecognizedToken {
	tokens := make([]layout.RecognizedToken, 0, len(page.GetTokens()))
	for _, t := range page.GetTokens() {
		tokens = append(tokens, layout.RecognizedToken{
			Text:        tokenText(t, fullText),
			BoundingBox: boxFromPoly(t.GetLayout().GetBoundingPoly(), page.GetDimension()),
			Confidence:  float64(t.GetLayout().GetConfidence()) * 100,
		})
	}
	return tokens
}

// boxFromPoly returns the pixel box enclosing the polygon. Absolute vertices
// are used when present, otherwise normalized vertices scaled by the page size.
func boxFromPoly(poly *documentaipb.BoundingPoly, dim *documentaipb.Document_Page_Dimension) layout.BoundingBox {
	var xs, ys []float64
	if v := poly.GetVertices(); len(v) > 0 {
		for _, p := range v {
			xs = append(xs, float64(p.GetX()))
			ys = append(ys, float64(p.GetY()))
		}
	} else {
		w, h := float64(dim.GetWidth()), float64(dim.GetHeight())
		for _, p := range poly.GetNormalizedVertices() {
			xs = append(xs, float64(p.GetX())*w)
			ys = append(ys, float64(p.GetY())*h)
		}
	}
	if len(xs) == 0 {
		return layout.BoundingBox{}
	}

	x1, x2 := bounds(xs)
	y1, y2 := bounds(ys)
	return layout.BoxFromCorners(x1, y1, x2, y2)
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
