// Package layout turns OCR output into the JSON layouts offered for download.
//
// Two document shapes are produced:
//
// - FlatDocument: every confidently recognized token with its bounding box,
// in the order the OCR engine returned them.
//
// - PageDocument: a page-builder tree (page -> section -> widget) holding the
// whole OCR text in a single text-editor widget.
//
// Everything here is a pure function of its input. Backends are responsible for
// normalizing their responses into RecognizedToken values (see TokensFromArrays
// and TokensFromHOCR) and for never calling the extractors on a failed response.
package layout

import (
	"strings"
)

// ExtractFlat keeps tokens whose trimmed text is non-empty and whose confidence
// is above ConfidenceThreshold. Input order is preserved.
func ExtractFlat(tokens []RecognizedToken, sourceName string) *FlatDocument {
	elements := make([]Element, 0, len(tokens))
	for _, tok := range tokens {
		text := strings.TrimSpace(tok.Text)
		confidence := int(tok.Confidence)
		if text == "" || confidence <= ConfidenceThreshold {
			continue
		}
		elements = append(elements, Element{
			Text:       text,
			Left:       tok.BoundingBox.Left,
			Top:        tok.BoundingBox.Top,
			Width:      tok.BoundingBox.Width,
			Height:     tok.BoundingBox.Height,
			Confidence: confidence,
		})
	}

	return &FlatDocument{
		Image:    sourceName,
		Elements: elements,
	}
}

// ExtractPage wraps ocrText verbatim in one text-editor widget inside one section
func ExtractPage(ocrText, sourceName string) *PageDocument {
	return &PageDocument{
		Version: Version,
		Title:   sourceName,
		Content: []Section{
			{
				Type: "section",
				Elements: []Widget{
					{
						Type:       "widget",
						WidgetType: "text-editor",
						Settings:   map[string]string{"editor": ocrText},
					},
				},
			},
		},
	}
}
