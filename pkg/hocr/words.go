package hocr

import "fmt"

// Words returns every word of the document in reading order:
// page by page, areas first, then paragraphs and lines outside any area.
func Words(doc HOCR) []Word {
	var words []Word
	for _, page := range doc.Pages {
		for _, area := range page.Areas {
			for _, para := range area.Paragraphs {
				words = appendParagraph(words, para)
			}
			for _, line := range area.Lines {
				words = append(words, line.Words...)
			}
			words = append(words, area.Words...)
		}
		for _, para := range page.Paragraphs {
			words = appendParagraph(words, para)
		}
		for _, line := range page.Lines {
			words = append(words, line.Words...)
		}
	}
	return words
}

func appendParagraph(words []Word, para Paragraph) []Word {
	for _, line := range para.Lines {
		words = append(words, line.Words...)
	}
	return append(words, para.Words...)
}

// FromWords builds a one page document from positioned words.
// No line grouping is inferred: all words share one area, paragraph and line.
func FromWords(imageName string, width, height int, system string, words []Word) *HOCR {
	page := Page{
		ID:         "page_1",
		PageNumber: 1,
		ImageName:  imageName,
		BBox:       NewBoundingBox(0, 0, float64(width), float64(height)),
		Metadata:   map[string]string{},
	}

	if len(words) > 0 {
		var box BoundingBox
		numbered := make([]Word, len(words))
		for i, w := range words {
			if w.ID == "" {
				w.ID = fmt.Sprintf("word_1_%d", i+1)
			}
			numbered[i] = w
			box = box.Union(w.BBox)
		}
		line := Line{ID: "line_1_1", BBox: box, Words: numbered}
		para := Paragraph{ID: "par_1_1", BBox: box, Lines: []Line{line}}
		page.Areas = []Area{{ID: "block_1_1", BBox: box, Paragraphs: []Paragraph{para}}}
	}

	return &HOCR{
		Title: imageName,
		Metadata: map[string]string{
			"ocr-system":          system,
			"ocr-number-of-pages": "1",
			"ocr-capabilities":    "ocr_page ocr_carea ocr_par ocr_line ocrx_word",
		},
		Pages: []Page{page},
	}
}
