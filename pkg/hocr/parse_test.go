package hocr

import (
	"strings"
	"testing"
)

const tesseractSample = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
 <head>
  <title></title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name='ocr-system' content='tesseract 5.3.0' />
  <meta name='ocr-capabilities' content='ocr_page ocr_carea ocr_par ocr_line ocrx_word ocrp_wconf'/>
 </head>
 <body>
  <div class='ocr_page' id='page_1' title='image "unknown"; bbox 0 0 640 480; ppageno 0; scan_res 70 70'>
   <div class='ocr_carea' id='block_1_1' title="bbox 10 10 300 60">
    <p class='ocr_par' id='par_1_1' lang='eng' title="bbox 10 10 300 60">
     <span class='ocr_line' id='line_1_1' title="bbox 10 10 300 30; baseline 0 -5; x_size 20; x_descenders 5; x_ascenders 5">
      <span class='ocrx_word' id='word_1_1' title='bbox 10 10 60 30; x_wconf 95'>Hello</span>
      <span class='ocrx_word' id='word_1_2' title='bbox 70 10 140 30; x_wconf 41'><strong>World</strong></span>
     </span>
     <span class='ocr_line' id='line_1_2' title="bbox 10 40 300 60; baseline 0 -5">
      <span class='ocrx_word' id='word_1_3' title='bbox 10 40 80 60; x_wconf 88'>again</span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParseHOCR_TesseractOutput(t *testing.T) {
	doc, err := ParseHOCR([]byte(tesseractSample))
	if err != nil {
		t.Fatalf("ParseHOCR() error = %v", err)
	}

	if doc.Language != "en" {
		t.Errorf("Expected language 'en', got %q", doc.Language)
	}
	if doc.Metadata["ocr-system"] != "tesseract 5.3.0" {
		t.Errorf("Unexpected ocr-system: %q", doc.Metadata["ocr-system"])
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(doc.Pages))
	}

	page := doc.Pages[0]
	if page.ImageName != "unknown" {
		t.Errorf("Expected image name 'unknown', got %q", page.ImageName)
	}
	if page.BBox != NewBoundingBox(0, 0, 640, 480) {
		t.Errorf("Unexpected page bbox: %+v", page.BBox)
	}
	if page.Metadata["scan_res"] != "70 70" {
		t.Errorf("Expected scan_res metadata, got %+v", page.Metadata)
	}
	if len(page.Areas) != 1 || len(page.Areas[0].Paragraphs) != 1 {
		t.Fatalf("Unexpected structure: %+v", page)
	}

	lines := page.Areas[0].Paragraphs[0].Lines
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].Baseline != "0 -5" {
		t.Errorf("Expected baseline '0 -5', got %q", lines[0].Baseline)
	}
	if lines[0].Metadata["x_size"] != "20" {
		t.Errorf("Expected x_size metadata, got %+v", lines[0].Metadata)
	}

	word := lines[0].Words[1]
	if word.Text != "World" {
		t.Errorf("Expected nested text 'World', got %q", word.Text)
	}
	if word.Confidence != 41 {
		t.Errorf("Expected confidence 41, got %v", word.Confidence)
	}
	if word.BBox.Width() != 70 || word.BBox.Height() != 20 {
		t.Errorf("Unexpected word size %vx%v", word.BBox.Width(), word.BBox.Height())
	}
}

func TestParseHOCR_NoPages(t *testing.T) {
	_, err := ParseHOCR([]byte("<html><body><p>nothing</p></body></html>"))
	if err == nil {
		t.Fatal("Expected error for document without ocr_page")
	}
}

func TestParseHOCR_Latin1(t *testing.T) {
	doc := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"></head><body>` +
		`<div class="ocr_page" title="bbox 0 0 10 10"><span class="ocr_line" title="bbox 0 0 10 10">` +
		`<span class="ocrx_word" title="bbox 0 0 5 5; x_wconf 90">caf` + "\xe9" + `</span></span></div></body></html>`

	parsed, err := ParseHOCR([]byte(doc))
	if err != nil {
		t.Fatalf("ParseHOCR() error = %v", err)
	}
	words := Words(parsed)
	if len(words) != 1 || words[0].Text != "café" {
		t.Fatalf("Expected decoded word 'café', got %+v", words)
	}
}

func TestWords_ReadingOrder(t *testing.T) {
	doc, err := ParseHOCR([]byte(tesseractSample))
	if err != nil {
		t.Fatalf("ParseHOCR() error = %v", err)
	}

	var got []string
	for _, w := range Words(doc) {
		got = append(got, w.Text)
	}
	if strings.Join(got, " ") != "Hello World again" {
		t.Errorf("Unexpected word order: %v", got)
	}
}

func TestParseBoundingBoxFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  *BoundingBox
	}{
		{"bbox 1 2 3 4; x_wconf 9", &BoundingBox{1, 2, 3, 4}},
		{"x_wconf 9", nil},
		{"bbox 1 2 3", nil},
		{"bbox a b c d", nil},
	}

	for _, tt := range tests {
		got := ParseBoundingBoxFromTitle(tt.title)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("ParseBoundingBoxFromTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestGenerateHOCRDocument_RoundTrip(t *testing.T) {
	words := []Word{
		{Text: "Fish & <Chips>", BBox: NewBoundingBox(5, 5, 50, 20), Confidence: 92},
		{Text: "Today", BBox: NewBoundingBox(60, 5, 100, 20), Confidence: 77.9},
	}
	doc := FromWords("menu.png", 200, 100, "ocrlayout", words)

	out, err := GenerateHOCRDocument(doc)
	if err != nil {
		t.Fatalf("GenerateHOCRDocument() error = %v", err)
	}

	parsed, err := ParseHOCR([]byte(out))
	if err != nil {
		t.Fatalf("ParseHOCR(generated) error = %v\n%s", err, out)
	}
	if parsed.Pages[0].ImageName != "menu.png" {
		t.Errorf("Expected image name to survive, got %q", parsed.Pages[0].ImageName)
	}

	got := Words(parsed)
	if len(got) != 2 {
		t.Fatalf("Expected 2 words, got %d", len(got))
	}
	if got[0].Text != "Fish & <Chips>" {
		t.Errorf("Expected escaped text to round trip, got %q", got[0].Text)
	}
	if got[1].Confidence != 77 {
		t.Errorf("Expected truncated confidence 77, got %v", got[1].Confidence)
	}
	if got[0].BBox != words[0].BBox {
		t.Errorf("Expected bbox %+v, got %+v", words[0].BBox, got[0].BBox)
	}
}

func TestGenerateHOCRDocument_Nil(t *testing.T) {
	if _, err := GenerateHOCRDocument(nil); err == nil {
		t.Fatal("Expected error for nil document")
	}
}
