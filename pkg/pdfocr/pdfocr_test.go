package pdfocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/layout"
)

func testImage(t *testing.T, name string, encode func(*bytes.Buffer, image.Image) error) *imagefile.Image {
	t.Helper()
	src := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for x := 0; x < 120; x++ {
		src.Set(x, 20, color.Black)
	}
	var buf bytes.Buffer
	if err := encode(&buf, src); err != nil {
		t.Fatalf("encode error = %v", err)
	}
	img, err := imagefile.Decode(name, buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return img
}

func encodePNG(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) }
func encodeBMP(buf *bytes.Buffer, img image.Image) error { return bmp.Encode(buf, img) }

var sampleTokens = []layout.RecognizedToken{
	{Text: "Hello", Confidence: 95, BoundingBox: layout.BoundingBox{Left: 2, Top: 5, Width: 50, Height: 20}},
	{Text: "Wörld", Confidence: 90, BoundingBox: layout.BoundingBox{Left: 60, Top: 5, Width: 55, Height: 20}},
	{Text: "日本", Confidence: 90, BoundingBox: layout.BoundingBox{Left: 0, Top: 30, Width: 20, Height: 10}},
	{Text: "  ", Confidence: 99, BoundingBox: layout.BoundingBox{Left: 0, Top: 0, Width: 5, Height: 5}},
	{Text: "flat", Confidence: 99, BoundingBox: layout.BoundingBox{Left: 0, Top: 0, Width: 0, Height: 5}},
}

func TestAssembleWithOCR(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		encode func(*bytes.Buffer, image.Image) error
		config Config
	}{
		{"png hidden text", "a.png", encodePNG, DefaultConfig()},
		{"png debug", "a.png", encodePNG, Config{Debug: true, LayerName: "Recognized"}},
		{"bmp converted", "a.bmp", encodeBMP, Config{}},
	}

	for _, tt := range tests {
		img := testImage(t, tt.file, tt.encode)
		out, err := AssembleWithOCR(img, sampleTokens, tt.config)
		if err != nil {
			t.Fatalf("%s: AssembleWithOCR() error = %v", tt.name, err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF-")) {
			t.Errorf("%s: output is not a PDF", tt.name)
		}

		layer := tt.config.LayerName
		if layer == "" {
			layer = "OCR Text"
		}
		if !HasLayer(out, layer) {
			t.Errorf("%s: expected layer %q, found %v", tt.name, layer, Layers(out))
		}
	}
}

func TestAssembleWithOCR_NoTokens(t *testing.T) {
	img := testImage(t, "blank.png", encodePNG)
	out, err := AssembleWithOCR(img, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("AssembleWithOCR() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestAssembleWithOCR_InvalidInput(t *testing.T) {
	if _, err := AssembleWithOCR(nil, sampleTokens, DefaultConfig()); err == nil {
		t.Error("Expected error for nil image")
	}
	if _, err := AssembleWithOCR(&imagefile.Image{Data: []byte{1}, Format: "png"}, nil, DefaultConfig()); err == nil {
		t.Error("Expected error for image without dimensions")
	}
}

func TestLayers(t *testing.T) {
	// "OCR (1)" as fpdf writes it: UTF-16BE with BOM, parentheses escaped
	name := "\xfe\xff\x00O\x00C\x00R\x00 \x00\\(\x001\x00\\)"
	data := []byte("1 0 obj\n<</Type /OCG /Name (" + name + ")>>\nendobj\n" +
		"2 0 obj\n<</Type /OCG /Name (Plain)>>\nendobj\n" +
		"3 0 obj\n<</Type /OCG /Name (Plain)>>\nendobj\n")

	got := Layers(data)
	if len(got) != 2 || got[0] != "OCR (1)" || got[1] != "Plain" {
		t.Errorf("Unexpected layers %q", got)
	}
	if !HasLayer(data, "plain") || HasLayer(data, "missing") {
		t.Error("HasLayer returned unexpected result")
	}
}
