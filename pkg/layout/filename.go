package layout

import (
	"path"
	"strings"
)

// PageFileName is the download name of every page-builder layout
const PageFileName = "elementor_layout.json"

// FlatFileName returns "<base>_layout.json" where base is the source name
// without directories and without its last extension.
func FlatFileName(sourceName string) string {
	return baseName(sourceName) + "_layout.json"
}

// PDFFileName returns the download name of the searchable PDF for a source image
func PDFFileName(sourceName string) string {
	return baseName(sourceName) + "_ocr.pdf"
}

// HOCRFileName returns the download name of the hOCR export for a source image
func HOCRFileName(sourceName string) string {
	return baseName(sourceName) + ".hocr"
}

func baseName(sourceName string) string {
	name := path.Base(strings.ReplaceAll(sourceName, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if name == "" {
		name = "image"
	}
	return name
}
