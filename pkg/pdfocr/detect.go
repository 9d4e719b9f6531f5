package pdfocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var layerNamePattern = regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(((?:\\.|[^\\)])*)\)`)

// Layers lists the names of the optional content groups found in the PDF
func Layers(pdfData []byte) []string {
	var layers []string
	seen := make(map[string]bool)
	for _, m := range layerNamePattern.FindAllSubmatch(pdfData, -1) {
		name := unescapePDFString(string(m[1]))
		if strings.HasPrefix(name, "\xfe\xff") {
			decoded, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().String(name)
			if err == nil {
				name = decoded
			}
		}
		if !seen[name] {
			seen[name] = true
			layers = append(layers, name)
		}
	}
	return layers
}

// HasLayer reports whether the PDF contains a layer with the given name
func HasLayer(pdfData []byte, name string) bool {
	for _, l := range Layers(pdfData) {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

func unescapePDFString(s string) string {
	r := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\r`, "\r", `\n`, "\n")
	return r.Replace(s)
}
