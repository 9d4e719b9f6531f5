package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"trim": strings.TrimSpace,
	"bbox": func(b BoundingBox) string {
		return fmt.Sprintf("bbox %d %d %d %d", int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
	},
	"conf": func(c float64) string { return fmt.Sprintf("%d", int(c)) },
	"esc":  escape,
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// GenerateHOCRDocument renders the document as hOCR HTML using the embedded template
func GenerateHOCRDocument(doc *HOCR) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("HOCR document is nil")
	}
	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.String(), nil
}

var htmlEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;", `'`, "&#39;")

func escape(s string) string { return htmlEscaper.Replace(s) }
