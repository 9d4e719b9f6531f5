package hocr

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

const (
	classPage      = "ocr_page"
	classArea      = "ocr_carea"
	classParagraph = "ocr_par"
	classLine      = "ocr_line"
	classWord      = "ocrx_word"
)

// ParseHOCR converts raw hOCR data into a structured HOCR object.
// Documents declaring a non UTF-8 charset are decoded as ISO-8859-1.
func ParseHOCR(data []byte) (HOCR, error) {
	result := HOCR{Metadata: make(map[string]string)}

	decoded, err := toUTF8(data)
	if err != nil {
		return result, err
	}

	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return result, fmt.Errorf("failed to parse hOCR HTML: %w", err)
	}

	extractDocumentMeta(&result, doc)

	for _, n := range collect(doc, classPage) {
		result.Pages = append(result.Pages, processPage(n))
	}

	if len(result.Pages) == 0 {
		return result, fmt.Errorf("no ocr_page elements found in HOCR data")
	}
	return result, nil
}

// ParseTitle breaks down an hOCR title attribute into its properties.
// "bbox 100 200 300 400; x_wconf 95" -> {"bbox": [100 200 300 400], "x_wconf": [95]}
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBoxFromTitle extracts the bbox property of a title, or nil if absent or malformed
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return nil
	}
	var c [4]float64
	for i := range c {
		v, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return nil
		}
		c[i] = v
	}
	result := NewBoundingBox(c[0], c[1], c[2], c[3])
	return &result
}

func toUTF8(data []byte) ([]byte, error) {
	charset := "utf-8"
	lower := bytes.ToLower(data)
	if i := bytes.Index(lower, []byte("charset=")); i >= 0 {
		rest := string(lower[i+len("charset="):])
		fields := strings.FieldsFunc(rest, func(r rune) bool {
			return r == '"' || r == ';' || r == '\'' || r == '>' || r == ' ' || r == '/'
		})
		if len(fields) > 0 {
			charset = fields[0]
		}
	}
	if charset == "utf-8" || charset == "utf8" {
		return data, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", charset, err)
	}
	return decoded, nil
}

// element holds the attributes shared by every hOCR element
type element struct {
	id    string
	lang  string
	title string
	bbox  BoundingBox
	props map[string][]string
}

func readElement(n *html.Node) element {
	var e element
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			e.id = a.Val
		case "lang":
			e.lang = a.Val
		case "title":
			e.title = a.Val
		}
	}
	e.props = ParseTitle(e.title)
	if bbox := ParseBoundingBoxFromTitle(e.title); bbox != nil {
		e.bbox = *bbox
	}
	return e
}

// metadata returns the title properties not listed in skip
func (e element) metadata(skip ...string) map[string]string {
	m := make(map[string]string)
	for k, v := range e.props {
		if k == "bbox" || contains(skip, k) {
			continue
		}
		m[k] = strings.Join(v, " ")
	}
	return m
}

func (e element) first(key string) (string, bool) {
	v, ok := e.props[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func processPage(n *html.Node) Page {
	e := readElement(n)
	page := Page{
		ID:       e.id,
		Title:    e.title,
		Lang:     e.lang,
		BBox:     e.bbox,
		Metadata: e.metadata("image", "ppageno"),
	}
	if image, ok := e.first("image"); ok {
		page.ImageName = strings.Trim(image, `"`)
	}
	if ppageno, ok := e.first("ppageno"); ok {
		page.PageNumber, _ = strconv.Atoi(ppageno)
	}

	for _, c := range collectChildren(n, classArea, classParagraph, classLine) {
		switch {
		case hasClass(c, classArea):
			page.Areas = append(page.Areas, processArea(c))
		case hasClass(c, classParagraph):
			page.Paragraphs = append(page.Paragraphs, processParagraph(c))
		default:
			page.Lines = append(page.Lines, processLine(c))
		}
	}
	return page
}

func processArea(n *html.Node) Area {
	e := readElement(n)
	area := Area{ID: e.id, Lang: e.lang, BBox: e.bbox, Metadata: e.metadata()}
	for _, c := range collectChildren(n, classParagraph, classLine, classWord) {
		switch {
		case hasClass(c, classParagraph):
			area.Paragraphs = append(area.Paragraphs, processParagraph(c))
		case hasClass(c, classLine):
			area.Lines = append(area.Lines, processLine(c))
		default:
			area.Words = append(area.Words, processWord(c))
		}
	}
	return area
}

func processParagraph(n *html.Node) Paragraph {
	e := readElement(n)
	paragraph := Paragraph{ID: e.id, Lang: e.lang, BBox: e.bbox, Metadata: e.metadata()}
	for _, c := range collectChildren(n, classLine, classWord) {
		if hasClass(c, classLine) {
			paragraph.Lines = append(paragraph.Lines, processLine(c))
		} else {
			paragraph.Words = append(paragraph.Words, processWord(c))
		}
	}
	return paragraph
}

func processLine(n *html.Node) Line {
	e := readElement(n)
	line := Line{ID: e.id, Lang: e.lang, BBox: e.bbox, Metadata: e.metadata("baseline")}
	if baseline, ok := e.props["baseline"]; ok {
		line.Baseline = strings.Join(baseline, " ")
	}
	for _, c := range collectChildren(n, classWord) {
		line.Words = append(line.Words, processWord(c))
	}
	return line
}

func processWord(n *html.Node) Word {
	e := readElement(n)
	word := Word{
		ID:       e.id,
		Lang:     e.lang,
		BBox:     e.bbox,
		Text:     textContent(n),
		Metadata: e.metadata("x_wconf", "lang"),
	}
	if conf, ok := e.first("x_wconf"); ok {
		word.Confidence, _ = strconv.ParseFloat(conf, 64)
	}
	if lang, ok := e.first("lang"); ok {
		word.Lang = lang
	}
	return word
}

// extractDocumentMeta reads <html lang>, <title> and the ocr-* meta tags
func extractDocumentMeta(result *HOCR, doc *html.Node) {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "html" {
			continue
		}
		for _, a := range c.Attr {
			if a.Key == "lang" || a.Key == "xml:lang" {
				result.Language = a.Val
			}
		}
	}

	head := findElement(doc, "head")
	if head == nil {
		return
	}

	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			if c.FirstChild != nil {
				result.Title = c.FirstChild.Data
			}
		case "meta":
			name, content := attr(c, "name"), attr(c, "content")
			if name == "" || content == "" {
				continue
			}
			switch name {
			case "ocr-system", "ocr-capabilities", "ocr-number-of-pages", "ocr-langs":
				result.Metadata[name] = content
			case "description":
				result.Description = content
			case "dc.language":
				result.Language = content
			}
		}
	}
}

// collect returns the outermost descendants of n carrying any of the classes
func collect(n *html.Node, classes ...string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, class := range classes {
				if hasClass(node, class) {
					found = append(found, node)
					return
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

// collectChildren is collect without matching n itself
func collectChildren(n *html.Node, classes ...string) []*html.Node {
	var found []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = append(found, collect(c, classes...)...)
	}
	return found
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return strings.TrimSpace(sb.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
