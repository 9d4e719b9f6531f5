package hocr

// HOCR represents the entire hOCR document structure
type HOCR struct {
	Title       string            // Document title
	Description string            // Document description
	Language    string            // Document language
	Metadata    map[string]string // ocr-system, ocr-capabilities, ...
	Pages       []Page
}

// Page corresponds to the hOCR class 'ocr_page'
type Page struct {
	ID         string
	Title      string // Original title attribute
	PageNumber int
	ImageName  string
	Lang       string
	BBox       BoundingBox
	Areas      []Area
	Paragraphs []Paragraph // Paragraphs outside any area
	Lines      []Line      // Lines outside any area or paragraph
	Metadata   map[string]string
}

// Area corresponds to the hOCR class 'ocr_carea'
type Area struct {
	ID         string
	Lang       string
	BBox       BoundingBox
	Paragraphs []Paragraph
	Lines      []Line
	Words      []Word
	Metadata   map[string]string
}

// Paragraph corresponds to the hOCR class 'ocr_par'
type Paragraph struct {
	ID       string
	Lang     string
	BBox     BoundingBox
	Lines    []Line
	Words    []Word
	Metadata map[string]string
}

// Line corresponds to the hOCR class 'ocr_line'
type Line struct {
	ID       string
	Lang     string
	BBox     BoundingBox
	Baseline string
	Words    []Word
	Metadata map[string]string
}

// Word corresponds to the hOCR class 'ocrx_word'
type Word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
	Lang       string
	Metadata   map[string]string
}

// BoundingBox holds hOCR 'bbox' values: top-left (X1, Y1), bottom-right (X2, Y2)
type BoundingBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// NewBoundingBox creates a bounding box from the x1, y1, x2, y2 coordinates of an hOCR bbox
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width of the box
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height of the box
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// IsZero reports whether no bbox was set
func (b BoundingBox) IsZero() bool { return b == BoundingBox{} }

// Union returns the smallest box containing both b and o. A zero box is ignored.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if b.IsZero() {
		return o
	}
	if o.IsZero() {
		return b
	}
	return BoundingBox{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}
