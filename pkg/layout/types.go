package layout

// ConfidenceThreshold is the exclusive lower bound a token's confidence must
// exceed to be kept in a flat layout.
const ConfidenceThreshold = 60

// Version is the page-builder document format version.
const Version = "1.0"

// BoundingBox is a token rectangle in image pixels
type BoundingBox struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// RecognizedToken is one OCR hit, normalized from whatever shape the backend returns
type RecognizedToken struct {
	Text        string
	BoundingBox BoundingBox
	Confidence  float64 // 0-100
}

// Element is a retained token as written to the flat layout.
// Field order is the serialized key order.
type Element struct {
	Text       string `json:"text"`
	Left       int    `json:"left"`
	Top        int    `json:"top"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Confidence int    `json:"confidence"`
}

// FlatDocument is the positional layout of one image
type FlatDocument struct {
	Image    string    `json:"image"`
	Elements []Element `json:"elements"`
}

// PageDocument is a page-builder layout: page -> section -> widget
type PageDocument struct {
	Version string    `json:"version"`
	Title   string    `json:"title"`
	Content []Section `json:"content"`
}

// Section groups widgets
type Section struct {
	Type     string   `json:"type"`
	Elements []Widget `json:"elements"`
}

// Widget is a single page-builder widget
type Widget struct {
	Type       string            `json:"type"`
	WidgetType string            `json:"widgetType"`
	Settings   map[string]string `json:"settings"`
}
