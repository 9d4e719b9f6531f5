package ocrspace

import (
	"encoding/json"
	"strings"
)

// Response is the body returned by the OCR.space parse endpoint
type Response struct {
	ParsedResults                []ParsedResult  `json:"ParsedResults"`
	OCRExitCode                  int             `json:"OCRExitCode"`
	IsErroredOnProcessing        bool            `json:"IsErroredOnProcessing"`
	ErrorMessage                 json.RawMessage `json:"ErrorMessage"` // string or []string
	ErrorDetails                 string          `json:"ErrorDetails"`
	ProcessingTimeInMilliseconds string          `json:"ProcessingTimeInMilliseconds"`
}

// ParsedResult is the OCR result of one page
type ParsedResult struct {
	TextOverlay       *TextOverlay `json:"TextOverlay"`
	FileParseExitCode int          `json:"FileParseExitCode"`
	ParsedText        string       `json:"ParsedText"`
	ErrorMessage      string       `json:"ErrorMessage"`
	ErrorDetails      string       `json:"ErrorDetails"`
}

// TextOverlay holds word positions when isOverlayRequired was set
type TextOverlay struct {
	Lines      []OverlayLine `json:"Lines"`
	HasOverlay bool          `json:"HasOverlay"`
	Message    string        `json:"Message"`
}

// OverlayLine is one recognized line
type OverlayLine struct {
	LineText  string        `json:"LineText"`
	Words     []OverlayWord `json:"Words"`
	MaxHeight float64       `json:"MaxHeight"`
	MinTop    float64       `json:"MinTop"`
}

// OverlayWord is one recognized word with its pixel box
type OverlayWord struct {
	WordText string  `json:"WordText"`
	Left     float64 `json:"Left"`
	Top      float64 `json:"Top"`
	Height   float64 `json:"Height"`
	Width    float64 `json:"Width"`
}

// errorText flattens ErrorMessage, which the API sends either as a string or a list
func (r *Response) errorText() string {
	if len(r.ErrorMessage) == 0 || string(r.ErrorMessage) == "null" {
		return r.ErrorDetails
	}
	var list []string
	if err := json.Unmarshal(r.ErrorMessage, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var s string
	if err := json.Unmarshal(r.ErrorMessage, &s); err == nil {
		return s
	}
	return string(r.ErrorMessage)
}
