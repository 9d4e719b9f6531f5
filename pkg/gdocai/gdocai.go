// Package gdocai is the Google Document AI OCR backend.
//
// The image is sent as a raw document to an OCR processor. Tokens of the first
// page become positioned words: normalized vertices are scaled by the page
// dimension and the layout confidence is mapped to 0-100. The document text is
// the OCR blob.
//
// Usage requirements:
//
// - Google Cloud project with the Document AI API enabled
// - a Document AI OCR processor
// - a service account credentials file, or application default credentials
package gdocai

import (
	"fmt"
	"time"
)

// Name is the engine name used in configuration
const Name = "documentai"

// Config holds the processor coordinates and credentials
type Config struct {
	ProjectID       string
	Location        string // e.g. "us" or "eu"
	ProcessorID     string
	CredentialsFile string        // empty uses application default credentials
	Timeout         time.Duration // per request, defaults to 60s
}

// Validate checks that the processor can be addressed
func (c Config) Validate() error {
	switch {
	case c.ProjectID == "":
		return fmt.Errorf("document AI project id is not set")
	case c.Location == "":
		return fmt.Errorf("document AI location is not set")
	case c.ProcessorID == "":
		return fmt.Errorf("document AI processor id is not set")
	}
	return nil
}

func (c Config) endpoint() string {
	return fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)
}

func (c Config) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}
