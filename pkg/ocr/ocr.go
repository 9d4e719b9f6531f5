// Package ocr defines the capability every OCR backend implements.
//
// Backends live in their own packages (tesseract, ocrspace, gdocai) and
// normalize their responses into layout tokens and a text blob, so the layout
// extractors never see backend specific field names.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/layout"
)

// ErrNoText is returned by backends that answered successfully but recognized nothing usable
var ErrNoText = errors.New("OCR returned no text")

// Recognizer runs OCR on one image
type Recognizer interface {
	// Name identifies the backend in logs and responses
	Name() string
	// Recognize blocks until the backend answers or ctx is done.
	Recognize(ctx context.Context, img *imagefile.Image) (*Result, error)
}

// Result is a complete, successful OCR response
type Result struct {
	Engine string
	// Text is the recognized text as one blob
	Text string
	// Tokens are the positioned words in engine order. Only meaningful when Positional is set.
	Tokens []layout.RecognizedToken
	// Positional reports whether the backend returned word boxes at all
	Positional bool
}

// HasText reports whether the result contains any non-blank text
func (r *Result) HasText() bool {
	if strings.TrimSpace(r.Text) != "" {
		return true
	}
	for _, t := range r.Tokens {
		if strings.TrimSpace(t.Text) != "" {
			return true
		}
	}
	return false
}

// Factory builds a recognizer for an engine name
type Factory func() (Recognizer, error)

// Registry maps engine names to factories
type Registry map[string]Factory

// New builds the recognizer registered under engine
func (r Registry) New(engine string) (Recognizer, error) {
	factory, ok := r[strings.ToLower(strings.TrimSpace(engine))]
	if !ok {
		return nil, fmt.Errorf("unsupported OCR engine %q (available: %s)", engine, strings.Join(r.Names(), ", "))
	}
	return factory()
}

// Names returns the registered engine names in a stable order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
