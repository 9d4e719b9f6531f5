// Package tesseract is the local OCR backend, wrapping libtesseract through gosseract.
//
// Word boxes are read from tesseract's hOCR output, so every word keeps the
// confidence and position tesseract reported for it. Tesseract must be
// installed on the system (apt-get install tesseract-ocr libtesseract-dev).
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/ocrlayout/pkg/hocr"
	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/layout"
	"github.com/gardar/ocrlayout/pkg/ocr"
)

// Name is the engine name used in configuration
const Name = "tesseract"

// Config holds tesseract options
type Config struct {
	Languages   []string // e.g. ["eng", "deu"]; empty uses tesseract's default
	PageSegMode int      // 0 keeps tesseract's default (PSM_AUTO)
}

// client is the subset of *gosseract.Client the engine needs
type client interface {
	SetImageFromBytes(data []byte) error
	SetLanguage(langs ...string) error
	SetPageSegMode(mode gosseract.PageSegMode) error
	Text() (string, error)
	HOCRText() (string, error)
	Close() error
}

// Engine implements ocr.Recognizer with a fresh tesseract client per call,
// so it is safe for concurrent use.
type Engine struct {
	config    Config
	newClient func() client
}

// New creates a tesseract engine
func New(cfg Config) *Engine {
	return &Engine{
		config:    cfg,
		newClient: func() client { return gosseract.NewClient() },
	}
}

// Name returns "tesseract"
func (e *Engine) Name() string { return Name }

// Recognize runs tesseract on the image and returns its words and full text
func (e *Engine) Recognize(ctx context.Context, img *imagefile.Image) (*ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.newClient()
	defer c.Close()

	if len(e.config.Languages) > 0 {
		if err := c.SetLanguage(e.config.Languages...); err != nil {
			return nil, fmt.Errorf("failed to set languages %s: %w", strings.Join(e.config.Languages, "+"), err)
		}
	}
	if e.config.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.config.PageSegMode)); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if err := c.SetImageFromBytes(img.Data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	hocrHTML, err := c.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("tesseract hOCR failed: %w", err)
	}
	doc, err := hocr.ParseHOCR([]byte(hocrHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tesseract hOCR: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	return &ocr.Result{
		Engine:     Name,
		Text:       text,
		Tokens:     layout.TokensFromHOCR(doc),
		Positional: true,
	}, nil
}
