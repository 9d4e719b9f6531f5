// Package extractor runs one upload through the OCR pipeline: validate the
// image, recognize it, build the requested layout and serialize it.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrlayout/pkg/hocr"
	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/layout"
	"github.com/gardar/ocrlayout/pkg/llmlayout"
	"github.com/gardar/ocrlayout/pkg/ocr"
	"github.com/gardar/ocrlayout/pkg/pdfocr"
)

// LayoutGenerator produces page-builder JSON from OCR text
type LayoutGenerator interface {
	Generate(ctx context.Context, ocrText, sourceName string) ([]byte, error)
}

// Options configures an Extractor
type Options struct {
	// AllowedFormats restricts accepted uploads, nil accepts every decodable format
	AllowedFormats []string
	PDF            pdfocr.Config
}

// Extractor is safe for concurrent use when its recognizer and generator are
type Extractor struct {
	recognizer ocr.Recognizer
	generator  LayoutGenerator
	options    Options
	log        *logrus.Entry
}

// Request is one uploaded image
type Request struct {
	Name   string
	Data   []byte
	Mode   Mode
	UseLLM bool
}

// Artifact is a downloadable result
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
	// Document is the layout value behind Data (a *layout.FlatDocument,
	// *layout.PageDocument or json.RawMessage from the model); nil for PDF and hOCR.
	Document interface{}
	// Fallback is set when an LLM layout was requested but the baseline was served
	Fallback bool
	Engine   string
}

// New creates an Extractor. generator may be nil when no LLM is configured.
func New(recognizer ocr.Recognizer, generator LayoutGenerator, options Options, log *logrus.Entry) *Extractor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Extractor{
		recognizer: recognizer,
		generator:  generator,
		options:    options,
		log:        log,
	}
}

// WithLogger returns a copy of e that logs to log, e.g. with a request id attached
func (e *Extractor) WithLogger(log *logrus.Entry) *Extractor {
	c := *e
	c.log = log
	return &c
}

// Engine returns the name of the OCR backend
func (e *Extractor) Engine() string {
	return e.recognizer.Name()
}

// LLMEnabled reports whether a layout generator is configured
func (e *Extractor) LLMEnabled() bool {
	return e.generator != nil
}

// Extract builds the layout document for req
func (e *Extractor) Extract(ctx context.Context, req Request) (*Artifact, error) {
	if err := req.checkMode(); err != nil {
		return nil, err
	}
	logger := e.logger(req)

	img, result, err := e.recognize(ctx, req, logger)
	if err != nil {
		return nil, err
	}
	return e.layoutArtifact(ctx, req, img, result, logger)
}

// Bundle runs OCR once and returns the layout followed by the searchable PDF
// and the hOCR document when requested.
func (e *Extractor) Bundle(ctx context.Context, req Request, withPDF, withHOCR bool) ([]*Artifact, error) {
	if err := req.checkMode(); err != nil {
		return nil, err
	}
	logger := e.logger(req)

	img, result, err := e.recognize(ctx, req, logger)
	if err != nil {
		return nil, err
	}

	primary, err := e.layoutArtifact(ctx, req, img, result, logger)
	if err != nil {
		return nil, err
	}
	artifacts := []*Artifact{primary}

	if withPDF || withHOCR {
		if err := e.requirePositions(req, result); err != nil {
			return nil, err
		}
	}
	if withPDF {
		pdf, err := e.pdfArtifact(img, result, logger)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, pdf)
	}
	if withHOCR {
		h, err := hocrArtifact(img, result)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, h)
	}
	return artifacts, nil
}

// checkMode defaults an empty mode to flat and rejects unknown modes before any OCR runs
func (r *Request) checkMode() error {
	if r.Mode == "" {
		r.Mode = ModeFlat
	}
	if r.Mode != ModeFlat && r.Mode != ModePage {
		return NewBadRequestError("unknown mode %q", r.Mode)
	}
	return nil
}

func (e *Extractor) logger(req Request) *logrus.Entry {
	fields := logrus.Fields{
		"file":   req.Name,
		"engine": e.recognizer.Name(),
	}
	if req.Mode != "" {
		fields["mode"] = req.Mode
	}
	return e.log.WithFields(fields)
}

func (e *Extractor) layoutArtifact(ctx context.Context, req Request, img *imagefile.Image, result *ocr.Result, logger *logrus.Entry) (*Artifact, error) {
	artifact := &Artifact{
		ContentType: "application/json",
		Engine:      result.Engine,
	}

	switch req.Mode {
	case ModeFlat:
		if err := e.requirePositions(req, result); err != nil {
			logger.WithError(err).Error("Flat layout needs positioned words")
			return nil, err
		}
		doc := layout.ExtractFlat(result.Tokens, img.Name)
		artifact.FileName = layout.FlatFileName(img.Name)
		artifact.Document = doc
		logger.WithFields(logrus.Fields{
			"tokens":   len(result.Tokens),
			"elements": len(doc.Elements),
		}).Info("Extracted flat layout")

	case ModePage:
		if strings.TrimSpace(result.Text) == "" {
			err := NewOCRFailedError(req.Name, e.recognizer.Name(), ocr.ErrNoText)
			logger.WithError(err).Error("No text recognized")
			return nil, err
		}
		artifact.FileName = layout.PageFileName
		if req.UseLLM {
			if raw, ok := e.generateLayout(ctx, result.Text, img.Name, logger); ok {
				artifact.Document = json.RawMessage(raw)
				artifact.Data = raw
				logger.Info("Generated LLM page layout")
				return artifact, nil
			}
			artifact.Fallback = true
		}
		artifact.Document = layout.ExtractPage(result.Text, img.Name)
		logger.WithField("fallback", artifact.Fallback).Info("Extracted page layout")
	}

	data, err := layout.Marshal(artifact.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	artifact.Data = data
	return artifact, nil
}

// generateLayout returns the model layout, or false when the baseline must be served
func (e *Extractor) generateLayout(ctx context.Context, text, source string, logger *logrus.Entry) ([]byte, bool) {
	if e.generator == nil {
		logger.Warn("LLM layout requested but no model is configured, serving baseline layout")
		return nil, false
	}

	raw, err := e.generator.Generate(ctx, text, source)
	if err != nil {
		if errors.Is(err, llmlayout.ErrMalformedOutput) {
			err = NewMalformedLLMOutputError(source, err)
		}
		logger.WithError(err).Warn("LLM layout failed, serving baseline layout")
		return nil, false
	}
	return raw, true
}

// SearchablePDF returns the image as a PDF with an invisible OCR text layer
func (e *Extractor) SearchablePDF(ctx context.Context, req Request) (*Artifact, error) {
	logger := e.logger(req)
	img, result, err := e.positional(ctx, req, logger)
	if err != nil {
		return nil, err
	}
	return e.pdfArtifact(img, result, logger)
}

// HOCR returns the recognized words as an hOCR document
func (e *Extractor) HOCR(ctx context.Context, req Request) (*Artifact, error) {
	img, result, err := e.positional(ctx, req, e.logger(req))
	if err != nil {
		return nil, err
	}
	return hocrArtifact(img, result)
}

func (e *Extractor) pdfArtifact(img *imagefile.Image, result *ocr.Result, logger *logrus.Entry) (*Artifact, error) {
	data, err := pdfocr.AssembleWithOCR(img, result.Tokens, e.options.PDF)
	if err != nil {
		logger.WithError(err).Error("Failed to assemble PDF")
		return nil, fmt.Errorf("failed to assemble PDF: %w", err)
	}
	logger.WithField("bytes", len(data)).Info("Assembled searchable PDF")

	return &Artifact{
		FileName:    layout.PDFFileName(img.Name),
		ContentType: "application/pdf",
		Data:        data,
		Engine:      result.Engine,
	}, nil
}

func hocrArtifact(img *imagefile.Image, result *ocr.Result) (*Artifact, error) {
	doc := hocr.FromWords(img.Name, img.Width, img.Height, result.Engine, layout.HOCRWords(result.Tokens))
	html, err := hocr.GenerateHOCRDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to generate hOCR: %w", err)
	}
	return &Artifact{
		FileName:    layout.HOCRFileName(img.Name),
		ContentType: "text/html; charset=utf-8",
		Data:        []byte(html),
		Engine:      result.Engine,
	}, nil
}

func (e *Extractor) positional(ctx context.Context, req Request, logger *logrus.Entry) (*imagefile.Image, *ocr.Result, error) {
	img, result, err := e.recognize(ctx, req, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := e.requirePositions(req, result); err != nil {
		return nil, nil, err
	}
	return img, result, nil
}

func (e *Extractor) requirePositions(req Request, result *ocr.Result) error {
	if result.Positional {
		return nil
	}
	return NewOCRFailedError(req.Name, e.recognizer.Name(),
		fmt.Errorf("engine returned no word positions; use page mode or enable the overlay"))
}

// recognize validates the upload and runs OCR on it
func (e *Extractor) recognize(ctx context.Context, req Request, logger *logrus.Entry) (*imagefile.Image, *ocr.Result, error) {
	img, err := imagefile.Decode(req.Name, req.Data, e.options.AllowedFormats)
	if err != nil {
		logger.WithError(err).Warn("Rejected upload")
		return nil, nil, NewInvalidImageError(req.Name, err)
	}
	logger.WithFields(logrus.Fields{
		"format": img.Format,
		"width":  img.Width,
		"height": img.Height,
	}).Debug("Running OCR")

	result, err := e.recognizer.Recognize(ctx, img)
	if err == nil && result == nil {
		err = ocr.ErrNoText
	}
	if err != nil {
		ocrErr := NewOCRFailedError(req.Name, e.recognizer.Name(), err)
		logger.WithError(err).Error("OCR failed")
		return nil, nil, ocrErr
	}
	return img, result, nil
}
