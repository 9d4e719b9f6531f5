package config

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrlayout/pkg/extractor"
	"github.com/gardar/ocrlayout/pkg/gdocai"
	"github.com/gardar/ocrlayout/pkg/llmlayout"
	"github.com/gardar/ocrlayout/pkg/ocr"
	"github.com/gardar/ocrlayout/pkg/ocrspace"
	"github.com/gardar/ocrlayout/pkg/pdfocr"
	"github.com/gardar/ocrlayout/pkg/tesseract"
)

func (d DocumentAIConfig) gdocai() gdocai.Config {
	return gdocai.Config{
		ProjectID:       d.ProjectID,
		Location:        d.Location,
		ProcessorID:     d.ProcessorID,
		CredentialsFile: d.CredentialsFile,
		Timeout:         d.Timeout,
	}
}

// Registry returns the OCR backends built from this configuration. Raw
// Document AI responses are written to dump when it is non-nil.
func (c *Config) Registry(dump io.Writer) ocr.Registry {
	return ocr.Registry{
		tesseract.Name: func() (ocr.Recognizer, error) {
			return tesseract.New(tesseract.Config{
				Languages:   c.OCR.Tesseract.Languages,
				PageSegMode: c.OCR.Tesseract.PageSegMode,
			}), nil
		},
		ocrspace.Name: func() (ocr.Recognizer, error) {
			return ocrspace.New(ocrspace.Config{
				APIKey:   c.OCR.OCRSpace.APIKey,
				Endpoint: c.OCR.OCRSpace.Endpoint,
				Language: c.OCR.OCRSpace.Language,
				Engine:   c.OCR.OCRSpace.Engine,
				Overlay:  c.OCR.OCRSpace.Overlay,
				Timeout:  c.OCR.OCRSpace.Timeout,
			})
		},
		gdocai.Name: func() (ocr.Recognizer, error) {
			return gdocai.New(c.OCR.DocumentAI.gdocai(), dump)
		},
	}
}

// NewRecognizer builds the configured OCR backend
func (c *Config) NewRecognizer(dump io.Writer) (ocr.Recognizer, error) {
	return c.Registry(dump).New(c.OCR.Engine)
}

// NewGenerator builds the LLM layout generator, or returns nil when disabled
func (c *Config) NewGenerator() (extractor.LayoutGenerator, error) {
	if !c.LLM.Enabled {
		return nil, nil
	}
	gen, err := llmlayout.New(llmlayout.Config{
		Model:       c.LLM.Model,
		APIKey:      c.LLM.APIKey,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Timeout:     c.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return gen, nil
}

// NewExtractor wires the configured backend and generator into a pipeline
func (c *Config) NewExtractor(log *logrus.Entry, dump io.Writer) (*extractor.Extractor, error) {
	recognizer, err := c.NewRecognizer(dump)
	if err != nil {
		return nil, err
	}
	generator, err := c.NewGenerator()
	if err != nil {
		return nil, err
	}

	pdf := pdfocr.DefaultConfig()
	pdf.Debug = c.PDF.Debug
	if c.PDF.LayerName != "" {
		pdf.LayerName = c.PDF.LayerName
	}

	return extractor.New(recognizer, generator, extractor.Options{
		AllowedFormats: c.OCR.AllowedFormats,
		PDF:            pdf,
	}, log), nil
}
