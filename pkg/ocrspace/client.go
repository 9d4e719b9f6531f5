// Package ocrspace is the hosted OCR backend for the OCR.space HTTP API.
//
// The API returns one text blob per page. When the overlay is requested the
// words of the first page are returned as tokens as well; OCR.space reports no
// per-word confidence, so those tokens carry full confidence.
package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/layout"
	"github.com/gardar/ocrlayout/pkg/ocr"
)

// Name is the engine name used in configuration
const Name = "ocrspace"

// DefaultEndpoint is the public OCR.space parse endpoint
const DefaultEndpoint = "https://api.ocr.space/parse/image"

// overlayConfidence is assigned to overlay words, which come without a score
const overlayConfidence = 100

// Config holds OCR.space options
type Config struct {
	APIKey   string
	Endpoint string        // defaults to DefaultEndpoint
	Language string        // e.g. "eng"
	Engine   int           // OCR.space engine 1, 2 or 3; 0 keeps the API default
	Overlay  bool          // request word boxes
	Timeout  time.Duration // HTTP timeout, defaults to 60s
}

// Client implements ocr.Recognizer against the OCR.space API
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates an OCR.space client
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OCR.space API key is not set")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns "ocrspace"
func (c *Client) Name() string { return Name }

// Recognize uploads the image and returns the text of the first parsed result
func (c *Client) Recognize(ctx context.Context, img *imagefile.Image) (*ocr.Result, error) {
	body, contentType, err := c.buildForm(img)
	if err != nil {
		return nil, fmt.Errorf("failed to build OCR.space request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.config.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to OCR.space failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR.space response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("OCR.space returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed Response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse OCR.space response: %w", err)
	}
	return toResult(&parsed, c.config.Overlay)
}

func (c *Client) buildForm(img *imagefile.Image) (io.Reader, string, error) {
	payload := new(bytes.Buffer)
	writer := multipart.NewWriter(payload)

	fields := [][2]string{
		{"language", c.config.Language},
		{"isOverlayRequired", strconv.FormatBool(c.config.Overlay)},
		{"filetype", fileType(img.Format)},
	}
	if c.config.Engine > 0 {
		fields = append(fields, [2]string{"OCREngine", strconv.Itoa(c.config.Engine)})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	name := img.Name
	if name == "" {
		name = "image." + img.Format
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return payload, writer.FormDataContentType(), nil
}

func toResult(resp *Response, overlay bool) (*ocr.Result, error) {
	if resp.IsErroredOnProcessing {
		return nil, fmt.Errorf("OCR.space processing error: %s", resp.errorText())
	}
	if len(resp.ParsedResults) == 0 {
		return nil, fmt.Errorf("%w: OCR.space returned no parsed results", ocr.ErrNoText)
	}

	first := resp.ParsedResults[0]
	result := &ocr.Result{
		Engine: Name,
		Text:   first.ParsedText,
	}

	if overlay && first.TextOverlay != nil {
		result.Positional = true
		result.Tokens = make([]layout.RecognizedToken, 0)
		for _, line := range first.TextOverlay.Lines {
			for _, w := range line.Words {
				result.Tokens = append(result.Tokens, layout.RecognizedToken{
					Text:        w.WordText,
					BoundingBox: layout.BoxFromCorners(w.Left, w.Top, w.Left+w.Width, w.Top+w.Height),
					Confidence:  overlayConfidence,
				})
			}
		}
	}
	return result, nil
}

// fileType maps a decoded image format to the OCR.space filetype value
func fileType(format string) string {
	if format == "jpeg" {
		return "JPG"
	}
	return strings.ToUpper(format)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
