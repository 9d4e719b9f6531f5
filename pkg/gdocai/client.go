package gdocai

import (
	"context"
	"fmt"
	"io"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/ocr"
)

// processor is the part of the Document AI client used by the engine
type processor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// Engine implements ocr.Recognizer with a Document AI processor
type Engine struct {
	config Config
	dump   io.Writer
	dial   func(ctx context.Context) (processor, error)
}

// New creates a Document AI engine. When dump is non-nil every raw response is
// written to it as JSON.
func New(cfg Config, dump io.Writer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	e := &Engine{config: cfg, dump: dump}
	e.dial = e.dialClient
	return e, nil
}

// Name returns "documentai"
func (e *Engine) Name() string { return Name }

func (e *Engine) dialClient(ctx context.Context) (processor, error) {
	opts := []option.ClientOption{option.WithEndpoint(e.config.endpoint())}
	if e.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(e.config.CredentialsFile))
	}
	return documentai.NewDocumentProcessorClient(ctx, opts...)
}

// ProcessDocument sends the raw bytes to Document AI and returns the Document proto
func (e *Engine) ProcessDocument(ctx context.Context, content []byte, mimeType string) (*documentaipb.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	client, err := e.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	req := &documentaipb.ProcessRequest{
		Name: e.config.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	if resp.GetDocument() == nil {
		return nil, fmt.Errorf("document AI returned an empty response")
	}
	return resp.GetDocument(), nil
}

// Recognize runs the processor on the image
func (e *Engine) Recognize(ctx context.Context, img *imagefile.Image) (*ocr.Result, error) {
	doc, err := e.ProcessDocument(ctx, img.Data, img.MIMEType())
	if err != nil {
		return nil, err
	}

	if e.dump != nil {
		raw, err := ToJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode Document AI response: %w", err)
		}
		fmt.Fprintln(e.dump, raw)
	}

	return ResultFromDocument(doc), nil
}
