// Package server is the HTTP front end: an upload form plus a small JSON API
// around the extraction pipeline.
//
//	GET  /         upload form
//	POST /extract  multipart "image", "mode" (flat|page), "llm"; ?preview=1 renders HTML
//	POST /pdf      multipart "image"; searchable PDF
//	GET  /healthz  liveness
//
// Every response carries an X-Request-ID header.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrlayout/pkg/extractor"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Options configures the HTTP server
type Options struct {
	MaxUploadBytes int64
	RequestTimeout time.Duration // 0 disables the per-request deadline
	AllowedFormats []string      // advertised in the form's accept attribute
}

// Server serves the upload UI and API
type Server struct {
	extractor *extractor.Extractor
	options   Options
	log       *logrus.Entry
	handler   http.Handler
}

type loggerKey struct{}

// New creates a server around ex
func New(ex *extractor.Extractor, options Options, log *logrus.Entry) *Server {
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = 10 << 20
	}
	s := &Server{extractor: ex, options: options, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /pdf", s.handlePDF)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.handler = s.withRequestID(mux)
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("Listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID tags the response and every log line of the request with a fresh id
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		logger := s.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), loggerKey{}, logger)))

		logger.WithFields(logrus.Fields{
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("Handled request")
	})
}

func requestLogger(r *http.Request) *logrus.Entry {
	if l, ok := r.Context().Value(loggerKey{}).(*logrus.Entry); ok {
		return l
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// accept returns the file input accept attribute for the allowed formats
func (s *Server) accept() string {
	if len(s.options.AllowedFormats) == 0 {
		return "image/*"
	}
	exts := make([]string, 0, len(s.options.AllowedFormats))
	for _, f := range s.options.AllowedFormats {
		f = strings.ToLower(strings.TrimPrefix(f, "."))
		exts = append(exts, "."+f)
		if f == "jpeg" {
			exts = append(exts, ".jpg")
		}
	}
	return strings.Join(exts, ",")
}

// statusFor maps pipeline failures to HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extractor.ErrInvalidImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extractor.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, extractor.ErrOCRFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
