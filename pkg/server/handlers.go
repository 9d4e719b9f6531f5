package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/gardar/ocrlayout/pkg/extractor"
)

type pageData struct {
	Engine     string
	Accept     string
	LLMEnabled bool
	Error      string
	Result     *resultData
}

type resultData struct {
	FileName    string
	JSON        string
	DownloadURL template.URL
	Fallback    bool
}

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.page())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"engine": s.extractor.Engine(),
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	preview := r.URL.Query().Get("preview") != ""

	ctx, cancel := s.requestContext(r)
	defer cancel()

	req, err := s.readUpload(w, r)
	if err == nil {
		req.Mode, err = extractor.ParseMode(r.FormValue("mode"))
	}
	if err == nil {
		req.UseLLM = parseFlag(r.FormValue("llm"))
	}
	if err != nil {
		s.fail(w, r, err, preview)
		return
	}

	art, err := s.pipeline(r).Extract(ctx, req)
	if err != nil {
		s.fail(w, r, err, preview)
		return
	}

	if art.Fallback {
		w.Header().Set("X-Layout-Fallback", "true")
	}
	w.Header().Set("X-OCR-Engine", art.Engine)

	if preview {
		page := s.page()
		page.Result = &resultData{
			FileName:    art.FileName,
			JSON:        string(art.Data),
			DownloadURL: template.URL("data:application/json;base64," + base64.StdEncoding.EncodeToString(art.Data)),
			Fallback:    art.Fallback,
		}
		s.render(w, r, http.StatusOK, page)
		return
	}
	writeAttachment(w, art)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	req, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err, false)
		return
	}

	art, err := s.pipeline(r).SearchablePDF(ctx, req)
	if err != nil {
		s.fail(w, r, err, false)
		return
	}
	w.Header().Set("X-OCR-Engine", art.Engine)
	writeAttachment(w, art)
}

// pipeline returns the extractor logging with the request's fields
func (s *Server) pipeline(r *http.Request) *extractor.Extractor {
	return s.extractor.WithLogger(requestLogger(r))
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.options.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.options.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}

// readUpload reads the "image" form file within the upload limit
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (extractor.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.options.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.options.MaxUploadBytes); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return extractor.Request{}, fmt.Errorf("upload exceeds %d bytes: %w", s.options.MaxUploadBytes, err)
		}
		return extractor.Request{}, extractor.NewBadRequestError("expected a multipart form: %v", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return extractor.Request{}, extractor.NewBadRequestError("missing image file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return extractor.Request{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return extractor.Request{Name: header.Filename, Data: data}, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, preview bool) {
	status := statusFor(err)
	logger := requestLogger(r).WithError(err).WithField("status", status)
	if status >= 500 {
		logger.Error("Request failed")
	} else {
		logger.Warn("Request rejected")
	}

	message := userMessage(err, status)
	if preview {
		page := s.page()
		page.Error = message
		s.render(w, r, status, page)
		return
	}

	code := string(extractor.CodeOf(err))
	if code == "" {
		code = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{
		Error:     errorDetail{Code: code, Message: message},
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

// userMessage hides internal causes from clients
func userMessage(err error, status int) string {
	var pe *extractor.Error
	switch {
	case status == http.StatusRequestEntityTooLarge:
		return "The uploaded file is too large."
	case status == http.StatusGatewayTimeout:
		return "OCR did not finish in time."
	case errors.As(err, &pe) && pe.Code == extractor.CodeInvalidImage:
		return "The uploaded file is not a valid image. Please upload a PNG, JPG, or BMP file."
	case errors.As(err, &pe):
		return pe.Message
	default:
		return "Internal error."
	}
}

func (s *Server) page() pageData {
	return pageData{
		Engine:     s.extractor.Engine(),
		Accept:     s.accept(),
		LLMEnabled: s.extractor.LLMEnabled(),
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.ExecuteTemplate(w, "page", data); err != nil {
		requestLogger(r).WithError(err).Error("Template execution failed")
	}
}

func writeAttachment(w http.ResponseWriter, art *extractor.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

// parseFlag accepts checkbox and boolean spellings
func parseFlag(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
