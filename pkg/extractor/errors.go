package extractor

import (
	"errors"
	"fmt"
)

// Code classifies pipeline failures
type Code string

const (
	CodeInvalidImage       Code = "INVALID_IMAGE"
	CodeOCRFailed          Code = "OCR_FAILED"
	CodeMalformedLLMOutput Code = "MALFORMED_LLM_OUTPUT"
	CodeBadRequest         Code = "BAD_REQUEST"
)

// Sentinels for errors.Is; they match any *Error with the same code.
var (
	ErrInvalidImage       error = &Error{Code: CodeInvalidImage, Message: "invalid image"}
	ErrOCRFailed          error = &Error{Code: CodeOCRFailed, Message: "OCR failed"}
	ErrMalformedLLMOutput error = &Error{Code: CodeMalformedLLMOutput, Message: "malformed LLM output"}
	ErrBadRequest         error = &Error{Code: CodeBadRequest, Message: "bad request"}
)

// Error is a classified pipeline failure. All of them end the request.
type Error struct {
	Code    Code
	Message string
	Source  string // uploaded file name
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Source)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on the code alone
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func NewInvalidImageError(source string, cause error) *Error {
	return &Error{
		Code:    CodeInvalidImage,
		Message: "the uploaded file is not a valid image",
		Source:  source,
		Cause:   cause,
	}
}

func NewOCRFailedError(source, engine string, cause error) *Error {
	return &Error{
		Code:    CodeOCRFailed,
		Message: fmt.Sprintf("OCR failed on engine %s", engine),
		Source:  source,
		Cause:   cause,
	}
}

func NewMalformedLLMOutputError(source string, cause error) *Error {
	return &Error{
		Code:    CodeMalformedLLMOutput,
		Message: "the language model did not return a valid layout",
		Source:  source,
		Cause:   cause,
	}
}

func NewBadRequestError(format string, args ...interface{}) *Error {
	return &Error{
		Code:    CodeBadRequest,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
