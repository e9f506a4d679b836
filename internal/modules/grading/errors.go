package grading

import (
	"errors"
	"fmt"
)

// Configuration problems block a run before any request is made.
var (
	ErrNotConfigured = errors.New("no enabled grading provider with an api key is configured")
	ErrNoDocuments   = errors.New("the pending list is empty")
	ErrRunInProgress = errors.New("a grading run is already in progress")
)

// PreprocessingError means a file could not be decoded or normalized.
type PreprocessingError struct {
	Path string
	Err  error
}

func (e *PreprocessingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("文件预处理失败: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("文件预处理失败: %v", e.Err)
}

func (e *PreprocessingError) Unwrap() error { return e.Err }

// TransportError covers network failures, HTTP error statuses and empty
// replies from the model endpoint.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("grading request failed (%s): %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("grading request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the model replied but not with the expected JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid grading reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
