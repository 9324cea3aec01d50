package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// CorpusUnreadable indicates the corpus directory cannot be read (fatal)
	CorpusUnreadable ErrorCode = "CORPUS_UNREADABLE"
	// RecordParse indicates a single malformed record (recovered by skipping)
	RecordParse ErrorCode = "RECORD_PARSE"
	// EmptyMetric indicates a metric with zero qualifying records
	// (recovered by emitting a placeholder result)
	EmptyMetric ErrorCode = "EMPTY_METRIC"
	// LayoutOverflow indicates treemap node count exceeds renderable space
	// (recovered by dropping lowest-ranked children)
	LayoutOverflow ErrorCode = "LAYOUT_OVERFLOW"
	// ConfigInvalid indicates a configuration validation failure
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ArchiveUnavailable indicates the run archive database cannot be opened
	ArchiveUnavailable ErrorCode = "ARCHIVE_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// StatsError represents a cstats error with a stable code and message
type StatsError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new StatsError
func New(code ErrorCode, message string, cause error) *StatsError {
	return &StatsError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *StatsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *StatsError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *StatsError) WithDetails(details interface{}) *StatsError {
	e.Details = details
	return e
}

// fatalCodes lists codes that must abort the whole run. Everything else is
// recovered at the component boundary that raised it.
var fatalCodes = map[ErrorCode]bool{
	CorpusUnreadable:   true,
	ConfigInvalid:      true,
	ArchiveUnavailable: true,
	InternalError:      true,
}

// IsFatal reports whether err carries a code that aborts the run.
// Non-StatsError values are treated as fatal.
func IsFatal(err error) bool {
	var se *StatsError
	if errors.As(err, &se) {
		return fatalCodes[se.Code]
	}
	return err != nil
}

// CodeOf extracts the error code from err, or InternalError if err is not
// a StatsError.
func CodeOf(err error) ErrorCode {
	var se *StatsError
	if errors.As(err, &se) {
		return se.Code
	}
	return InternalError
}
