package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStatsError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      CorpusUnreadable,
			message:   "cannot read corpus directory",
			cause:     errors.New("permission denied"),
			wantParts: []string{"CORPUS_UNREADABLE", "cannot read corpus directory", "permission denied"},
		},
		{
			name:      "without cause",
			code:      EmptyMetric,
			message:   "no qualifying records for complexity_score",
			cause:     nil,
			wantParts: []string{"EMPTY_METRIC", "no qualifying records for complexity_score"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.cause)
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestStatsError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(InternalError, "something went wrong", cause)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}

	errNoCause := New(RecordParse, "bad record", nil)
	if errNoCause.Unwrap() != nil {
		t.Errorf("Unwrap() on error without cause should return nil")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"corpus unreadable is fatal", New(CorpusUnreadable, "x", nil), true},
		{"config invalid is fatal", New(ConfigInvalid, "x", nil), true},
		{"record parse is recovered", New(RecordParse, "x", nil), false},
		{"empty metric is recovered", New(EmptyMetric, "x", nil), false},
		{"layout overflow is recovered", New(LayoutOverflow, "x", nil), false},
		{"wrapped fatal error stays fatal", fmt.Errorf("run failed: %w", New(CorpusUnreadable, "x", nil)), true},
		{"plain error is fatal", errors.New("unknown"), true},
		{"nil is not fatal", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(LayoutOverflow, "too many nodes", nil)); got != LayoutOverflow {
		t.Errorf("CodeOf() = %v, want %v", got, LayoutOverflow)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
}
