package main

import (
	"fmt"
	"testing"

	"cstats/internal/errors"
)

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "fatal corpus error",
			err:  errors.New(errors.CorpusUnreadable, "cannot read corpus directory", nil),
			want: 2,
		},
		{
			name: "empty corpus is recoverable",
			err:  errors.New(errors.EmptyMetric, "no records to aggregate", nil),
			want: 1,
		},
		{
			name: "uncoded error is fatal",
			err:  fmt.Errorf("something broke"),
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitStatus(tt.err); got != tt.want {
				t.Errorf("exitStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
