package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/shelf/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []logger.ErrorEntry
	}{
		{
			name: "standard error",
			err:  errors.New("connection reset"),
			want: []logger.ErrorEntry{{Message: "connection reset"}},
		},
		{
			name: "sentinel with metadata",
			err:  zerr.With(zerr.With(zerr.New("not found"), "table", "orders"), "id", "o9"),
			want: []logger.ErrorEntry{
				{Message: "not found", Metadata: map[string]any{"table": "orders", "id": "o9"}},
			},
		},
		{
			name: "wrapped chain",
			err:  zerr.Wrap(zerr.Wrap(errors.New("disk full"), "snapshot write failed"), "save failed"),
			want: []logger.ErrorEntry{
				{Message: "save failed", Metadata: map[string]any{}},
				{Message: "snapshot write failed", Metadata: map[string]any{}},
				{Message: "disk full"},
			},
		},
		{
			name: "metadata on a standard error folds into it",
			err:  zerr.With(errors.New("timeout"), "function", "orders:get"),
			want: []logger.ErrorEntry{
				{Message: "timeout", Metadata: map[string]any{"function": "orders:get"}},
			},
		},
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectErrorEntries(tt.err))
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single",
			entries: []logger.ErrorEntry{{Message: "boom"}},
			want:    "Error: boom",
		},
		{
			name:    "cause",
			entries: []logger.ErrorEntry{{Message: "outer"}, {Message: "inner"}},
			want:    "Error: outer\n\n  Caused by:\n    → inner",
		},
		{
			name: "sorted metadata",
			entries: []logger.ErrorEntry{
				{Message: "invalid step", Metadata: map[string]any{"step": "s1", "kind": "poke"}},
			},
			want: "Error: invalid step\n       kind: poke\n       step: s1",
		},
		{
			name: "metadata on cause",
			entries: []logger.ErrorEntry{
				{Message: "run failed"},
				{Message: "not found", Metadata: map[string]any{"id": "o9"}},
			},
			want: "Error: run failed\n\n  Caused by:\n    → not found\n      id: o9",
		},
		{
			name:    "multiline",
			entries: []logger.ErrorEntry{{Message: "yaml: errors:\n  line 3"}},
			want:    "Error: yaml: errors:\n         line 3",
		},
		{
			name:    "empty",
			entries: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
