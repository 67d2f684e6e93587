package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"ERROR", slog.LevelError},
		{"CRITICAL", slog.LevelError},
		{"WARNING", slog.LevelWarn},
		{"", slog.LevelWarn},
		{"bogus", slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "input %q", tt.in)
	}
}

func TestNewImplementsInterface(t *testing.T) {
	var _ Interface = New()
	var _ Interface = NewWithLevel(slog.LevelDebug)
}
