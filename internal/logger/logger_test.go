//go:build !integration

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		pretty   bool
		expected zerolog.Level
	}{
		{name: "debug level", level: "debug", expected: zerolog.DebugLevel},
		{name: "info level", level: "info", expected: zerolog.InfoLevel},
		{name: "warn level", level: "warn", expected: zerolog.WarnLevel},
		{name: "error level", level: "error", expected: zerolog.ErrorLevel},
		{name: "upper case", level: " WARN ", expected: zerolog.WarnLevel},
		{name: "invalid level defaults to info", level: "invalid", expected: zerolog.InfoLevel},
		{name: "empty level defaults to info", level: "", expected: zerolog.InfoLevel},
		{name: "pretty output", level: "info", pretty: true, expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.level, tt.pretty)
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestInitWithWriter_AddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", false, &buf)

	l := Logger()
	l.Info().Msg("Packing session opened")

	line := decodeLine(t, &buf)
	assert.Equal(t, ServiceName, line["service"])
	assert.Equal(t, "Packing session opened", line["message"])
}

func TestForOrder(t *testing.T) {
	tests := []struct {
		name       string
		operatorID string
		wantOp     bool
	}{
		{name: "with operator", operatorID: "op-7", wantOp: true},
		{name: "without operator", operatorID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitWithWriter("info", false, &buf)

			l := ForOrder("SO-1001", tt.operatorID)
			l.Info().Msg("Draft saved")

			line := decodeLine(t, &buf)
			assert.Equal(t, "SO-1001", line["order_id"])
			_, hasOp := line["operator_id"]
			assert.Equal(t, tt.wantOp, hasOp)
		})
	}
}
