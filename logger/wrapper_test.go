package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineHandler(t *testing.T) {
	var out, logs bytes.Buffer
	h := newLineHandler(&out, NewLoggerTo(&logs, "test"))

	for _, line := range []string{
		`{"level_name":"info","message":"tagging"}`,
		"",
		"plain text",
		"panic: runtime error: index out of range",
		"goroutine 1 [running]:",
		`{"level_name":"info","message":"after panic"}`,
	} {
		h.handle([]byte(line))
	}

	require.Equal(t, "{\"level_name\":\"info\",\"message\":\"tagging\"}\n", out.String())
	require.Equal(t,
		"panic: runtime error: index out of range\n"+
			"goroutine 1 [running]:\n"+
			"{\"level_name\":\"info\",\"message\":\"after panic\"}\n",
		h.panicLogs())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	require.Equal(t, "Got log line that is not JSON formatted: 'plain text'", entry["message"])
	require.Equal(t, "test", entry["component"])
}
