package telemetry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_ExportsSpansOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		ServiceVersion: "test",
		Enabled:        true,
		Writer:         &buf,
	})
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "suggest.autocomplete")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), `"Name":"suggest.autocomplete"`)
	require.Contains(t, buf.String(), "animeshelf")
}

func TestInit_WritesTraceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "traces.jsonl")
	shutdown, err := Init(context.Background(), Config{Enabled: true, File: path})
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "catalog.top")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "catalog.top")
}

func TestInit_DisabledRecordsNothing(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := Tracer().Start(context.Background(), "ignored")
	defer span.End()
	require.False(t, span.IsRecording())
	require.False(t, span.SpanContext().IsSampled())
}
