package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestSlogLoggerLevels(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelWarn, time.UTC)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown", String("reason", "rms"))
	log.Error("also shown", Error(errors.New("boom")))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "rms", entries[0]["reason"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestModuleScopingAndFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelDebug, time.UTC).Module("association").Module("merge")
	log = log.With(Int64("dataset_id", 4))

	log.Info("merged", Int("associations", 3), Float64("distance", 1.23456))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "association.merge", entries[0]["module"])
	assert.InDelta(t, 4, entries[0]["dataset_id"], 0)
	assert.InDelta(t, 3, entries[0]["associations"], 0)
	assert.InDelta(t, 1.235, entries[0]["distance"], 1e-9)
}

func TestNonFiniteFloatField(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelInfo, time.UTC)
	log.Warn("dropped", Float64("f_peak_err", math.Inf(1)))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "+Inf", entries[0]["f_peak_err"])
}

func TestWithContextTraceID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelInfo, time.UTC)

	ctx := WithTraceID(context.Background(), "abc-123")
	log.WithContext(ctx).Info("with trace")
	log.WithContext(context.Background()).Info("without trace")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestTextHandlerFormat(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := newTextHandler(buf, traceLevelValue, time.UTC)
	log := &moduleLogger{module: "ingest", logger: slog.New(h), level: traceLevelValue, timezone: time.UTC}

	log.Trace("sql query", String("sql", "SELECT 1"))
	log.Info("inserted", Int("count", 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TRACE [ingest] sql query sql=\"SELECT 1\"")
	assert.Contains(t, lines[1], "INFO  [ingest] inserted count=2")
}

func TestCentralLoggerModuleLevels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "catalog.log")
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "warn",
		Timezone:     "UTC",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput:   &FileOutput{Enabled: true, Path: path, Level: "debug"},
		ModuleLevels: map[string]string{"association": "debug"},
	})
	require.NoError(t, err)

	cl.Module("association").Module("merge").Debug("inherited level")
	cl.Module("ingest").Info("suppressed by default level")
	cl.Module("ingest").Warn("default level")
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries := decodeLines(t, bytes.NewBuffer(data))
	require.Len(t, entries, 2)
	assert.Equal(t, "association.merge", entries[0]["module"])
	assert.Equal(t, "default level", entries[1]["msg"])
}

func TestCentralLoggerInvalidTimezone(t *testing.T) {
	t.Parallel()

	_, err := NewCentralLogger(&LoggingConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)
}

type recordingObserver struct {
	sqls []string
	errs []error
}

func (r *recordingObserver) ObserveQuery(sql string, _ int64, _ time.Duration, err error) {
	r.sqls = append(r.sqls, sql)
	r.errs = append(r.errs, err)
}

func TestGormAdapterObserver(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	obs := &recordingObserver{}
	adapter := NewGormLoggerAdapter(NewSlogLogger(buf, LogLevelWarn, time.UTC), 0, obs)

	adapter.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT * FROM image", 1 }, nil)
	adapter.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT * FROM image", 0 }, gorm.ErrRecordNotFound)
	adapter.Trace(context.Background(), time.Now(), func() (string, int64) { return "INSERT INTO rejection", 0 }, errors.New("database is locked"))

	require.Len(t, obs.sqls, 3)
	assert.NoError(t, obs.errs[1], "not-found is not a storage failure")
	assert.Error(t, obs.errs[2])

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "query error", entries[0]["msg"])
}
