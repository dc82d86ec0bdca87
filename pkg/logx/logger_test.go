package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger(format Format, buf *bytes.Buffer) *Logger {
	return NewLogger(&Config{
		Level:           LevelDebug,
		Format:          format,
		EnableTimestamp: false,
		Output:          buf,
	})
}

func TestConsoleFormat(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	log := newTestLogger(FormatConsole, &buf)

	log.WithFields(Fields{"b": 2, "a": 1}).Info("hello")
	r.Equal("[INFO] hello a=1 b=2\n", buf.String())

	buf.Reset()
	log.WithError(errors.New("boom")).Warn("careful")
	r.Equal("[WARN] careful\n  error: boom\n", buf.String())
}

func TestJSONFormat(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	log := newTestLogger(FormatJSON, &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	log.WithField("job_id", "j1").WithContext(ctx).Info("started")

	var got map[string]any
	r.NoError(json.Unmarshal(buf.Bytes(), &got))
	r.Equal("INFO", got["level"])
	r.Equal("started", got["message"])
	r.Equal("j1", got["job_id"])
	r.Equal("req-1", got["request_id"])
}

func TestLevelFiltering(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	log := newTestLogger(FormatConsole, &buf)
	log.SetLevel(LevelWarn)

	log.Info("dropped")
	r.Empty(buf.String())

	log.SetLevel(LevelOff)
	log.WithField("k", "v").Error("also dropped")
	r.Empty(buf.String())
}

func TestEntryIsImmutable(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	log := newTestLogger(FormatConsole, &buf)

	base := log.WithField("shared", true)
	base.WithField("only", "first").Info("one")
	base.Info("two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	r.Len(lines, 2)
	r.Contains(lines[0], "only=first")
	r.NotContains(lines[1], "only=first")
}

func TestParseLevel(t *testing.T) {
	r := require.New(t)
	r.Equal(LevelDebug, ParseLevel("debug"))
	r.Equal(LevelWarn, ParseLevel("WARNING"))
	r.Equal(LevelOff, ParseLevel("off"))
	r.Equal(LevelInfo, ParseLevel("nonsense"))
	r.Equal("UNKNOWN", Level(42).String())
}
