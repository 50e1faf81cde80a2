package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/eastcoast-online/envcheck/test"
)

func TestConfigToSlogLevel(t *testing.T) {
	tests := []struct {
		in   int
		want slog.Level
	}{
		{0, slog.LevelWarn},
		{3, slog.LevelError},
		{4, slog.LevelWarn},
		{6, slog.LevelInfo},
		{7, slog.LevelDebug},
	}
	for _, tt := range tests {
		test.AssertEquals(t, configToSlogLevel(tt.in), tt.want)
	}
}

func TestNewWritesChecksummedLines(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{StderrLevel: 6, SyslogLevel: -1, TextFormat: true}, &buf)
	test.AssertNotError(t, err, "New failed")

	ctx := NewContext(context.Background(), logger)
	Info(ctx, "probe complete", slog.String("url", "https://example.com"))
	Debug(ctx, "not shown")

	line := strings.TrimSuffix(buf.String(), "\n")
	test.AssertEquals(t, strings.Count(line, "\n"), 0)
	checksum, rest, ok := strings.Cut(line, " ")
	test.Assert(t, ok, "line has no checksum prefix")
	test.AssertEquals(t, checksum, LogLineChecksum(rest+"\n"))
	test.AssertContains(t, rest, `msg="probe complete"`)
	test.AssertContains(t, rest, "url=https://example.com")
}

func TestNewDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{SyslogLevel: -1}, &buf)
	test.AssertNotError(t, err, "New failed")

	ctx := NewContext(context.Background(), logger)
	Info(ctx, "quiet")
	test.AssertEquals(t, buf.Len(), 0)

	Warn(ctx, "loud")
	test.AssertContains(t, buf.String(), `"msg":"loud"`)
}

func TestNewNoOutputs(t *testing.T) {
	_, err := New(Config{StderrLevel: -1, SyslogLevel: -1}, &bytes.Buffer{})
	test.AssertError(t, err, "New should refuse a config with no outputs")
}

func TestFanout(t *testing.T) {
	var quiet, loud bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&loud, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	logger := slog.New(h).With("env", "dev")
	logger.Info("hello")

	test.AssertEquals(t, quiet.Len(), 0)
	test.AssertContains(t, loud.String(), "env=dev")
	test.Assert(t, h.Enabled(context.Background(), slog.LevelDebug), "fanout should be enabled for debug")
}

func TestContextWith(t *testing.T) {
	logger, mock := NewMock()
	ctx := NewContext(context.Background(), logger)
	ctx = ContextWith(ctx, "env", "stage")

	Error(ctx, "check failed", errors.New("boom"), slog.String("url", "https://example.com"))

	msgs := mock.GetAllMatching(`^ERROR: check failed`)
	test.AssertEquals(t, len(msgs), 1)
	test.AssertEquals(t, msgs[0].Attrs["env"], "stage")
	test.AssertEquals(t, msgs[0].Attrs["error"], "boom")
	test.AssertEquals(t, msgs[0].Attrs["url"], "https://example.com")

	mock.Clear()
	test.AssertEquals(t, len(mock.GetAll()), 0)
}

func TestFromContextDefault(t *testing.T) {
	test.AssertEquals(t, FromContext(context.Background()), slog.Default())
}
