package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"log/syslog"

	"github.com/eastcoast-online/envcheck/core"
)

// Config defines where log output goes. Levels use the syslog numbering:
//
//	-1: suppress all output
//	0: default (4 for stderr, suppressed for syslog)
//	3: log errors
//	4: log warnings and above
//	6: log info and above
//	7: log debug and above
//
// Standard output is reserved for check results, so console logs are
// always written to stderr.
type Config struct {
	StderrLevel int `yaml:"stderrlevel" validate:"min=-1,max=7"`
	SyslogLevel int `yaml:"sysloglevel" validate:"min=-1,max=7"`
	// TextFormat causes logs to be output via slog's TextHandler instead of
	// the default JSONHandler.
	TextFormat bool `yaml:"textformat"`
}

func configToSlogLevel(l int) slog.Level {
	switch l {
	case 1, 2, 3:
		return slog.LevelError
	case 0, 4, 5:
		return slog.LevelWarn
	case 6:
		return slog.LevelInfo
	case 7:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func (c Config) handler(w io.Writer, level int) slog.Handler {
	opts := &slog.HandlerOptions{Level: configToSlogLevel(level)}
	if c.TextFormat {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// New returns a slog.Logger which writes checksummed log lines to stderr and,
// if enabled, to the local syslog daemon.
func New(conf Config, stderr io.Writer) (*slog.Logger, error) {
	var handlers []slog.Handler
	if conf.StderrLevel >= 0 {
		handlers = append(handlers, conf.handler(NewChecksumWriter(stderr), conf.StderrLevel))
	}

	if conf.SyslogLevel > 0 {
		syslogger, err := syslog.Dial("", "", syslog.LOG_INFO, core.Command())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to syslog: %w", err)
		}
		handlers = append(handlers, conf.handler(NewChecksumWriter(syslogger), conf.SyslogLevel))
	}

	switch len(handlers) {
	case 0:
		return nil, errors.New("either StderrLevel or SyslogLevel must be enabled")
	case 1:
		return slog.New(handlers[0]), nil
	default:
		return slog.New(fanout(handlers)), nil
	}
}

type sloggerContextKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, sloggerContextKey{}, logger)
}

// ContextWith returns a copy of ctx whose logger carries the given
// attributes.
func ContextWith(ctx context.Context, pairs ...any) context.Context {
	return NewContext(ctx, FromContext(ctx).With(pairs...))
}

// FromContext returns the logger stored in ctx, or slog.Default() if there is
// none.
func FromContext(ctx context.Context) *slog.Logger {
	slogger, ok := ctx.Value(sloggerContextKey{}).(*slog.Logger)
	if !ok || slogger == nil {
		return slog.Default()
	}
	return slogger
}

func Error(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	slogger := FromContext(ctx).With(slog.Any("error", err))
	slogger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	FromContext(ctx).LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	FromContext(ctx).LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
