package log

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// Mock is a slog.Handler which stores every record it receives in memory for
// inspection by tests.
type Mock struct {
	mu     *sync.Mutex
	logged *[]*LogMessage
	attrs  []slog.Attr
}

// LogMessage is a log entry that has been sent to a Mock.
type LogMessage struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

func (lm *LogMessage) String() string {
	var b strings.Builder
	b.WriteString(lm.Level.String())
	b.WriteString(": ")
	b.WriteString(lm.Message)
	for _, k := range sortedKeys(lm.Attrs) {
		fmt.Fprintf(&b, " %s=%s", k, lm.Attrs[k])
	}
	return b.String()
}

// NewMock returns a logger backed by a new Mock, which records every level.
func NewMock() (*slog.Logger, *Mock) {
	m := &Mock{mu: &sync.Mutex{}, logged: &[]*LogMessage{}}
	return slog.New(m), m
}

func (m *Mock) Enabled(context.Context, slog.Level) bool {
	return true
}

func (m *Mock) Handle(_ context.Context, r slog.Record) error {
	msg := &LogMessage{Level: r.Level, Message: r.Message, Attrs: map[string]string{}}
	for _, a := range m.attrs {
		msg.Attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		msg.Attrs[a.Key] = a.Value.String()
		return true
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	*m.logged = append(*m.logged, msg)
	return nil
}

func (m *Mock) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Mock{
		mu:     m.mu,
		logged: m.logged,
		attrs:  append(append([]slog.Attr{}, m.attrs...), attrs...),
	}
}

// WithGroup is a no-op; the Mock flattens groups.
func (m *Mock) WithGroup(string) slog.Handler {
	return m
}

// GetAll returns all LogMessages logged since the last call to Clear.
func (m *Mock) GetAll() []*LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*LogMessage(nil), *m.logged...)
}

// GetAllMatching returns all LogMessages logged since the last Clear whose
// String form matches the given regexp.
func (m *Mock) GetAllMatching(reString string) []*LogMessage {
	re := regexp.MustCompile(reString)
	var matches []*LogMessage
	for _, lm := range m.GetAll() {
		if re.MatchString(lm.String()) {
			matches = append(matches, lm)
		}
	}
	return matches
}

// Clear resets the log buffer.
func (m *Mock) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.logged = []*LogMessage{}
}
