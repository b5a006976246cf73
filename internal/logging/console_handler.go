package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler renders records for people reading a terminal:
//
//	2026-01-02 15:04:05 INFO mpls: playlist parsed chapters=12 path=/disc/00000.mpls
//
// The component attribute becomes the prefix instead of a field. Groups are
// flattened into dotted keys.
type consoleHandler struct {
	out       *lockedWriter
	level     *slog.LevelVar
	prefix    string
	fields    []field
	component string
	addSource bool
}

type field struct {
	key   string
	value slog.Value
}

// lockedWriter is shared by every handler derived from one logger so lines
// from concurrent goroutines never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(p)
	return err
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	component := h.component
	fields := append([]field(nil), h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		fields, component = h.collect(fields, component, h.prefix, attr)
		return true
	})

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteString(" " + levelLabel(record.Level) + " ")
	if component != "" {
		b.WriteString(component + ": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range fields {
		b.WriteString(" " + f.key + "=" + quoteIfNeeded(renderValue(f.value)))
	}
	b.WriteByte('\n')
	return h.out.write([]byte(b.String()))
}

// collect appends attr (and any nested group members) to fields, pulling out
// the first top-level component attribute.
func (h *consoleHandler) collect(fields []field, component, prefix string, attr slog.Attr) ([]field, string) {
	if attr.Equal(slog.Attr{}) {
		return fields, component
	}
	value := attr.Value.Resolve()
	key := attr.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if value.Kind() == slog.KindGroup {
		for _, member := range value.Group() {
			fields, component = h.collect(fields, component, key, member)
		}
		return fields, component
	}
	if key == FieldComponent {
		if component == "" {
			component = renderValue(value)
		}
		return fields, component
	}
	return append(fields, field{key: key, value: value}), component
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = append([]field(nil), h.fields...)
	for _, attr := range attrs {
		next.fields, next.component = h.collect(next.fields, next.component, h.prefix, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if next.prefix == "" {
		next.prefix = name
	} else {
		next.prefix += "." + name
	}
	return &next
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// quoteIfNeeded quotes empty values and values a key=value reader would
// split on.
func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
