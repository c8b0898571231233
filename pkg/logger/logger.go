// Package logger builds the slog loggers used across linkpath.
//
// NewDefaultLogger returns a terminal-friendly logger: warnings are yellow,
// errors are red, and messages reporting a found path or a cache hit are
// green. Colors are only emitted when the output is a terminal.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// highlighted messages are printed in green at info level.
var highlighted = []string{
	"path found",
	"cache hit",
	"loaded cached",
}

// Options configures NewLogger.
type Options struct {
	Level  slog.Level
	Format string // "text", "json" or "color"
	Output io.Writer
}

// NewDefaultLogger creates a colored logger writing to stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(Options{Level: level, Format: "color", Output: os.Stderr})
}

// NewLogger creates a logger for the given format. Unknown formats fall back
// to the colored handler.
func NewLogger(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	switch strings.ToLower(opts.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	case "text":
		return slog.New(slog.NewTextHandler(out, handlerOpts))
	default:
		return slog.New(NewColorHandler(out, handlerOpts))
	}
}

// NoopLogger returns a logger that discards everything.
func NoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// ParseLevel maps a config string to a slog level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ColorHandler is a slog.Handler printing one line per record.
type ColorHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	opts   slog.HandlerOptions
	color  bool
	attrs  []slog.Attr
	groups []string
}

// NewColorHandler creates a ColorHandler. Color is enabled only when out is a
// terminal.
func NewColorHandler(out io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{mu: &sync.Mutex{}, out: out}
	if opts != nil {
		h.opts = *opts
	}
	if f, ok := out.(*os.File); ok {
		h.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return h
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(h.paint(colorGray, r.Time.Format(time.TimeOnly)))
		b.WriteByte(' ')
	}
	b.WriteString(fmt.Sprintf("%-5s ", r.Level.String()))
	b.WriteString(h.paint(h.messageColor(r), r.Message))

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *ColorHandler) messageColor(r slog.Record) string {
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	}
	msg := strings.ToLower(r.Message)
	for _, p := range highlighted {
		if strings.Contains(msg, p) {
			return colorGreen
		}
	}
	return ""
}

func (h *ColorHandler) paint(color, s string) string {
	if !h.color || color == "" {
		return s
	}
	return color + s + colorReset
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(fmt.Sprintf("%v", a.Value.Any()))
}
