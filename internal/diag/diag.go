// Package diag renders user-facing diagnostics.
//
// Diagnostics are the handful of messages a user of the wrapper is meant to
// read: a missing eslint install, a skipped ignore-config flag, a child that
// was killed. They always go to stderr, coloured the way the terminal allows.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a diagnostic.
type Level int

const (
	LevelWarn Level = iota
	LevelError
)

// String returns a human-readable name for the level.
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Reporter receives diagnostics.
type Reporter interface {
	Warn(msg string)
	Error(msg string)
}

var (
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
)

// Console writes coloured diagnostics to a writer.
// Styles are built on the first diagnostic and reused afterwards, so a run
// that never reports anything never probes the terminal.
type Console struct {
	w io.Writer

	once       sync.Once
	warnStyle  lipgloss.Style
	errorStyle lipgloss.Style

	mu sync.Mutex
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

var defaultConsole = sync.OnceValue(func() *Console {
	return NewConsole(os.Stderr)
})

// Default returns the process-wide console writing to stderr.
func Default() *Console {
	return defaultConsole()
}

// Warn writes msg in the warning colour.
func (c *Console) Warn(msg string) {
	c.emit(LevelWarn, msg)
}

// Error writes msg in the error colour.
func (c *Console) Error(msg string) {
	c.emit(LevelError, msg)
}

func (c *Console) emit(level Level, msg string) {
	c.once.Do(c.initStyles)

	style := c.warnStyle
	if level == LevelError {
		style = c.errorStyle
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, style.Render(msg))
}

// initStyles detects the colour profile of the console's writer.
// Non-terminal writers get plain text.
func (c *Console) initStyles() {
	r := lipgloss.NewRenderer(c.w)
	c.warnStyle = r.NewStyle().Foreground(colorWarning)
	c.errorStyle = r.NewStyle().Foreground(colorError)
}

// Entry is one recorded diagnostic.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is a Reporter that keeps every diagnostic in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Warn records a warning.
func (r *Recorder) Warn(msg string) {
	r.add(LevelWarn, msg)
}

// Error records an error.
func (r *Recorder) Error(msg string) {
	r.add(LevelError, msg)
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

// Entries returns a copy of the recorded diagnostics in order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many diagnostics were recorded at level.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
