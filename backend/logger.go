package backend

import (
	"sync"
	"time"

	"github.com/harborview/app/backend/internal/config"
)

// LogLevel is the severity of a log entry.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is a single captured log line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
}

// Logger keeps a bounded in-memory log the diagnostics view reads from.
type Logger struct {
	mu      sync.RWMutex
	entries []LogEntry
	maxSize int
	onEntry func(LogEntry)
}

// NewLogger creates a logger holding at most maxSize entries.
func NewLogger(maxSize int) *Logger {
	if maxSize <= 0 {
		maxSize = config.LoggerMaxEntries
	}
	return &Logger{
		entries: make([]LogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// SetOnEntry registers a callback invoked for every appended entry. The
// rendering layer uses it to refresh the diagnostics drawer.
func (l *Logger) SetOnEntry(fn func(LogEntry)) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.onEntry = fn
	l.mu.Unlock()
}

// Log appends an entry, evicting the oldest entries past the cap.
func (l *Logger) Log(level LogLevel, message string, source ...string) {
	if l == nil {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   message,
	}
	if len(source) > 0 {
		entry.Source = source[0]
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxSize {
		// Copy into a fresh buffer so capacity cannot grow without bound.
		trimmed := make([]LogEntry, l.maxSize)
		copy(trimmed, l.entries[len(l.entries)-l.maxSize:])
		l.entries = trimmed
	}
	notify := l.onEntry
	l.mu.Unlock()

	if notify != nil {
		notify(entry)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, source ...string) {
	l.Log(LogLevelDebug, message, source...)
}

// Info logs an info message.
func (l *Logger) Info(message string, source ...string) {
	l.Log(LogLevelInfo, message, source...)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, source ...string) {
	l.Log(LogLevelWarn, message, source...)
}

// Error logs an error message.
func (l *Logger) Error(message string, source ...string) {
	l.Log(LogLevelError, message, source...)
}

// Entries returns a copy of the captured entries, oldest first.
func (l *Logger) Entries() []LogEntry {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear discards all captured entries.
func (l *Logger) Clear() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.entries = l.entries[:0]
	l.mu.Unlock()
}
