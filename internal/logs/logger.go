package logs

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	TRACE Level = "TRACE"
	DEBUG Level = "DEBUG"
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
)

// levelPriority defines the priority of each log level
// higher value= more severe
var levelPriority = map[Level]int{
	TRACE: 0,
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

var consoleLevel = map[Level]zerolog.Level{
	TRACE: zerolog.TraceLevel,
	DEBUG: zerolog.DebugLevel,
	INFO:  zerolog.InfoLevel,
	WARN:  zerolog.WarnLevel,
	ERROR: zerolog.ErrorLevel,
}

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelPriority[level]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// UnmarshalText reads a level name from configuration.
func (l *Level) UnmarshalText(text []byte) error {
	level, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

type Entry struct {
	TimeStamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

type Logger struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	level   Level
	console *zerolog.Logger
}

// level: minimum log level to record(e.g., TRACE, DEBUG, INFO, WARN, ERROR)
//
// maxsize:maximum number of log entries kept in memory
func NewLogger(maxSize int, level Level) *Logger {
	return &Logger{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		level:   level,
	}
}

// SetOutput mirrors every recorded entry to w as a zerolog console line.
// A nil writer turns mirroring off.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		l.console = nil
		return
	}
	console := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})
	l.console = &console
}

// Enabled reports whether entries at level would be recorded.
func (l *Logger) Enabled(level Level) bool {
	return levelPriority[level] >= levelPriority[l.level]
}

// log is the internal logging function
// it applies level filtering and ring buffer behavior
func (l *Logger) log(level Level, msg string) {
	//filter logs below the current level
	if !l.Enabled(level) {
		return
	}

	entry := Entry{
		TimeStamp: time.Now(),
		Level:     level,
		Message:   msg,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxSize > 0 {
		if len(l.entries) >= l.maxSize {
			//remove oldest entry(ring behavior)
			l.entries = l.entries[1:]
		}
		l.entries = append(l.entries, entry)
	}

	if l.console != nil {
		// Log() carries no level of its own, so zerolog's global level
		// cannot drop entries that already passed ours.
		l.console.Log().
			Time(zerolog.TimestampFieldName, entry.TimeStamp).
			Str(zerolog.LevelFieldName, consoleLevel[level].String()).
			Msg(msg)
	}
}

func (l *Logger) Debug(msg string) {
	l.log(DEBUG, msg)
}

func (l *Logger) Info(msg string) {
	l.log(INFO, msg)
}

func (l *Logger) Error(msg string) {
	l.log(ERROR, msg)
}

// Tracef formats only when TRACE is enabled; refresh cycles call it on
// every event.
func (l *Logger) Tracef(format string, args ...any) {
	if l.Enabled(TRACE) {
		l.log(TRACE, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Enabled(DEBUG) {
		l.log(DEBUG, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.log(INFO, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(WARN, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log(ERROR, fmt.Sprintf(format, args...))
}

func (l *Logger) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 {
		return []Entry{}
	}
	if n > len(l.entries) {
		out := make([]Entry, len(l.entries))
		copy(out, l.entries)
		return out
	}

	start := len(l.entries) - n
	out := make([]Entry, n)
	copy(out, l.entries[start:])
	return out
}
