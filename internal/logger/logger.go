package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

const maxBufferSize = 1000

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
	LevelFile  Level = "FILE"
	LevelHTTP  Level = "HTTP"
)

var instance = newLogger()

type LogEntry struct {
	Timestamp time.Time
	Level     Level
	Message   string
}

func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Level, e.Message)
}

// Logger keeps the last maxBufferSize entries in memory for the logs view and
// mirrors them to a file when one is configured.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	out    *log.Logger
	buffer []LogEntry
}

func newLogger() *Logger {
	return &Logger{buffer: make([]LogEntry, 0, maxBufferSize)}
}

func get() *Logger {
	return instance
}

// Init opens logPath for appending. An empty path keeps logging in memory only.
func Init(logPath string) error {
	l := get()
	if logPath == "" {
		return nil
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = file
	l.out = log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	for _, entry := range l.buffer {
		l.out.Println(entry.String())
	}
	return nil
}

func Close() error {
	l := get()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.out = nil
	return err
}

func (l *Logger) write(level Level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	}

	if len(l.buffer) >= maxBufferSize {
		l.buffer = l.buffer[1:]
	}
	l.buffer = append(l.buffer, entry)

	if l.out != nil {
		l.out.Println(entry.String())
	}
}

func GetLogs() []LogEntry {
	l := get()
	l.mu.Lock()
	defer l.mu.Unlock()

	logs := make([]LogEntry, len(l.buffer))
	copy(logs, l.buffer)
	return logs
}

// Reset drops buffered entries. The log file, if any, is left untouched.
func Reset() {
	l := get()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buffer = l.buffer[:0]
}

func LogFileOpen(path string) {
	get().write(LevelFile, "open "+path)
}

func LogFileWrite(path string) {
	get().write(LevelFile, "write "+path)
}

func LogError(operation, target string, err error) {
	get().write(LevelError, fmt.Sprintf("%s: %s - %v", operation, target, err))
}

func LogHTTP(message string, args ...any) {
	get().write(LevelHTTP, fmt.Sprintf(message, args...))
}

func Log(message string, args ...any) {
	get().write(LevelInfo, fmt.Sprintf(message, args...))
}
