package log

import (
	"context"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLogger writes to a rotating log file. Same interface as the console
// logger so entry points can swap sinks without touching callers.
type FileLogger struct {
	logger *log.Logger
}

func NewFileLogger(path string) (*FileLogger, error) {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	return &FileLogger{
		logger: log.New(writer, "", log.LstdFlags),
	}, nil
}

func (l *FileLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[INFO] "+format, args...)
}

func (l *FileLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[ALERT] "+format, args...)
}

func (l *FileLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[ERROR] "+format, args...)
}

func (l *FileLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[WARN] "+format, args...)
}

func (l *FileLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[DEBUG] "+format, args...)
}

func (l *FileLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[CRITICAL] "+format, args...)
}

func (l *FileLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[EMERGENCY] "+format, args...)
}

func (l *FileLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.logger.Printf("[NOTICE] "+format, args...)
}
