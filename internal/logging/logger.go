package logging

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
)

type Logger struct {
	*slog.Logger
}

// BuildLogger writes JSON logs to w. Debug messages are only emitted when verbose is set.
func BuildLogger(w io.Writer, verbose bool) *Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
	return &logger
}

// BuildLoggerFromCtx derives a request scoped logger from base.
func BuildLoggerFromCtx(base *Logger, ctx *gin.Context) *Logger {
	return base.With("path", ctx.Request.URL.Path, "client_ip", ctx.ClientIP())
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func (l *Logger) WithError(err error) *Logger {
	modifiedLogger := Logger{Logger: l.Logger.With("error", err.Error())}
	return &modifiedLogger
}
