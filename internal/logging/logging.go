// Package logging 配置全局结构化日志
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup 根据日志级别安装默认 slog 处理器，调试模式使用文本格式
func Setup(level string, debug bool) *slog.Logger {
	return SetupWriter(os.Stdout, level, debug)
}

// SetupWriter 同 Setup，输出到指定 writer
func SetupWriter(w io.Writer, level string, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel 解析日志级别，未知值回退到 info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
