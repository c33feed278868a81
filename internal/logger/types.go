package logger

import (
	"io"
	"strings"
)

// Logger 統一日誌介面
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	Shutdown() error // 優雅關閉
}

// Level 日誌級別
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a string into a Level (case-insensitive)
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

// Format 日誌格式
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// String returns the string representation of the format
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat parses a string into a Format (case-insensitive)
func ParseFormat(s string) Format {
	if strings.ToLower(s) == "json" {
		return FormatJSON
	}
	return FormatText
}

// Config 日誌配置
type Config struct {
	Level  Level
	Format Format

	// Writer 主要輸出，nil 時使用 os.Stderr（stdout 保留給摘要表格）
	Writer io.Writer

	// Quiet 關閉主要輸出，只寫入檔案
	Quiet bool

	File FileConfig
}

// FileConfig 檔案日誌配置
type FileConfig struct {
	Path       string // 空字串表示不寫檔
	MaxSizeMB  int    // 單位：MB
	MaxAgeDays int    // 保留天數
	MaxBackups int    // 保留備份數
	Compress   bool   // 是否壓縮
}

// Enabled returns true when a log file path is configured
func (f FileConfig) Enabled() bool {
	return f.Path != ""
}
