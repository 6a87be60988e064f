package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level はログレベルを表す。値が大きいほど重大度が高い。
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// slogLevelFatal はslogに存在しないfatalレベルの割り当て値。
const slogLevelFatal = slog.LevelError + 4

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

// String はレベル名を小文字で返す。
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalText はJSON出力時にレベル名を文字列で出力する。
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLevel はレベル名を解析する。大文字小文字は区別しない。
func ParseLevel(s string) (Level, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == key {
			return level, true
		}
	}
	return LevelInfo, false
}

// slogLevel はslogのレベルに変換する。
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelFatal:
		return slogLevelFatal
	default:
		return slog.LevelInfo
	}
}

// levelFromSlog はslogのレベルを逆変換する。
func levelFromSlog(l slog.Level) Level {
	switch {
	case l >= slogLevelFatal:
		return LevelFatal
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}
