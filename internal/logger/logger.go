// Package logger はアプリケーション全体で使用する構造化ロガーを提供する。
//
// レベル判定、コンソール出力（テキスト/JSON）、リモートエンドポイントへの
// 非同期送信をまとめて扱う。コンソール出力はslogのハンドラーで行う。
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config はロガーの設定を保持する。
type Config struct {
	Level          Level
	Environment    string
	Version        string
	EnableConsole  bool
	EnableJSON     bool
	EnableRemote   bool
	RemoteEndpoint string
}

// DefaultConfig はデフォルト設定を返す。
// JSON出力は本番環境でのみ有効にする。
func DefaultConfig() Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "1.0.0"
	}
	return Config{
		Level:         LevelInfo,
		Environment:   env,
		Version:       version,
		EnableConsole: true,
		EnableJSON:    env == "production",
	}
}

// Logger はレベル付き構造化ロガー。複数goroutineから同時に使用できる。
type Logger struct {
	mu      sync.RWMutex
	cfg     Config
	console slog.Handler

	out    io.Writer
	remote *remoteSink
	now    func() time.Time
}

// New は出力先wと設定cfgでLoggerを生成する。wがnilの場合はos.Stdoutを使用する。
func New(w io.Writer, cfg Config) *Logger {
	if w == nil {
		w = os.Stdout
	}
	l := &Logger{
		cfg:    cfg,
		out:    w,
		remote: newRemoteSink(),
		now:    time.Now,
	}
	l.console = newConsoleHandler(w, cfg.EnableJSON)
	return l
}

// Config は現在の設定のコピーを返す。
func (l *Logger) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// UpdateConfig は設定を変更する。変更は以降の呼び出しにのみ反映される。
func (l *Logger) UpdateConfig(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prevJSON := l.cfg.EnableJSON
	fn(&l.cfg)
	if l.cfg.EnableJSON != prevJSON {
		l.console = newConsoleHandler(l.out, l.cfg.EnableJSON)
	}
}

// Flush はリモート送信中のログがすべて完了するまで待つ。
func (l *Logger) Flush() {
	l.remote.wait()
}

// Debug はdebugレベルでログを出力する。
func (l *Logger) Debug(msg string, fields *Fields) {
	l.log(LevelDebug, msg, fields, nil)
}

// Info はinfoレベルでログを出力する。
func (l *Logger) Info(msg string, fields *Fields) {
	l.log(LevelInfo, msg, fields, nil)
}

// Warn はwarnレベルでログを出力する。
func (l *Logger) Warn(msg string, fields *Fields) {
	l.log(LevelWarn, msg, fields, nil)
}

// Error はerrorレベルでエラー詳細付きのログを出力する。errはnilでもよい。
func (l *Logger) Error(msg string, err error, fields *Fields) {
	l.log(LevelError, msg, fields, err)
}

// Fatal はfatalレベルでログを出力する。プロセスは終了しない。
func (l *Logger) Fatal(msg string, err error, fields *Fields) {
	l.log(LevelFatal, msg, fields, err)
}

// Request はHTTPリクエストをinfoレベルで記録する。
func (l *Logger) Request(method, path string, fields *Fields) {
	f := fields.clone()
	f.Action = "request"
	l.Info(method+" "+path, f)
}

// Performance は処理時間をinfoレベルで記録する。
func (l *Logger) Performance(operation string, d time.Duration, fields *Fields) {
	ms := d.Milliseconds()
	f := fields.clone()
	f.Action = "performance"
	if f.Metadata == nil {
		f.Metadata = make(map[string]any, 2)
	}
	f.Metadata["operation"] = operation
	f.Metadata["duration"] = ms
	l.Info(fmt.Sprintf("Performance: %s took %dms", operation, ms), f)
}

// UserAction はユーザー操作をinfoレベルで記録する。
func (l *Logger) UserAction(action, userID string, fields *Fields) {
	f := fields.clone()
	f.UserID = userID
	f.Action = "user_action"
	l.Info("User action: "+action, f)
}

// CaptureException は捕捉されなかったエラーをerrorレベルで記録する。
func (l *Logger) CaptureException(err error, fields *Fields) {
	f := fields.clone()
	f.Action = "exception"
	l.Error("Uncaught exception", err, f)
}

// Enabled は指定レベルのログが出力対象かどうかを返す。
func (l *Logger) Enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.cfg.Level
}

func (l *Logger) log(level Level, msg string, fields *Fields, err error) {
	l.mu.RLock()
	cfg := l.cfg
	console := l.console
	l.mu.RUnlock()

	if level < cfg.Level {
		return
	}

	var stack []byte
	if err != nil {
		stack = debug.Stack()
	}
	entry := Entry{
		Timestamp:   l.now().UTC(),
		Level:       level,
		Message:     msg,
		Context:     fields.sanitized(),
		Error:       newErrorDetail(err, stack),
		Environment: cfg.Environment,
		Version:     cfg.Version,
	}

	if cfg.EnableConsole {
		l.writeConsole(console, entry, cfg)
	}

	if cfg.EnableRemote && cfg.RemoteEndpoint != "" {
		l.remote.send(cfg.RemoteEndpoint, entry, func(sendErr error) {
			l.reportRemoteFailure(sendErr, cfg)
		})
	}
}

// writeConsole はEntryを1行としてコンソールに書き込む。
// ハンドラーのエラーはロガー利用側に伝播させない。
func (l *Logger) writeConsole(h slog.Handler, e Entry, cfg Config) {
	r := slog.NewRecord(e.Timestamp, e.Level.slogLevel(), e.Message, 0)
	if e.Context != nil {
		r.AddAttrs(fieldsAttr(e.Context))
	}
	if e.Error != nil {
		errAttrs := []any{
			slog.String("name", e.Error.Name),
			slog.String("message", e.Error.Message),
		}
		// テキスト出力ではスタックトレースを開発環境でのみ出す
		if e.Error.Stack != "" && (cfg.EnableJSON || cfg.Environment == "development") {
			errAttrs = append(errAttrs, slog.String("stack", e.Error.Stack))
		}
		r.AddAttrs(slog.Group("error", errAttrs...))
	}
	r.AddAttrs(
		slog.String("environment", e.Environment),
		slog.String("version", e.Version),
	)
	_ = h.Handle(context.Background(), r)
}

// reportRemoteFailure はリモート送信の失敗をコンソールに出力する。
// リモートには再送しない。
func (l *Logger) reportRemoteFailure(err error, cfg Config) {
	if !cfg.EnableConsole {
		return
	}
	l.mu.RLock()
	console := l.console
	l.mu.RUnlock()
	l.writeConsole(console, Entry{
		Timestamp:   l.now().UTC(),
		Level:       LevelWarn,
		Message:     "Failed to send remote log",
		Error:       newErrorDetail(err, nil),
		Environment: cfg.Environment,
		Version:     cfg.Version,
	}, cfg)
}

func fieldsAttr(f *Fields) slog.Attr {
	var attrs []any
	if f.UserID != "" {
		attrs = append(attrs, slog.String("userId", f.UserID))
	}
	if f.RequestID != "" {
		attrs = append(attrs, slog.String("requestId", f.RequestID))
	}
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	if f.Action != "" {
		attrs = append(attrs, slog.String("action", f.Action))
	}
	if len(f.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", f.Metadata))
	}
	return slog.Group("context", attrs...)
}

// newConsoleHandler はコンソール出力用のslogハンドラーを生成する。
// レベル判定はLogger側で行うため、ハンドラーは全レベルを通す。
func newConsoleHandler(w io.Writer, jsonMode bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceConsoleAttr(jsonMode),
	}
	if jsonMode {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func replaceConsoleAttr(jsonMode bool) func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.LevelKey:
			lv, ok := a.Value.Any().(slog.Level)
			if !ok {
				return a
			}
			name := levelFromSlog(lv).String()
			if !jsonMode {
				name = strings.ToUpper(name)
			}
			return slog.String(slog.LevelKey, name)
		case slog.TimeKey:
			if jsonMode {
				return slog.Time("timestamp", a.Value.Time())
			}
			return slog.String(slog.TimeKey, a.Value.Time().Local().Format(time.TimeOnly))
		case slog.MessageKey:
			if jsonMode {
				return slog.String("message", a.Value.String())
			}
		}
		return a
	}
}

var std atomic.Pointer[Logger]

func init() {
	std.Store(New(os.Stdout, DefaultConfig()))
}

// Default はプロセス全体で共有するLoggerを返す。
func Default() *Logger {
	return std.Load()
}

// SetDefault はプロセス全体で共有するLoggerを差し替える。
func SetDefault(l *Logger) {
	if l != nil {
		std.Store(l)
	}
}
