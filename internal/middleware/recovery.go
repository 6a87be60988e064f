package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hitoshi/aispecialist/internal/logger"
	"github.com/hitoshi/aispecialist/internal/model"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 500レスポンスを返すミドルウェアを生成する。
// panicはslogとアプリケーションロガー（appLogがnilでなければ）の両方に記録する。
func NewRecoveryMiddleware(appLog *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					if appLog != nil {
						appLog.CaptureException(fmt.Errorf("panic: %v", rec), &logger.Fields{
							RequestID: RequestIDFromContext(r.Context()),
							Component: "http",
							Metadata:  map[string]any{"method": r.Method, "path": r.URL.Path},
						})
					}
					WriteErrorResponse(w, http.StatusInternalServerError, model.NewUnexpectedError())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
