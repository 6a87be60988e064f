package middleware

import (
	"net/http"
	"strings"
)

// hstsValue はHTTPS配信時に付与するStrict-Transport-Securityの値。
const hstsValue = "max-age=63072000; includeSubDomains"

// SecurityHeadersConfig はセキュリティヘッダーの設定。
type SecurityHeadersConfig struct {
	// HSTS はサイトがHTTPSで配信される場合にtrueとする。
	HSTS bool
	// NoIndexPrefixes に前方一致するパスにはX-Robots-Tag: noindexを付与する。
	NoIndexPrefixes []string
}

// DefaultSecurityHeadersConfig はAPIをクローラーの索引対象から外すデフォルト設定を返す。
// RSSフィードは配信対象のため含めない。
func DefaultSecurityHeadersConfig(hsts bool) SecurityHeadersConfig {
	return SecurityHeadersConfig{
		HSTS:            hsts,
		NoIndexPrefixes: []string{"/api/", "/health", "/metrics"},
	}
}

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
// 応答はJSONとRSSのみのため、CSPはすべてのリソース読み込みを禁止する。
func NewSecurityHeadersMiddleware(cfg SecurityHeadersConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			for _, prefix := range cfg.NoIndexPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					h.Set("X-Robots-Tag", "noindex")
					break
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
