package earlyaccess

import (
	"net"
	"net/url"
	"strings"

	"github.com/hitoshi/aispecialist/internal/model"
)

// unknownValue は取得できなかった帰属情報の代替値。
const unknownValue = "unknown"

// RequestMeta は登録リクエストに付随する接続情報。
type RequestMeta struct {
	// DirectIP は接続元のアドレス。"host:port" 形式でもよい。空の場合はヘッダーを使用する。
	DirectIP     string
	ForwardedFor string
	RealIP       string
	UserAgent    string
	Query        url.Values
}

// ClientIP はクライアントIPを決定する。
// 接続元アドレス、X-Forwarded-Forの先頭、X-Real-IPの順に採用し、いずれもなければ "unknown" を返す。
func ClientIP(meta RequestMeta) string {
	if ip := hostOnly(meta.DirectIP); ip != "" {
		return ip
	}
	if hop := firstForwardedHop(meta.ForwardedFor); hop != "" {
		return hop
	}
	if ip := strings.TrimSpace(meta.RealIP); ip != "" {
		return ip
	}
	return unknownValue
}

// UserAgent はUser-Agentを返す。空の場合は "unknown"。
func UserAgent(meta RequestMeta) string {
	if ua := strings.TrimSpace(meta.UserAgent); ua != "" {
		return ua
	}
	return unknownValue
}

// ExtractUTM はクエリ文字列からUTMパラメータを取り出す。
// パラメータが存在しない場合はnil、空文字で指定された場合は空文字を保持する。
func ExtractUTM(q url.Values) model.UTM {
	return model.UTM{
		Source:   queryParam(q, "utm_source"),
		Medium:   queryParam(q, "utm_medium"),
		Campaign: queryParam(q, "utm_campaign"),
	}
}

func queryParam(q url.Values, key string) *string {
	if q == nil || !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}

func firstForwardedHop(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

func hostOnly(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
