package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/hitoshi/aispecialist/internal/earlyaccess"
	"github.com/hitoshi/aispecialist/internal/middleware"
	"github.com/hitoshi/aispecialist/internal/model"
)

// maxEarlyAccessBodyBytes は先行登録リクエストボディの上限。
const maxEarlyAccessBodyBytes = 64 << 10

// RegistrationServiceInterface は先行登録ハンドラーが必要とするサービスインターフェース。
type RegistrationServiceInterface interface {
	// Register は生のリクエストボディと接続情報から登録を行い、結果を返す。
	Register(ctx context.Context, rawBody []byte, meta earlyaccess.RequestMeta) earlyaccess.Result
}

// EarlyAccessHandler は先行登録のHTTPハンドラー。
type EarlyAccessHandler struct {
	service    RegistrationServiceInterface
	trustProxy bool
}

// NewEarlyAccessHandler はEarlyAccessHandlerを生成する。
// trustProxyがtrueの場合、接続元アドレスではなくプロキシヘッダーからクライアントIPを決定する。
func NewEarlyAccessHandler(service RegistrationServiceInterface, trustProxy bool) *EarlyAccessHandler {
	return &EarlyAccessHandler{service: service, trustProxy: trustProxy}
}

// earlyAccessResponse は先行登録APIのレスポンス。
// 失敗時のみエラーコードを含める。
type earlyAccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Register は先行登録を処理する。
// POST /api/early-access
func (h *EarlyAccessHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEarlyAccessBodyBytes))
	if err != nil {
		apiErr := model.NewMalformedRequestError()
		writeJSON(w, http.StatusBadRequest, earlyAccessResponse{
			Message: apiErr.Message,
			Code:    apiErr.Code,
		})
		return
	}

	res := h.service.Register(r.Context(), body, RequestMeta(r, h.trustProxy))

	resp := earlyAccessResponse{
		Success: res.Success(),
		Message: res.Message,
	}
	if !res.Success() {
		resp.Code = res.Code
	}
	writeJSON(w, res.Status, resp)
}

// RequestMeta はHTTPリクエストから登録の帰属情報を取り出す。
// trustProxyがfalseの場合は接続元アドレスを優先し、trueの場合はプロキシヘッダーを使用する。
func RequestMeta(r *http.Request, trustProxy bool) earlyaccess.RequestMeta {
	meta := earlyaccess.RequestMeta{
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		RealIP:       r.Header.Get("X-Real-IP"),
		UserAgent:    r.Header.Get("User-Agent"),
		Query:        r.URL.Query(),
	}
	if !trustProxy {
		meta.DirectIP = r.RemoteAddr
	}
	return meta
}

// ClientKey はクライアントIPをレート制限のキーとするKeyFuncを返す。
func ClientKey(trustProxy bool) middleware.KeyFunc {
	return func(r *http.Request) string {
		return earlyaccess.ClientIP(RequestMeta(r, trustProxy))
	}
}
