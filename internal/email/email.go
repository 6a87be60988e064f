// Package email は先行登録者へのウェルカムメール送信を提供する。
// 送信にはResendのSDKを使用し、APIキー未設定時は送信を無効化する。
package email

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// DefaultFrom は送信元アドレスのデフォルト値。
const DefaultFrom = "AIスペシャリスト.com <noreply@aispecialist.com>"

// WelcomeSubject はウェルカムメールの件名。
const WelcomeSubject = "【AIスペシャリスト.com】先行登録ありがとうございます！"

// ErrEmailDisabled はメール送信が無効化されている場合に返される。
var ErrEmailDisabled = errors.New("メール送信が無効です: RESEND_API_KEY が設定されていません")

// Sender はウェルカムメールの送信インターフェース。
type Sender interface {
	// SendWelcome はemail宛てにウェルカムメールを送信し、プロバイダのメッセージIDを返す。
	// nameが空の場合は宛名なしの本文になる。
	SendWelcome(ctx context.Context, email, name string) (string, error)
}

// NewSender はAPIキーの有無に応じてSenderを生成する。
// APIキーが空の場合は警告を1回出力し、常にErrEmailDisabledを返すSenderを返す。
func NewSender(apiKey, from string, httpClient *http.Client, logger *slog.Logger) Sender {
	if apiKey == "" {
		logger.Warn("RESEND_API_KEY is not defined. Email functionality will be disabled.")
		return disabledSender{}
	}
	return NewResendClient(apiKey, from, httpClient, logger)
}

// disabledSender はAPIキー未設定時のSender。
type disabledSender struct{}

func (disabledSender) SendWelcome(ctx context.Context, email, name string) (string, error) {
	return "", ErrEmailDisabled
}
