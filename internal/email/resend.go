package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendClient はResend SDKを使ったSenderの実装。
type ResendClient struct {
	client *resend.Client
	logger *slog.Logger
	from   string
}

// NewResendClient はResendClientの新しいインスタンスを生成する。
// httpClientがnilの場合は10秒タイムアウトのクライアントを使用する。
func NewResendClient(apiKey, from string, httpClient *http.Client, logger *slog.Logger) *ResendClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if from == "" {
		from = DefaultFrom
	}
	return &ResendClient{
		client: resend.NewCustomClient(httpClient, apiKey),
		logger: logger,
		from:   from,
	}
}

// SendWelcome はウェルカムメールを送信する。
func (c *ResendClient) SendWelcome(ctx context.Context, email, name string) (string, error) {
	htmlBody, err := RenderWelcomeHTML(name)
	if err != nil {
		return "", err
	}

	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{email},
		Subject: WelcomeSubject,
		Html:    htmlBody,
		Text:    PlainText(htmlBody),
	})
	if err != nil {
		return "", fmt.Errorf("ウェルカムメールの送信に失敗しました: %w", err)
	}

	c.logger.Debug("ウェルカムメールを送信しました",
		slog.String("message_id", sent.Id),
	)
	return sent.Id, nil
}
