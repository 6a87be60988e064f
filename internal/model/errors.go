// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: request, validation, registration, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ErrorCode はエラーコードを返す。
func (e *APIError) ErrorCode() string {
	return e.Code
}

// 定義済みエラーコード
const (
	ErrCodeMalformedRequest    = "MALFORMED_REQUEST"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodePersistenceError    = "PERSISTENCE_ERROR"
	ErrCodeEmailDeliveryFailed = "EMAIL_DELIVERY_FAILED"
	ErrCodeUnexpectedError     = "UNEXPECTED_ERROR"
	ErrCodeArticleNotFound     = "ARTICLE_NOT_FOUND"
	ErrCodeRateLimited         = "RATE_LIMITED"
)

// NewMalformedRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewMalformedRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeMalformedRequest,
		Message:  "不正なリクエスト形式です。",
		Category: "request",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationFailedError は入力検証エラーを生成する。
// messageには最初に違反したルールのメッセージを渡す。
func NewValidationFailedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewDuplicateEmailError は登録済みメールアドレスのエラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "registration",
		Action:   "別のメールアドレスで登録するか、受信済みの確認メールをご確認ください。",
	}
}

// NewPersistenceError はデータベースエラーを生成する。
func NewPersistenceError() *APIError {
	return &APIError{
		Code:     ErrCodePersistenceError,
		Message:  "データベースエラーが発生しました。しばらく時間をおいて再度お試しください。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewEmailDeliveryFailedError はウェルカムメールの送信失敗を表す。
// ログ記録専用で、レスポンスには使用しない。
func NewEmailDeliveryFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailDeliveryFailed,
		Message:  fmt.Sprintf("ウェルカムメールの送信に失敗しました: %s", reason),
		Category: "registration",
		Action:   "登録自体は完了しています。",
	}
}

// NewUnexpectedError は予期しないエラーを生成する。
func NewUnexpectedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnexpectedError,
		Message:  "予期しないエラーが発生しました。しばらく時間をおいて再度お試しください。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewArticleNotFoundError はインタビュー記事が見つからない場合のエラーを生成する。
func NewArticleNotFoundError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", slug),
		Category: "content",
		Action:   "記事一覧から目的の記事を選択してください。",
	}
}

// NewRateLimitedError はリクエスト過多のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。しばらく時間をおいて再度お試しください。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
