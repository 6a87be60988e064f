// Package validation は先行登録リクエストの入力検証を提供する。
package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// 検証メッセージ。最初に違反したルールのメッセージをユーザーに返す。
const (
	MsgEmailRequired = "メールアドレスは必須です"
	MsgEmailInvalid  = "有効なメールアドレスを入力してください"
	MsgEmailType     = "メールアドレスは文字列で入力してください"
	MsgNameType      = "お名前は文字列で入力してください"
	MsgMessageType   = "メッセージは文字列で入力してください"
	MsgInvalidInput  = "入力形式が正しくありません"
)

// ルール名
const (
	RuleRequired = "required"
	RuleEmail    = "email"
	RuleType     = "type"
)

// EarlyAccessInput は検証済みの先行登録入力。
type EarlyAccessInput struct {
	Email   string  `validate:"required,email"`
	Name    *string
	Message *string
}

// ValidationError は最初に違反したルールを表す。
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Message)
	}
	return fmt.Sprintf("validation failed on %s (%s): %s", e.Field, e.Rule, e.Message)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateEarlyAccess はJSONとしてデコードされた任意の値を検証し、
// 型付きの入力を返す。違反がある場合は最初の違反をValidationErrorで返す。
// emailが未指定・空の場合は形式エラーではなく必須エラーになる。
func ValidateEarlyAccess(input any) (*EarlyAccessInput, *ValidationError) {
	obj, ok := input.(map[string]any)
	if !ok {
		return nil, &ValidationError{Rule: RuleType, Message: MsgInvalidInput}
	}

	out := &EarlyAccessInput{}

	switch v := obj["email"].(type) {
	case nil:
		// 未指定は空文字として必須チェックに任せる
	case string:
		out.Email = v
	default:
		return nil, &ValidationError{Field: "email", Rule: RuleType, Message: MsgEmailType}
	}

	name, verr := optionalString(obj, "name", MsgNameType)
	if verr != nil {
		return nil, verr
	}
	out.Name = name

	message, verr := optionalString(obj, "message", MsgMessageType)
	if verr != nil {
		return nil, verr
	}
	out.Message = message

	if err := getValidator().Struct(out); err != nil {
		return nil, toValidationError(err)
	}

	return out, nil
}

// optionalString は任意項目の文字列を取り出す。未指定とnullはnilとして扱う。
func optionalString(obj map[string]any, key, typeMsg string) (*string, *ValidationError) {
	raw, present := obj[key]
	if !present || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, &ValidationError{Field: key, Rule: RuleType, Message: typeMsg}
	}
	return &s, nil
}

// toValidationError はvalidatorのエラーを最初の違反のValidationErrorに変換する。
func toValidationError(err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Rule: RuleType, Message: MsgInvalidInput}
	}

	fe := fieldErrs[0]
	switch {
	case fe.Field() == "Email" && fe.Tag() == RuleRequired:
		return &ValidationError{Field: "email", Rule: RuleRequired, Message: MsgEmailRequired}
	case fe.Field() == "Email" && fe.Tag() == RuleEmail:
		return &ValidationError{Field: "email", Rule: RuleEmail, Message: MsgEmailInvalid}
	default:
		return &ValidationError{Field: fe.Field(), Rule: fe.Tag(), Message: MsgInvalidInput}
	}
}
