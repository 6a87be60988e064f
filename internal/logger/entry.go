package logger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// unserializablePlaceholder はJSONに変換できない値の代わりに出力する文字列。
const unserializablePlaceholder = "[unserializable]"

// Fields はログに付与する任意のコンテキスト情報。
type Fields struct {
	UserID    string         `json:"userId,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Component string         `json:"component,omitempty"`
	Action    string         `json:"action,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ErrorDetail はログに記録するエラー情報。
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Entry は1件の構造化ログレコード。
type Entry struct {
	Timestamp   time.Time    `json:"timestamp"`
	Level       Level        `json:"level"`
	Message     string       `json:"message"`
	Context     *Fields      `json:"context,omitempty"`
	Error       *ErrorDetail `json:"error,omitempty"`
	Environment string       `json:"environment"`
	Version     string       `json:"version"`
}

// clone はFieldsのコピーを返す。Metadataは新しいマップに複製する。
// nilの場合は空のFieldsを返す。
func (f *Fields) clone() *Fields {
	if f == nil {
		return &Fields{}
	}
	c := *f
	if f.Metadata != nil {
		c.Metadata = make(map[string]any, len(f.Metadata))
		for k, v := range f.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// sanitized はJSONに変換できないMetadataの値をプレースホルダに置き換えたコピーを返す。
// 循環参照を含む値もここで除去される。
func (f *Fields) sanitized() *Fields {
	if f == nil {
		return nil
	}
	c := *f
	if f.Metadata != nil {
		c.Metadata = make(map[string]any, len(f.Metadata))
		for k, v := range f.Metadata {
			if _, err := json.Marshal(v); err != nil {
				c.Metadata[k] = unserializablePlaceholder
				continue
			}
			c.Metadata[k] = v
		}
	}
	return &c
}

// newErrorDetail はerrorからErrorDetailを生成する。
func newErrorDetail(err error, stack []byte) *ErrorDetail {
	if err == nil {
		return nil
	}
	return &ErrorDetail{
		Name:    errorName(err),
		Message: err.Error(),
		Stack:   string(stack),
	}
}

// coder はエラーコードを持つエラー。
type coder interface {
	ErrorCode() string
}

// errorName はエラーの名前を返す。
// ラップ連鎖にエラーコードがあればそれを、なければ最も内側のエラーの型名を使う。
// errors.Newやfmt.Errorfで生成された型名を持たないエラーは "error" となる。
func errorName(err error) string {
	var c coder
	if errors.As(err, &c) && c.ErrorCode() != "" {
		return c.ErrorCode()
	}
	inner := err
	for {
		next := unwrapFirst(inner)
		if next == nil {
			break
		}
		inner = next
	}
	switch name := fmt.Sprintf("%T", inner); name {
	case "*errors.errorString", "*fmt.wrapError", "*fmt.wrapErrors", "*errors.joinError":
		return "error"
	default:
		return name
	}
}

// unwrapFirst は単一または複数ラップの最初の内側エラーを返す。
func unwrapFirst(err error) error {
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return u.Unwrap()
	case interface{ Unwrap() []error }:
		if errs := u.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return nil
}

// marshal はEntryをJSONに変換する。
// 変換に失敗した場合はコンテキストを落とした最小限のレコードに切り替える。
func (e Entry) marshal() []byte {
	b, err := json.Marshal(e)
	if err == nil {
		return b
	}
	e.Context = nil
	b, err = json.Marshal(e)
	if err != nil {
		return []byte(fmt.Sprintf(`{"level":%q,"message":%q}`, e.Level.String(), e.Message))
	}
	return b
}
