// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hitoshi/aispecialist/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// 他の永続化エラーと区別して扱う。
var ErrDuplicateEmail = errors.New("registration with this email already exists")

// DBProvider は*sql.DBを提供するインターフェース。
// database.Lazyのように初回利用時に接続を開く実装を受け付ける。
type DBProvider interface {
	Get(ctx context.Context) (*sql.DB, error)
}

// RegistrationRepository は先行登録データの永続化インターフェース。
type RegistrationRepository interface {
	// Create は登録を作成する。CreatedAtはDB側の値で上書きされる。
	// emailが既に登録済みの場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, reg *model.Registration) error

	// MarkEmailSent はウェルカムメールの送信日時を記録する。
	MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error
}
