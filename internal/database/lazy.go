package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrDatabaseURLNotSet はDATABASE_URLが設定されていない場合のエラー。
var ErrDatabaseURLNotSet = errors.New("DATABASE_URL is not set")

// Lazy は初回利用時に接続を開くプロセス共有のDBハンドル。
// 同時に初回利用されても接続は1度しか開かない。
// 接続に失敗した場合は結果を保持せず、次回利用時に再試行する。
type Lazy struct {
	databaseURL string
	open        func(string) (*sql.DB, error)

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// NewLazy はLazyを生成する。この時点では接続を開かない。
func NewLazy(databaseURL string) *Lazy {
	return &Lazy{
		databaseURL: databaseURL,
		open:        Open,
	}
}

// Get は接続済みの*sql.DBを返す。未接続の場合は接続を開いてPingする。
func (l *Lazy) Get(ctx context.Context) (*sql.DB, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, errors.New("database handle is closed")
	}
	if l.db != nil {
		return l.db, nil
	}
	if l.databaseURL == "" {
		return nil, ErrDatabaseURLNotSet
	}

	db, err := l.open(l.databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	l.db = db
	return db, nil
}

// PingContext はヘルスチェック用に接続を確認する。
func (l *Lazy) PingContext(ctx context.Context) error {
	db, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close は接続を閉じる。プロセス終了時に呼ぶ。以降のGetはエラーを返す。
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
