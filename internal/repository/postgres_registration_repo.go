package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/aispecialist/internal/model"
)

const (
	// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
	pqUniqueViolation = "23505"
	// emailUniqueConstraint はemail列の一意制約名。
	emailUniqueConstraint = "early_access_registrations_email_key"
)

// PostgresRegistrationRepo はPostgreSQLを使用した先行登録リポジトリ。
type PostgresRegistrationRepo struct {
	db DBProvider
}

// NewPostgresRegistrationRepo はPostgresRegistrationRepoを生成する。
func NewPostgresRegistrationRepo(db DBProvider) *PostgresRegistrationRepo {
	return &PostgresRegistrationRepo{db: db}
}

// Create は登録を作成する。
// 一意性の事前確認は行わず、DBの一意制約違反をErrDuplicateEmailに変換する。
func (r *PostgresRegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`INSERT INTO early_access_registrations
		   (id, email, name, message, source, utm_source, utm_medium, utm_campaign,
		    ip_address, user_agent, unsubscribe_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		reg.ID, reg.Email, reg.Name, reg.Message, reg.Source,
		reg.UTMSource, reg.UTMMedium, reg.UTMCampaign,
		reg.IPAddress, reg.UserAgent, reg.UnsubscribeToken,
	).Scan(&reg.CreatedAt)
	if err != nil {
		if isEmailUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	return nil
}

// MarkEmailSent はウェルカムメールの送信日時を記録する。
func (r *PostgresRegistrationRepo) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE early_access_registrations SET email_sent_at = $1 WHERE id = $2`,
		sentAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update email_sent_at: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("registration not found: %s", id)
	}
	return nil
}

// FindByEmail はメールアドレスで登録を取得する。見つからない場合はnilを返す。
// 登録処理では使用せず、保存内容の確認用としてRegistrationRepositoryには含めない。
func (r *PostgresRegistrationRepo) FindByEmail(ctx context.Context, email string) (*model.Registration, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	reg := &model.Registration{}
	var (
		name, message                   sql.NullString
		utmSource, utmMedium, utmCampgn sql.NullString
		emailSentAt                     sql.NullTime
	)
	err = db.QueryRowContext(ctx,
		`SELECT id, email, name, message, source, utm_source, utm_medium, utm_campaign,
		        ip_address, user_agent, unsubscribe_token, created_at, email_sent_at
		 FROM early_access_registrations WHERE email = $1`,
		email,
	).Scan(
		&reg.ID, &reg.Email, &name, &message, &reg.Source,
		&utmSource, &utmMedium, &utmCampgn,
		&reg.IPAddress, &reg.UserAgent, &reg.UnsubscribeToken, &reg.CreatedAt, &emailSentAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find registration by email: %w", err)
	}

	reg.Name = nullStringPtr(name)
	reg.Message = nullStringPtr(message)
	reg.UTMSource = nullStringPtr(utmSource)
	reg.UTMMedium = nullStringPtr(utmMedium)
	reg.UTMCampaign = nullStringPtr(utmCampgn)
	if emailSentAt.Valid {
		t := emailSentAt.Time
		reg.EmailSentAt = &t
	}

	return reg, nil
}

// isEmailUniqueViolation はエラーがemail列の一意制約違反かどうかを判定する。
// 制約名が取得できない場合は一意制約違反であればemailとみなす。
func isEmailUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != pqUniqueViolation {
		return false
	}
	return pqErr.Constraint == "" || pqErr.Constraint == emailUniqueConstraint
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// compile-time interface check
var _ RegistrationRepository = (*PostgresRegistrationRepo)(nil)
