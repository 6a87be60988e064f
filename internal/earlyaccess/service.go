// Package earlyaccess は先行登録のユースケースを提供する。
//
// 登録処理は「保存」と「ウェルカムメール送信」の2段階で構成される。
// 保存の成否のみが応答を決め、メール送信の失敗はログに記録するだけで成功扱いとする。
package earlyaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/aispecialist/internal/email"
	"github.com/hitoshi/aispecialist/internal/logger"
	"github.com/hitoshi/aispecialist/internal/metrics"
	"github.com/hitoshi/aispecialist/internal/model"
	"github.com/hitoshi/aispecialist/internal/repository"
	"github.com/hitoshi/aispecialist/internal/validation"
)

// SuccessMessage は登録成功時の応答メッセージ。
const SuccessMessage = "先行登録が完了しました！確認メールをお送りしています。"

// component はログのコンポーネント名。
const component = "early-access"

// Outcome は登録リクエストの結果種別。
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeMalformedRequest Outcome = "malformed_request"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeDuplicateEmail   Outcome = "duplicate_email"
	OutcomePersistenceError Outcome = "persistence_error"
	OutcomeUnexpectedError  Outcome = "unexpected_error"
)

// Result は登録処理の結果。
// Committedは登録が保存されたこと、Notifiedはウェルカムメールが送信されたことを示す。
type Result struct {
	Outcome        Outcome
	Status         int
	Message        string
	Code           string
	RegistrationID string
	Committed      bool
	Notified       bool
	EmailSentAt    *time.Time
}

// Success は応答が成功かどうかを返す。
func (r Result) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// Service は先行登録のユースケースを実装する。
type Service struct {
	repo    repository.RegistrationRepository
	sender  email.Sender
	log     *logger.Logger
	metrics metrics.MetricsCollector

	newID func() string
	now   func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// logがnilの場合はプロセス共通のロガー、mcがnilの場合は何も記録しないコレクターを使用する。
func NewService(repo repository.RegistrationRepository, sender email.Sender, log *logger.Logger, mc metrics.MetricsCollector) *Service {
	if log == nil {
		log = logger.Default()
	}
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Service{
		repo:    repo,
		sender:  sender,
		log:     log,
		metrics: mc,
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}
}

// Register は生のリクエストボディと接続情報から先行登録を行う。
// 同一メールアドレスの判定はデータベースの一意制約のみで行う。
func (s *Service) Register(ctx context.Context, rawBody []byte, meta RequestMeta) (res Result) {
	start := s.now()
	var reg *model.Registration
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Unexpected error during early access registration",
				fmt.Errorf("panic: %v", r),
				&logger.Fields{
					Component: component,
					Action:    "register",
					Metadata:  registrationMetadata(reg, model.ErrCodeUnexpectedError),
				},
			)
			committed, notified, id := res.Committed, res.Notified, res.RegistrationID
			res = failure(OutcomeUnexpectedError, http.StatusInternalServerError, model.NewUnexpectedError())
			res.Committed, res.Notified, res.RegistrationID = committed, notified, id
		}
		s.metrics.RecordRegistration(string(res.Outcome))
		s.metrics.RecordRegistrationLatency(s.now().Sub(start))
	}()

	var body any
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return failure(OutcomeMalformedRequest, http.StatusBadRequest, model.NewMalformedRequestError())
	}

	input, verr := validation.ValidateEarlyAccess(body)
	if verr != nil {
		return failure(OutcomeValidationFailed, http.StatusBadRequest, model.NewValidationFailedError(verr.Message))
	}

	utm := ExtractUTM(meta.Query)
	reg = &model.Registration{
		ID:               s.newID(),
		Email:            input.Email,
		Name:             input.Name,
		Message:          input.Message,
		Source:           model.SourceLandingPage,
		UTMSource:        utm.Source,
		UTMMedium:        utm.Medium,
		UTMCampaign:      utm.Campaign,
		IPAddress:        ClientIP(meta),
		UserAgent:        UserAgent(meta),
		UnsubscribeToken: uuid.New().String(),
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return failure(OutcomeDuplicateEmail, http.StatusConflict, model.NewDuplicateEmailError())
		}
		s.log.Error("Database error during registration", err, &logger.Fields{
			Component: component,
			Action:    "register",
			Metadata:  registrationMetadata(reg, model.ErrCodePersistenceError),
		})
		return failure(OutcomePersistenceError, http.StatusInternalServerError, model.NewPersistenceError())
	}

	res = Result{
		Outcome:        OutcomeSuccess,
		Status:         http.StatusOK,
		Message:        SuccessMessage,
		RegistrationID: reg.ID,
		Committed:      true,
	}

	res.Notified, res.EmailSentAt = s.notify(ctx, reg)

	s.log.Info("Early access registration successful", &logger.Fields{
		Component: component,
		Action:    "register",
		Metadata: map[string]any{
			"email":          reg.Email,
			"registrationId": reg.ID,
		},
	})
	return res
}

// notify はウェルカムメールを送信し、成功時は送信日時を記録する。
// 送信日時の記録に失敗した場合は送信済みとして扱い、EmailSentAtはnilを返す。
func (s *Service) notify(ctx context.Context, reg *model.Registration) (bool, *time.Time) {
	fields := &logger.Fields{
		Component: component,
		Action:    "welcome_email",
		Metadata: map[string]any{
			"email":          reg.Email,
			"registrationId": reg.ID,
		},
	}

	name := ""
	if reg.Name != nil {
		name = *reg.Name
	}

	if _, err := s.sender.SendWelcome(ctx, reg.Email, name); err != nil {
		reason := "delivery"
		if errors.Is(err, email.ErrEmailDisabled) {
			reason = "disabled"
		}
		s.metrics.RecordEmailFailure(reason)
		deliveryErr := model.NewEmailDeliveryFailedError(reason)
		fields.Metadata["code"] = deliveryErr.Code
		s.log.Error("Failed to send welcome email", fmt.Errorf("%w: %w", deliveryErr, err), fields)
		return false, nil
	}
	s.metrics.RecordEmailSent()

	sentAt := s.now().UTC()
	if err := s.repo.MarkEmailSent(ctx, reg.ID, sentAt); err != nil {
		s.log.Error("Failed to record welcome email delivery", err, fields)
		return true, nil
	}

	s.log.Info("Welcome email sent successfully", fields)
	return true, &sentAt
}

// registrationMetadata はログ用の識別子を返す。regが未生成の場合はcodeのみとなる。
func registrationMetadata(reg *model.Registration, code string) map[string]any {
	md := map[string]any{"code": code}
	if reg != nil {
		md["email"] = reg.Email
		md["registrationId"] = reg.ID
	}
	return md
}

func failure(outcome Outcome, status int, apiErr *model.APIError) Result {
	return Result{
		Outcome: outcome,
		Status:  status,
		Message: apiErr.Message,
		Code:    apiErr.Code,
	}
}
