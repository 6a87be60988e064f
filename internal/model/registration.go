package model

import "time"

// SourceLandingPage はランディングページ経由の先行登録を表す流入元タグ。
const SourceLandingPage = "landing_page"

// Registration は先行登録1件を表す。
// Emailは全登録で一意。作成後はEmailSentAtの記録以外で変更されない。
type Registration struct {
	ID               string
	Email            string
	Name             *string
	Message          *string
	Source           string
	UTMSource        *string
	UTMMedium        *string
	UTMCampaign      *string
	IPAddress        string
	UserAgent        string
	UnsubscribeToken string
	CreatedAt        time.Time
	EmailSentAt      *time.Time
}

// UTM はキャンペーン計測用のUTMパラメータ。未指定の項目はnil。
type UTM struct {
	Source   *string
	Medium   *string
	Campaign *string
}
