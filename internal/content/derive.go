package content

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/aispecialist/internal/model"
)

// charsPerMinute は日本語の平均読書速度（文字/分）。
const charsPerMinute = 400

// seoBaseKeywords は全記事に付与するSEOキーワード。
var seoBaseKeywords = []string{"AI導入", "AI活用事例"}

var (
	slugDisallowed = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// ReadingTime は本文の読了時間（分）を返す。文字数を400で割って切り上げ、最小1分。
func ReadingTime(body string) int {
	n := utf8.RuneCountInString(body)
	minutes := int(math.Ceil(float64(n) / charsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// GenerateSlug はタイトルからURL用のスラッグを生成する。
// 英数字・アンダースコア・空白・ハイフン以外を除去し、空白の連続をハイフン1つに置き換える。
func GenerateSlug(title string) string {
	s := strings.ToLower(title)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SEOKeywords は業種・固定キーワード・タグを重複なく並べたキーワード一覧を返す。
func SEOKeywords(a model.ArticleSummary) []string {
	candidates := make([]string, 0, 1+len(seoBaseKeywords)+len(a.Tags))
	candidates = append(candidates, a.Industry)
	candidates = append(candidates, seoBaseKeywords...)
	candidates = append(candidates, a.Tags...)

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, k := range candidates {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// dateLayouts はフロントマターのdateとして受け付ける書式。
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
}

// ParseDate は記事の日付文字列を解析する。解析できない場合はfalseを返す。
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate は日付文字列を「2024年1月15日」の形式に変換する。
// 解析できない場合は入力をそのまま返す。
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}
