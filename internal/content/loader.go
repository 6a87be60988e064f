// Package content はインタビュー記事ファイルの読み込みを提供する。
//
// 記事はコンテンツディレクトリ直下の1ファイル1記事（拡張子 .mdx）で、
// 先頭のYAMLフロントマターと本文から構成される。スラッグはファイル名から決まる。
// 読み込み結果はキャッシュせず、呼び出しごとにファイルシステムから読み直す。
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/hitoshi/aispecialist/internal/logger"
	"github.com/hitoshi/aispecialist/internal/metrics"
	"github.com/hitoshi/aispecialist/internal/model"
)

// ArticleExt は記事ファイルの拡張子。
const ArticleExt = ".mdx"

// DefaultDir はコンテンツディレクトリのデフォルトパス。
const DefaultDir = "content/interview"

// Loader はfs.FS上の記事ファイルを読み込む。fsysのルートがコンテンツディレクトリとなる。
type Loader struct {
	fsys    fs.FS
	log     *logger.Logger
	metrics metrics.MetricsCollector
}

// NewLoader はLoaderの新しいインスタンスを生成する。
// logがnilの場合はプロセス共通のロガー、mcがnilの場合は何も記録しないコレクターを使用する。
func NewLoader(fsys fs.FS, log *logger.Logger, mc metrics.MetricsCollector) *Loader {
	if log == nil {
		log = logger.Default()
	}
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Loader{fsys: fsys, log: log, metrics: mc}
}

// ListArticles は全記事の要約を日付の新しい順で返す。
// ディレクトリが存在しない場合は空のスライスを返す。
// 読み込みまたは解析に失敗したファイルはログを出力して読み飛ばす。
func (l *Loader) ListArticles() []model.ArticleSummary {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.log.Error("Failed to read content directory", err, &logger.Fields{Component: "content"})
		}
		return []model.ArticleSummary{}
	}

	articles := make([]model.ArticleSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ArticleExt) {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ArticleExt)
		a, err := l.load(slug)
		if err != nil {
			l.metrics.RecordContentLoadFailure()
			l.log.Warn("Skipping unreadable article", &logger.Fields{
				Component: "content",
				Metadata:  map[string]any{"file": entry.Name(), "error": err.Error()},
			})
			continue
		}
		articles = append(articles, a.ArticleSummary)
	}

	sortByDateDesc(articles)
	return articles
}

// GetArticle はスラッグに対応する記事を返す。
// ファイルが存在しない場合、スラッグが不正な場合、読み込みや解析に失敗した場合はいずれもfalseを返す。
func (l *Loader) GetArticle(slug string) (*model.Article, bool) {
	if !ValidSlug(slug) {
		return nil, false
	}
	a, err := l.load(slug)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.metrics.RecordContentLoadFailure()
			l.log.Warn("Failed to load article", &logger.Fields{
				Component: "content",
				Metadata:  map[string]any{"slug": slug, "error": err.Error()},
			})
		}
		return nil, false
	}
	return a, true
}

// ArticlesByTag はタグが一致する記事を返す。大文字小文字は区別しない。
func (l *Loader) ArticlesByTag(tag string) []model.ArticleSummary {
	return filterSummaries(l.ListArticles(), func(a model.ArticleSummary) bool {
		for _, t := range a.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	})
}

// ArticlesByIndustry は業種が一致する記事を返す。大文字小文字は区別しない。
func (l *Loader) ArticlesByIndustry(industry string) []model.ArticleSummary {
	return filterSummaries(l.ListArticles(), func(a model.ArticleSummary) bool {
		return strings.EqualFold(a.Industry, industry)
	})
}

// AllTags は全記事のタグを重複なく辞書順で返す。
func (l *Loader) AllTags() []string {
	set := make(map[string]struct{})
	for _, a := range l.ListArticles() {
		for _, t := range a.Tags {
			set[t] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// AllIndustries は全記事の業種を重複なく辞書順で返す。空の業種は含めない。
func (l *Loader) AllIndustries() []string {
	set := make(map[string]struct{})
	for _, a := range l.ListArticles() {
		if a.Industry != "" {
			set[a.Industry] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// ValidSlug はスラッグがコンテンツディレクトリ直下のファイル名として安全かどうかを返す。
func ValidSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, ".") || strings.ContainsAny(slug, `/\`) {
		return false
	}
	return fs.ValidPath(slug + ArticleExt)
}

func (l *Loader) load(slug string) (*model.Article, error) {
	raw, err := fs.ReadFile(l.fsys, path.Clean(slug+ArticleExt))
	if err != nil {
		return nil, err
	}
	fm, body, err := parseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("%s%s: %w", slug, ArticleExt, err)
	}
	return buildArticle(slug, fm, body), nil
}

func buildArticle(slug string, fm frontMatter, body string) *model.Article {
	tags := scalarsToStrings(fm.Tags)
	summary := model.ArticleSummary{
		Slug:          slug,
		Title:         fm.Title.String(),
		Excerpt:       fm.Excerpt.String(),
		Date:          fm.Date.String(),
		Author:        fm.Author.String(),
		Company:       fm.Company.String(),
		Industry:      fm.Industry.String(),
		Tags:          tags,
		FeaturedImage: fm.FeaturedImage.String(),
		ReadingTime:   ReadingTime(body),
	}

	meta := model.ArticleMetadata{
		Title:       firstNonEmpty(fm.MetaTitle.String(), summary.Title),
		Description: firstNonEmpty(fm.MetaDescription.String(), summary.Excerpt),
		Keywords:    scalarsToStrings(fm.Keywords),
	}
	if len(meta.Keywords) == 0 {
		meta.Keywords = tags
	}

	return &model.Article{
		ArticleSummary: summary,
		Content:        body,
		Metadata:       meta,
	}
}

// sortByDateDesc は日付の新しい順に並べる。解析できない日付は末尾に置き、同順位はスラッグ順とする。
func sortByDateDesc(articles []model.ArticleSummary) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, okI := ParseDate(articles[i].Date)
		tj, okJ := ParseDate(articles[j].Date)
		switch {
		case okI && okJ && !ti.Equal(tj):
			return ti.After(tj)
		case okI != okJ:
			return okI
		default:
			return articles[i].Slug < articles[j].Slug
		}
	})
}

func filterSummaries(in []model.ArticleSummary, keep func(model.ArticleSummary) bool) []model.ArticleSummary {
	out := make([]model.ArticleSummary, 0, len(in))
	for _, a := range in {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
