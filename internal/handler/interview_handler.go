package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/aispecialist/internal/content"
	"github.com/hitoshi/aispecialist/internal/metrics"
	"github.com/hitoshi/aispecialist/internal/middleware"
	"github.com/hitoshi/aispecialist/internal/model"
)

// ArticleSourceInterface はインタビュー記事ハンドラーが必要とする記事の取得元。
type ArticleSourceInterface interface {
	ListArticles() []model.ArticleSummary
	GetArticle(slug string) (*model.Article, bool)
	ArticlesByTag(tag string) []model.ArticleSummary
	ArticlesByIndustry(industry string) []model.ArticleSummary
	AllTags() []string
	AllIndustries() []string
}

// ArticleRendererInterface は記事本文をHTMLに変換する。
type ArticleRendererInterface interface {
	Render(body string) (string, error)
}

// InterviewHandlerConfig はインタビュー記事ハンドラーの設定。
type InterviewHandlerConfig struct {
	// Feed はRSSフィードのチャンネル情報。
	Feed content.Channel
	// AvatarStyle はインタビュー対象者のアバター画像の生成方式。
	AvatarStyle content.AvatarStyle
}

// InterviewHandler はインタビュー記事のHTTPハンドラー。
type InterviewHandler struct {
	source   ArticleSourceInterface
	renderer ArticleRendererInterface
	metrics  metrics.MetricsCollector
	config   InterviewHandlerConfig
}

// NewInterviewHandler はInterviewHandlerを生成する。
func NewInterviewHandler(source ArticleSourceInterface, renderer ArticleRendererInterface, mc metrics.MetricsCollector, config InterviewHandlerConfig) *InterviewHandler {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &InterviewHandler{
		source:   source,
		renderer: renderer,
		metrics:  mc,
		config:   config,
	}
}

// articleListResponse は記事一覧のAPIレスポンス。
type articleListResponse struct {
	Articles []model.ArticleSummary `json:"articles"`
	Total    int                    `json:"total"`
}

// articleResponse は記事詳細のAPIレスポンス。
type articleResponse struct {
	*model.Article
	FormattedDate string   `json:"formattedDate"`
	AuthorAvatar  string   `json:"authorAvatar"`
	SEOKeywords   []string `json:"seoKeywords"`
}

// ListArticles は記事一覧を返す。
// GET /api/interviews?tag=...&industry=...
// tagとindustryを両方指定した場合は両方に一致する記事のみを返す。
func (h *InterviewHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	industry := strings.TrimSpace(r.URL.Query().Get("industry"))

	var articles []model.ArticleSummary
	switch {
	case tag != "":
		articles = h.source.ArticlesByTag(tag)
		if industry != "" {
			articles = filterByIndustry(articles, industry)
		}
	case industry != "":
		articles = h.source.ArticlesByIndustry(industry)
	default:
		articles = h.source.ListArticles()
	}
	if articles == nil {
		articles = []model.ArticleSummary{}
	}

	writeJSON(w, http.StatusOK, articleListResponse{Articles: articles, Total: len(articles)})
}

// ListTags は全記事のタグ一覧を返す。
// GET /api/interviews/tags
func (h *InterviewHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tags": nonNil(h.source.AllTags())})
}

// ListIndustries は全記事の業界一覧を返す。
// GET /api/interviews/industries
func (h *InterviewHandler) ListIndustries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"industries": nonNil(h.source.AllIndustries())})
}

// GetArticle は記事詳細を返す。本文はサニタイズ済みのHTMLとしても返す。
// GET /api/interviews/{slug}
func (h *InterviewHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, ok := h.source.GetArticle(slug)
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewArticleNotFoundError(slug))
		return
	}

	html, err := h.renderer.Render(article.Content)
	if err != nil {
		slog.Error("failed to render article",
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	rendered := *article
	rendered.HTML = html
	h.metrics.RecordArticleView()

	writeJSON(w, http.StatusOK, articleResponse{
		Article:       &rendered,
		FormattedDate: content.FormatDate(article.Date),
		AuthorAvatar: content.AvatarURL(content.Person{
			Name:    article.Author,
			Company: article.Company,
		}, h.config.AvatarStyle),
		SEOKeywords: content.SEOKeywords(article.ArticleSummary),
	})
}

// Feed はインタビュー記事のRSS 2.0フィードを返す。
// GET /interview/feed.xml
func (h *InterviewHandler) Feed(w http.ResponseWriter, r *http.Request) {
	body, err := content.BuildRSS(h.config.Feed, h.source.ListArticles())
	if err != nil {
		slog.Error("failed to build rss feed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func filterByIndustry(in []model.ArticleSummary, industry string) []model.ArticleSummary {
	out := make([]model.ArticleSummary, 0, len(in))
	for _, a := range in {
		if strings.EqualFold(a.Industry, industry) {
			out = append(out, a)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
