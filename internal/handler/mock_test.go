package handler

import (
	"context"
	"errors"

	"github.com/hitoshi/aispecialist/internal/earlyaccess"
	"github.com/hitoshi/aispecialist/internal/metrics"
	"github.com/hitoshi/aispecialist/internal/model"
)

// mockRegistrationService はRegistrationServiceInterfaceのモック。
type mockRegistrationService struct {
	registerFn func(ctx context.Context, rawBody []byte, meta earlyaccess.RequestMeta) earlyaccess.Result
}

func (m *mockRegistrationService) Register(ctx context.Context, rawBody []byte, meta earlyaccess.RequestMeta) earlyaccess.Result {
	return m.registerFn(ctx, rawBody, meta)
}

// mockArticleSource はArticleSourceInterfaceのモック。
type mockArticleSource struct {
	listFn       func() []model.ArticleSummary
	getFn        func(slug string) (*model.Article, bool)
	byTagFn      func(tag string) []model.ArticleSummary
	byIndustryFn func(industry string) []model.ArticleSummary
	tagsFn       func() []string
	industriesFn func() []string
}

func (m *mockArticleSource) ListArticles() []model.ArticleSummary {
	if m.listFn == nil {
		return nil
	}
	return m.listFn()
}

func (m *mockArticleSource) GetArticle(slug string) (*model.Article, bool) {
	if m.getFn == nil {
		return nil, false
	}
	return m.getFn(slug)
}

func (m *mockArticleSource) ArticlesByTag(tag string) []model.ArticleSummary {
	return m.byTagFn(tag)
}

func (m *mockArticleSource) ArticlesByIndustry(industry string) []model.ArticleSummary {
	return m.byIndustryFn(industry)
}

func (m *mockArticleSource) AllTags() []string {
	if m.tagsFn == nil {
		return nil
	}
	return m.tagsFn()
}

func (m *mockArticleSource) AllIndustries() []string {
	if m.industriesFn == nil {
		return nil
	}
	return m.industriesFn()
}

// mockRenderer はArticleRendererInterfaceのモック。
type mockRenderer struct {
	renderFn func(body string) (string, error)
}

func (m *mockRenderer) Render(body string) (string, error) {
	return m.renderFn(body)
}

// mockHealthChecker はHealthCheckerのモック。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

var errPingFailed = errors.New("connection refused")

// viewCounter は記事閲覧数のみを数えるMetricsCollector。
type viewCounter struct {
	metrics.NopCollector
	views int
}

func (c *viewCounter) RecordArticleView() { c.views++ }
