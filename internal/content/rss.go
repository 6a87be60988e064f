package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/hitoshi/aispecialist/internal/model"
)

// Channel はRSSフィードのチャンネル情報。
type Channel struct {
	Title       string
	Link        string // サイトのベースURL
	Description string
	Language    string
}

// BuildRSS は記事一覧からRSS 2.0のXMLを生成する。
// 記事のリンクは <Link>/interview/<slug> となり、カテゴリには業界を設定する。
func BuildRSS(ch Channel, articles []model.ArticleSummary) ([]byte, error) {
	base := strings.TrimRight(ch.Link, "/")

	feed := &feeds.Feed{
		Title:       ch.Title,
		Link:        &feeds.Link{Href: base + "/interview"},
		Description: ch.Description,
		Items:       make([]*feeds.Item, 0, len(articles)),
	}

	var latest time.Time
	for _, a := range articles {
		link := base + "/interview/" + a.Slug
		item := &feeds.Item{
			Title:       a.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: a.Excerpt,
		}
		if a.Author != "" {
			item.Author = &feeds.Author{Name: a.Author}
		}
		if t, ok := ParseDate(a.Date); ok {
			item.Created = t
			if t.After(latest) {
				latest = t
			}
		}
		feed.Items = append(feed.Items, item)
	}
	feed.Updated = latest

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = ch.Language
	for i, a := range articles {
		rss.Items[i].Category = a.Industry
	}

	out, err := feeds.ToXML(rss)
	if err != nil {
		return nil, fmt.Errorf("encoding rss: %w", err)
	}
	return []byte(out), nil
}
