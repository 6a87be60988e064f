package model

// ArticleSummary は一覧表示用のインタビュー記事の要約。
type ArticleSummary struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Excerpt       string   `json:"excerpt"`
	Date          string   `json:"date"`
	Author        string   `json:"author"`
	Company       string   `json:"company"`
	Industry      string   `json:"industry"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featuredImage,omitempty"`
	ReadingTime   int      `json:"readingTime"`
}

// ArticleMetadata は記事のSEOメタデータ。
// 未指定の場合は本文側のフィールドで補われる。
type ArticleMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Article は本文とメタデータを含むインタビュー記事全体。
// HTMLは本文をレンダリングしたもので、API応答時にのみ設定される。
type Article struct {
	ArticleSummary
	Content  string          `json:"content"`
	HTML     string          `json:"html,omitempty"`
	Metadata ArticleMetadata `json:"metadata"`
}
