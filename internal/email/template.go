package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #7c3aed; text-align: center; margin-bottom: 30px;">AIスペシャリスト.com</h1>
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 12px; color: white; text-align: center; margin-bottom: 30px;">
    <h2 style="margin: 0 0 15px 0; font-size: 24px;">先行登録ありがとうございます！</h2>
    <p style="margin: 0; font-size: 16px; opacity: 0.9;">{{if .Name}}{{.Name}}様、{{end}}AIの力でビジネスを加速させる準備はいかがですか？</p>
  </div>
  <div style="background: #f8fafc; padding: 25px; border-radius: 8px; margin-bottom: 25px;">
    <h3 style="color: #1e293b; margin-top: 0;">先行登録者限定の特別特典</h3>
    <ul style="color: #475569; line-height: 1.8;">
      <li>🎯 <strong>無料個別相談</strong>（通常価格：30,000円）</li>
      <li>📚 <strong>AI活用ガイドブック</strong>（PDF版）</li>
      <li>🚀 <strong>ローンチ時30%OFF</strong>のクーポン</li>
      <li>💡 <strong>最新AI情報</strong>の優先配信</li>
    </ul>
  </div>
  <div style="text-align: center; margin: 30px 0;">
    <p style="color: #64748b; margin: 0;">サービス開始まで今しばらくお待ちください。</p>
    <p style="color: #64748b; margin: 10px 0 0 0;">最新情報をいち早くお届けいたします！</p>
  </div>
  <hr style="border: none; border-top: 1px solid #e2e8f0; margin: 30px 0;">
  <div style="text-align: center; color: #94a3b8; font-size: 14px;">
    <p>AIスペシャリスト.com チーム</p>
    <p>このメールに心当たりがない場合は、<a href="mailto:support@aispecialist.com" style="color: #7c3aed;">support@aispecialist.com</a>までご連絡ください。</p>
  </div>
</div>
`))

// RenderWelcomeHTML はウェルカムメールのHTML本文を生成する。
// nameはHTMLエスケープされる。
func RenderWelcomeHTML(name string) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, struct{ Name string }{Name: strings.TrimSpace(name)}); err != nil {
		return "", fmt.Errorf("メール本文の生成に失敗しました: %w", err)
	}
	return buf.String(), nil
}

// blockElements はテキスト変換時に改行を挟む要素。
var blockElements = map[string]bool{
	"div": true, "p": true, "h1": true, "h2": true, "h3": true,
	"li": true, "ul": true, "hr": true, "br": true,
}

// PlainText はHTML本文からテキスト版の本文を生成する。
// ブロック要素ごとに1行とし、空行は除去する。
func PlainText(htmlBody string) string {
	z := html.NewTokenizer(strings.NewReader(htmlBody))
	var lines []string
	var cur strings.Builder

	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			flush()
			return strings.Join(lines, "\n")
		case html.TextToken:
			cur.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockElements[string(name)] {
				flush()
			}
		}
	}
}
