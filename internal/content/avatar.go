package content

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Person はアバター生成に使うインタビュー対象者の情報。
type Person struct {
	Name    string
	Company string
}

// AvatarStyle はアバター画像の生成方式。
type AvatarStyle string

const (
	AvatarDiceBear AvatarStyle = "dicebear"
	AvatarText     AvatarStyle = "text"
	AvatarRoboHash AvatarStyle = "robohash"
)

// AvatarURL は指定方式のアバター画像URLを返す。未知の方式はDiceBearとして扱う。
// 同じ人物には常に同じURLを返す。
func AvatarURL(p Person, style AvatarStyle) string {
	switch style {
	case AvatarText:
		return textAvatarURL(p)
	case AvatarRoboHash:
		return roboHashURL(p)
	default:
		return diceBearURL(p)
	}
}

func diceBearURL(p Person) string {
	q := url.Values{}
	q.Set("seed", p.Name+p.Company)
	q.Set("backgroundColor", "065f46")
	q.Set("clothesColor", "1f2937")
	q.Set("skinColor", "fdbcb4")
	return "https://api.dicebear.com/7.x/avataaars/svg?" + q.Encode()
}

func roboHashURL(p Person) string {
	return "https://robohash.org/" + url.PathEscape(p.Name+p.Company) + "?set=set4&size=200x200"
}

func textAvatarURL(p Person) string {
	q := url.Values{}
	q.Set("name", Initials(p.Name))
	q.Set("background", "3b82f6")
	q.Set("color", "ffffff")
	q.Set("size", "200")
	q.Set("bold", "true")
	q.Set("format", "svg")
	return "https://ui-avatars.com/api/?" + q.Encode()
}

// Initials は空白区切りの各語の先頭文字を大文字で最大2文字返す。
func Initials(name string) string {
	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
		count++
		if count == 2 {
			break
		}
	}
	return strings.ToUpper(b.String())
}
