package content

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatterDelimiter は先頭のYAMLブロックの区切り行。
const frontMatterDelimiter = "---"

// frontMatter は記事ファイル先頭のYAMLブロック。
type frontMatter struct {
	Title           scalar   `yaml:"title"`
	Excerpt         scalar   `yaml:"excerpt"`
	Date            scalar   `yaml:"date"`
	Author          scalar   `yaml:"author"`
	Company         scalar   `yaml:"company"`
	Industry        scalar   `yaml:"industry"`
	Tags            []scalar `yaml:"tags"`
	FeaturedImage   scalar   `yaml:"featuredImage"`
	MetaTitle       scalar   `yaml:"metaTitle"`
	MetaDescription scalar   `yaml:"metaDescription"`
	Keywords        []scalar `yaml:"keywords"`
}

// scalar はYAMLのスカラー値を書かれたままの文字列として受け取る。
// `date: 2024-01-15` のようなタイムスタンプや数値のタグも文字列として扱う。
type scalar string

// UnmarshalYAML はyaml.Unmarshalerを実装する。
func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*s = ""
			return nil
		}
		*s = scalar(node.Value)
		return nil
	case yaml.AliasNode:
		return s.UnmarshalYAML(node.Alias)
	default:
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
}

func (s scalar) String() string {
	return strings.TrimSpace(string(s))
}

func scalarsToStrings(in []scalar) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if str := v.String(); str != "" {
			out = append(out, str)
		}
	}
	return out
}

// parseDocument は記事ファイルをフロントマターと本文に分割する。
// 先頭に区切り行がない場合はフロントマターなしとして全体を本文とする。
func parseDocument(raw []byte) (frontMatter, string, error) {
	var fm frontMatter

	text := strings.TrimPrefix(string(raw), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	firstLine, rest, _ := strings.Cut(text, "\n")
	if strings.TrimRight(firstLine, " \t") != frontMatterDelimiter {
		return fm, text, nil
	}

	yamlContent, body, found := cutClosingDelimiter(rest)
	if !found {
		return fm, "", fmt.Errorf("no closing front-matter delimiter found")
	}

	if strings.TrimSpace(yamlContent) != "" {
		dec := yaml.NewDecoder(bytes.NewReader([]byte(yamlContent)))
		if err := dec.Decode(&fm); err != nil {
			return fm, "", fmt.Errorf("parsing front-matter YAML: %w", err)
		}
	}

	return fm, body, nil
}

// cutClosingDelimiter は閉じ区切り行の前後でテキストを分割する。
func cutClosingDelimiter(s string) (before, after string, found bool) {
	offset := 0
	for offset <= len(s) {
		line, next, more := strings.Cut(s[offset:], "\n")
		if strings.TrimRight(line, " \t") == frontMatterDelimiter {
			after = ""
			if more {
				after = next
			}
			return s[:offset], after, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return "", "", false
}
