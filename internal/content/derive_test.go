package content

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/hitoshi/aispecialist/internal/model"
)

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty", "", 1},
		{"short", "short", 1},
		{"400 chars", strings.Repeat("a", 400), 1},
		{"401 chars", strings.Repeat("a", 401), 2},
		{"1200 chars", strings.Repeat("a", 1200), 3},
		{"japanese counts characters", strings.Repeat("あ", 800), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingTime(tt.body); got != tt.want {
				t.Errorf("ReadingTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestReadingTime_Properties は読了時間が常に1以上で文字数に対して単調増加することを検証する。
func TestReadingTime_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		ra := ReadingTime(a)
		if ra < 1 {
			t.Fatalf("ReadingTime(%q) = %d, want >= 1", a, ra)
		}
		if rab := ReadingTime(a + b); rab < ra {
			t.Fatalf("ReadingTime not monotonic: %d < %d", rab, ra)
		}
		if ReadingTime(a) != ra {
			t.Fatal("ReadingTime is not deterministic")
		}
	})
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Test Title: With Special Characters!", "test-title-with-special-characters"},
		{"Multiple   Spaces   Title", "multiple-spaces-title"},
		{"AIチャットボットで顧客対応を革新", "ai"},
		{"  -Leading and trailing-  ", "leading-and-trailing"},
		{"a -- b", "a-b"},
		{"snake_case_kept", "snake_case_kept"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := GenerateSlug(tt.title); got != tt.want {
				t.Errorf("GenerateSlug(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

var slugShape = regexp.MustCompile(`^([a-z0-9_]+(-[a-z0-9_]+)*)?$`)

// TestGenerateSlug_Properties はスラッグの形式と冪等性を検証する。
func TestGenerateSlug_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		title := rapid.String().Draw(t, "title")
		slug := GenerateSlug(title)

		if !slugShape.MatchString(slug) {
			t.Fatalf("GenerateSlug(%q) = %q has unexpected shape", title, slug)
		}
		if again := GenerateSlug(slug); again != slug {
			t.Fatalf("GenerateSlug not idempotent: %q -> %q", slug, again)
		}
	})
}

func TestSEOKeywords(t *testing.T) {
	a := model.ArticleSummary{
		Industry: "テクノロジー",
		Tags:     []string{"AI", "チャットボット", "AI導入"},
	}

	got := SEOKeywords(a)
	want := []string{"テクノロジー", "AI導入", "AI活用事例", "AI", "チャットボット"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SEOKeywords() = %v, want %v", got, want)
	}
}

func TestSEOKeywords_EmptyIndustryDropped(t *testing.T) {
	got := SEOKeywords(model.ArticleSummary{})
	if !reflect.DeepEqual(got, []string{"AI導入", "AI活用事例"}) {
		t.Errorf("SEOKeywords() = %v", got)
	}
}

// TestSEOKeywords_Properties はキーワードが重複せず入力の和集合と一致することを検証する。
func TestSEOKeywords_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := model.ArticleSummary{
			Industry: rapid.StringOf(rapid.RuneFrom([]rune("abcAI"))).Draw(t, "industry"),
			Tags:     rapid.SliceOf(rapid.StringOf(rapid.RuneFrom([]rune("abcAI")))).Draw(t, "tags"),
		}
		got := SEOKeywords(a)

		want := map[string]struct{}{"AI導入": {}, "AI活用事例": {}}
		if a.Industry != "" {
			want[a.Industry] = struct{}{}
		}
		for _, tag := range a.Tags {
			if tag != "" {
				want[tag] = struct{}{}
			}
		}

		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
		}
		sorted := append([]string{}, got...)
		sort.Strings(sorted)
		for i := 1; i < len(sorted); i++ {
			if sorted[i] == sorted[i-1] {
				t.Fatalf("duplicate keyword %q", sorted[i])
			}
		}
		for _, k := range got {
			if _, ok := want[k]; !ok {
				t.Fatalf("unexpected keyword %q", k)
			}
		}
	})
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2024-01-15":                "2024年1月15日",
		"2024-12-01T09:00:00+09:00": "2024年12月1日",
		"2024/03/05":                "2024年3月5日",
		"not a date":                "not a date",
	}
	for in, want := range tests {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDate_Empty(t *testing.T) {
	if _, ok := ParseDate("  "); ok {
		t.Error("blank date should not parse")
	}
}
