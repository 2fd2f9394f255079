package synthesis

import (
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

var (
	urlCheck     = regexp.MustCompile(`(?i)https?://`)
	hashtagCheck = regexp.MustCompile(`#\S`)
	domainCheck  = regexp.MustCompile(`(?i)\b\w+\.(com|ly|io|net|org)\b`)
)

func TestSanitizeStripsLinksAndHashtags(t *testing.T) {
	inputs := []string{
		"Check this out https://example.com/deal #sale #bargain",
		"visit example.com or bit.ly/xyz for more",
		"nested (https://a.b/c?x=1#frag) parens",
		"#onlyhashtags #here",
		"plain text with no noise at all",
		"UPPERCASE.COM should also go",
		"http:// partial scheme residue",
		"output truncated right after https://",
	}
	for _, in := range inputs {
		out := Sanitize(in, 240)
		if urlCheck.MatchString(out) {
			t.Errorf("sanitized output still contains a URL: %q -> %q", in, out)
		}
		if hashtagCheck.MatchString(out) {
			t.Errorf("sanitized output still contains a hashtag: %q -> %q", in, out)
		}
		if domainCheck.MatchString(out) {
			t.Errorf("sanitized output still contains a domain: %q -> %q", in, out)
		}
	}
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	out := Sanitize("too   many\n\nspaces\there", 240)
	if strings.Contains(out, "  ") || strings.ContainsAny(out, "\n\t") {
		t.Errorf("whitespace not collapsed: %q", out)
	}
}

func TestSanitizeTruncatesAtWordBoundary(t *testing.T) {
	in := strings.Repeat("word ", 100)
	out := Sanitize(in, 50)
	if utf8.RuneCountInString(out) > 50 {
		t.Errorf("output exceeds max length: %d runes", utf8.RuneCountInString(out))
	}
	if strings.HasSuffix(out, "wor") || strings.HasSuffix(out, "w") {
		t.Errorf("truncation split a word: %q", out)
	}
	for _, w := range strings.Fields(out) {
		if w != "word" {
			t.Errorf("unexpected fragment %q in %q", w, out)
		}
	}
}

func TestSanitizeShortInputUnchanged(t *testing.T) {
	if got := Sanitize("short and clean", 240); got != "short and clean" {
		t.Errorf("clean input modified: %q", got)
	}
}
