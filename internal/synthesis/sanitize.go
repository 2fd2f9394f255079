package synthesis

import (
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)\bhttps?://\S*`)
	domainPattern  = regexp.MustCompile(`(?i)\b[a-z0-9][a-z0-9-]*(\.[a-z0-9][a-z0-9-]*)+(/\S*)?`)
	hashtagPattern = regexp.MustCompile(`#\S+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Sanitize strips URLs, bare domain-like tokens and hashtags from text,
// collapses whitespace and truncates to maxLen at a word boundary. The
// output never contains a link or hashtag regardless of what the
// generative provider produced.
func Sanitize(text string, maxLen int) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = domainPattern.ReplaceAllString(text, "")
	text = hashtagPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return truncateAtWord(text, maxLen)
}

// truncateAtWord cuts text to at most maxLen runes, backing up to the last
// space so words are never split.
func truncateAtWord(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	cut := string(runes[:maxLen])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
