package release

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxItemsPerSection = 12
	maxItemRunes       = 140
	maxBodyRunes       = 3500
	emptyBody          = "• misc improvements & fixes"
)

type bucket struct {
	title string
	match *regexp.Regexp
}

var buckets = []bucket{
	{"✨ Features", regexp.MustCompile(`(?i)^(feat|feature)(\(|:)`)},
	{"🐞 Fixes", regexp.MustCompile(`(?i)^(fix|bug)(\(|:)`)},
	{"⚖️ Balance", regexp.MustCompile(`(?i)^(balance|tweak)(\(|:)`)},
	{"🧹 Refactor", regexp.MustCompile(`(?i)^refactor(\(|:)`)},
	{"📝 Docs", regexp.MustCompile(`(?i)^docs(\(|:)`)},
	{"📦 Other", regexp.MustCompile(`.`)},
}

var typePrefix = regexp.MustCompile(`^[a-zA-Z]+(\([^)]+\))?:\s*`)

// Compose groups commit subjects into release note sections.
func Compose(lines []string) string {
	items := make([][]string, len(buckets))
	for _, raw := range lines {
		clean := tidy(strings.TrimLeft(raw, "• "))
		for i, b := range buckets {
			if b.match.MatchString(raw) {
				items[i] = append(items[i], "• "+clean)
				break
			}
		}
	}
	var parts []string
	for i, b := range buckets {
		if len(items[i]) == 0 {
			continue
		}
		parts = append(parts, "**"+b.title+"**")
		parts = append(parts, items[i][:min(len(items[i]), maxItemsPerSection)]...)
	}
	if len(parts) == 0 {
		return emptyBody
	}
	return shorten(strings.Join(parts, "\n"), maxBodyRunes)
}

// tidy strips a conventional commit type(scope): prefix and caps the length.
func tidy(msg string) string {
	msg = strings.TrimSpace(typePrefix.ReplaceAllString(strings.TrimSpace(msg), ""))
	if utf8.RuneCountInString(msg) > maxItemRunes {
		return string([]rune(msg)[:maxItemRunes]) + "…"
	}
	return msg
}

// shorten cuts s at a word boundary so that it fits in n runes including
// the trailing " …".
func shorten(s string, n int) string {
	const placeholder = " …"
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n-utf8.RuneCountInString(placeholder)]
	cut := len(runes)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + placeholder
}
