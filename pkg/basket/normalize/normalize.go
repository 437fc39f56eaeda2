package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Domain selects which items are extracted from a post.
type Domain string

const (
	// DomainEmoji keeps emoji code points only.
	DomainEmoji Domain = "emoji"
	// DomainWords keeps whitespace-delimited words, emoji runs included.
	DomainWords Domain = "words"
)

// ParseDomain accepts the canonical names plus a few aliases.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "emoji", "emoji-only", "emoji_only":
		return DomainEmoji, nil
	case "words", "word", "word-and-emoji", "emoji_word", "emoji-word":
		return DomainWords, nil
	}
	return "", fmt.Errorf("unknown item domain %q", s)
}

// linkPattern matches "http" followed by a run of non-whitespace, using the
// same whitespace set as isSpace.
var linkPattern = regexp.MustCompile(`http[^\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)

// isSpace matches unicode.IsSpace plus the ASCII information separators,
// which post text treats as word breaks too.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Fields splits text on whitespace.
func Fields(text string) []string {
	return strings.FieldsFunc(text, isSpace)
}

// EmojiOnly drops every rune that is not an emoji, keeping order and repeats.
func EmojiOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if IsEmoji(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RemoveLinks strips URL-like substrings and trims the result.
func RemoveLinks(text string) string {
	return strings.TrimFunc(linkPattern.ReplaceAllString(text, ""), isSpace)
}

// UniqueTokens collapses repeated words, and repeated emojis inside
// all-emoji words, keeping first occurrences. Words are joined by a single space.
func UniqueTokens(text string) string {
	words := Fields(text)
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if IsEmojiWord(w) {
			w = uniqueRunes(w)
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func uniqueRunes(w string) string {
	seen := make(map[rune]struct{}, len(w))
	var b strings.Builder
	for _, r := range w {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize applies the domain's normalization pass.
func Normalize(domain Domain, text string) string {
	switch domain {
	case DomainEmoji:
		return EmojiOnly(text)
	case DomainWords:
		return UniqueTokens(RemoveLinks(text))
	}
	return ""
}

// All normalizes every record in order.
func All(domain Domain, texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Normalize(domain, t)
	}
	return out
}
