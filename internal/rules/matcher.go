package rules

import (
	"strings"
	"unicode/utf8"

	"github.com/medilint/medilint/internal/domain"
)

// FindMatches scans text for every non-overlapping occurrence of a
// literal keyword, case-insensitively, and returns rune-offset matches.
// Each keyword is matched independently; overlapping hits across
// different keywords are preserved for the contextual filter to judge.
// Empty text or keyword yields no matches.
func FindMatches(text, keyword string) []domain.RawMatch {
	if text == "" || keyword == "" {
		return nil
	}

	haystack := strings.ToLower(text)
	needle := strings.ToLower(keyword)
	needleRunes := utf8.RuneCountInString(needle)

	var matches []domain.RawMatch
	byteOff := 0
	runeOff := 0
	for {
		idx := strings.Index(haystack[byteOff:], needle)
		if idx < 0 {
			break
		}
		runeOff += utf8.RuneCountInString(haystack[byteOff : byteOff+idx])
		matches = append(matches, domain.RawMatch{
			Keyword: keyword,
			Start:   runeOff,
			End:     runeOff + needleRunes,
		})
		byteOff += idx + len(needle)
		runeOff += needleRunes
	}
	return matches
}
