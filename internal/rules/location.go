package rules

import (
	"fmt"
	"math"
	"strings"
)

// Location describes where in the text a match occurred, with the
// surrounding context windows. All offsets are rune-based; line,
// column, and paragraph numbers are 1-indexed.
type Location struct {
	Line               int
	Column             int
	Paragraph          int
	ParagraphContext   string
	PositionPercentage float64
	ImmediateContext   string
	FullContext        string
	SentenceContext    string
}

// ExactLocation formats the human-readable location string.
func (l Location) ExactLocation() string {
	return fmt.Sprintf("문단 %d, 줄 %d, 열 %d", l.Paragraph, l.Line, l.Column)
}

// Resolve computes the full location record for a rune position in
// text. It is pure and never fails for 0 <= pos <= rune length;
// out-of-range positions are clamped.
func Resolve(text string, pos int) Location {
	runes := []rune(text)
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}

	line, column := lineAndColumn(text, pos)
	paragraph, paragraphContext := paragraphAt(text, pos)

	percentage := 0.0
	if len(runes) > 0 {
		percentage = math.Round(float64(pos)/float64(len(runes))*1000) / 10
	}

	full := window(runes, pos, 150)
	return Location{
		Line:               line,
		Column:             column,
		Paragraph:          paragraph,
		ParagraphContext:   paragraphContext,
		PositionPercentage: percentage,
		ImmediateContext:   strings.TrimSpace(window(runes, pos, 50)),
		FullContext:        full,
		SentenceContext:    sentenceIn(full, pos-max(0, pos-150)),
	}
}

// lineAndColumn walks the text's lines accumulating rune counts (+1
// per consumed newline) until the running total reaches pos. Positions
// past the end resolve to the last line, column 1.
func lineAndColumn(text string, pos int) (int, int) {
	lines := strings.Split(text, "\n")
	count := 0
	for i, line := range lines {
		lineLen := len([]rune(line))
		if count+lineLen >= pos {
			return i + 1, pos - count + 1
		}
		count += lineLen + 1
	}
	return len(lines), 1
}

// paragraphAt returns the 1-indexed paragraph number containing pos
// and the paragraph's text. Paragraphs are delimited by blank lines.
func paragraphAt(text string, pos int) (int, string) {
	paragraphs := strings.Split(text, "\n\n")
	count := 0
	for i, paragraph := range paragraphs {
		pLen := len([]rune(paragraph))
		if pos < count+pLen {
			return i + 1, strings.TrimSpace(paragraph)
		}
		count += pLen + 2
	}
	last := ""
	if len(paragraphs) > 0 {
		last = strings.TrimSpace(paragraphs[len(paragraphs)-1])
	}
	return len(paragraphs), last
}

// window extracts the ±radius rune window around pos.
func window(runes []rune, pos, radius int) string {
	start := max(0, pos-radius)
	end := min(len(runes), pos+radius)
	return string(runes[start:end])
}

// sentenceIn extracts the '.'-delimited sentence containing rel (a
// rune offset into the window). Falls back to the whole window when no
// sentence boundary is found.
func sentenceIn(windowText string, rel int) string {
	runes := []rune(windowText)
	if rel < 0 {
		rel = 0
	}
	if rel > len(runes) {
		rel = len(runes)
	}

	start := 0
	for i := rel - 1; i >= 0; i-- {
		if runes[i] == '.' {
			start = i + 1
			break
		}
	}

	end := len(runes)
	for i := rel; i < len(runes); i++ {
		if runes[i] == '.' {
			end = i
			break
		}
	}

	sentence := strings.TrimSpace(string(runes[start:end]))
	if sentence == "" {
		return windowText
	}
	return sentence
}
