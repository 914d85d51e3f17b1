package report

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/medilint/medilint/internal/domain"
)

// analyzeText computes the text-quality metrics. Character counts are
// rune counts; sentences are delimited by runs of '.', '!', '?'.
func analyzeText(text string) domain.TextAnalysis {
	totalCharacters := utf8.RuneCountInString(text)
	words := strings.Fields(text)
	sentences := splitSentences(text)

	quality := "empty"
	switch {
	case totalCharacters == 0:
		quality = "empty"
	case totalCharacters < 100:
		quality = "very_short"
	case totalCharacters < 500:
		quality = "short"
	case totalCharacters < 2000:
		quality = "medium"
	default:
		quality = "long"
	}

	avgSentenceLength := 0.0
	if len(sentences) > 0 {
		totalSentenceWords := 0
		for _, s := range sentences {
			totalSentenceWords += len(strings.Fields(s))
		}
		avgSentenceLength = math.Round(float64(totalSentenceWords)/float64(len(sentences))*10) / 10
	}

	return domain.TextAnalysis{
		TotalCharacters:   totalCharacters,
		TotalWords:        len(words),
		TotalSentences:    len(sentences),
		TextQuality:       quality,
		AvgSentenceLength: avgSentenceLength,
		ReadabilityScore:  readability(words, len(sentences)),
	}
}

// splitSentences returns the non-empty sentence segments of text.
func splitSentences(text string) []string {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// readability scores how easy the text reads, 0 to 100, higher is
// easier. Long sentences and long words lower the score.
func readability(words []string, sentenceCount int) float64 {
	if len(words) == 0 || sentenceCount == 0 {
		return 0
	}

	avgSentenceLength := float64(len(words)) / float64(sentenceCount)

	totalWordRunes := 0
	for _, w := range words {
		totalWordRunes += utf8.RuneCountInString(w)
	}
	avgWordLength := float64(totalWordRunes) / float64(len(words))

	score := 100 - (avgSentenceLength*0.5 + avgWordLength*2)
	return math.Max(0, math.Min(100, score))
}
