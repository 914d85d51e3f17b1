package rules

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	text := "첫째 줄입니다.\n둘째 줄에 최고의 병원이 있습니다.\n\n새 문단입니다."
	matches := FindMatches(text, "최고")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	loc := Resolve(text, matches[0].Start)

	if loc.Line != 2 {
		t.Errorf("line = %d, want 2", loc.Line)
	}
	if loc.Column != 7 {
		t.Errorf("column = %d, want 7", loc.Column)
	}
	if loc.Paragraph != 1 {
		t.Errorf("paragraph = %d, want 1", loc.Paragraph)
	}
	if loc.PositionPercentage != 39.5 {
		t.Errorf("percentage = %v, want 39.5", loc.PositionPercentage)
	}
	if loc.SentenceContext != "둘째 줄에 최고의 병원이 있습니다" {
		t.Errorf("sentence = %q", loc.SentenceContext)
	}
	if !strings.Contains(loc.ParagraphContext, "둘째 줄에") {
		t.Errorf("paragraph context = %q", loc.ParagraphContext)
	}
	if loc.ExactLocation() != "문단 1, 줄 2, 열 7" {
		t.Errorf("exact location = %q", loc.ExactLocation())
	}
}

func TestResolveLineColumnRoundTrip(t *testing.T) {
	// Slicing the reported line at the reported column must land on
	// the matched keyword.
	text := "안전한 진료를 약속합니다.\n저희는 완벽한 결과를 보장합니다.\n문의는 전화로 주세요."
	for _, keyword := range []string{"완벽한", "보장"} {
		matches := FindMatches(text, keyword)
		if len(matches) != 1 {
			t.Fatalf("%s: got %d matches, want 1", keyword, len(matches))
		}

		loc := Resolve(text, matches[0].Start)
		lines := strings.Split(text, "\n")
		if loc.Line < 1 || loc.Line > len(lines) {
			t.Fatalf("%s: line %d out of range", keyword, loc.Line)
		}
		lineRunes := []rune(lines[loc.Line-1])
		rest := string(lineRunes[loc.Column-1:])
		if !strings.HasPrefix(rest, keyword) {
			t.Errorf("%s: line %d column %d points at %q", keyword, loc.Line, loc.Column, rest)
		}
	}
}

func TestResolveSecondParagraph(t *testing.T) {
	text := "소개 문단입니다.\n\n저희 병원은 최고 수준입니다."
	matches := FindMatches(text, "최고")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	loc := Resolve(text, matches[0].Start)
	if loc.Paragraph != 2 {
		t.Errorf("paragraph = %d, want 2", loc.Paragraph)
	}
	if loc.ParagraphContext != "저희 병원은 최고 수준입니다." {
		t.Errorf("paragraph context = %q", loc.ParagraphContext)
	}
}

func TestResolveParagraphBoundaries(t *testing.T) {
	text := "A\n\nB\n\nC"
	pos := strings.IndexRune(text, 'B') // ascii, byte offset equals rune offset

	loc := Resolve(text, pos)
	if loc.Paragraph != 2 {
		t.Errorf("paragraph = %d, want 2", loc.Paragraph)
	}
	if loc.Line != 3 {
		t.Errorf("line = %d, want 3", loc.Line)
	}
	if loc.Column != 1 {
		t.Errorf("column = %d, want 1", loc.Column)
	}
}

func TestResolveEdgeCases(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		loc := Resolve("", 0)
		if loc.Line != 1 || loc.Column != 1 {
			t.Errorf("line,column = %d,%d, want 1,1", loc.Line, loc.Column)
		}
		if loc.PositionPercentage != 0 {
			t.Errorf("percentage = %v, want 0", loc.PositionPercentage)
		}
	})

	t.Run("position zero", func(t *testing.T) {
		loc := Resolve("최고의 병원", 0)
		if loc.Line != 1 || loc.Column != 1 {
			t.Errorf("line,column = %d,%d, want 1,1", loc.Line, loc.Column)
		}
		if loc.PositionPercentage != 0 {
			t.Errorf("percentage = %v, want 0", loc.PositionPercentage)
		}
	})

	t.Run("out of range clamps", func(t *testing.T) {
		loc := Resolve("짧은 글", 999)
		if loc.PositionPercentage != 100 {
			t.Errorf("percentage = %v, want 100", loc.PositionPercentage)
		}
		if loc.Line != 1 {
			t.Errorf("line = %d, want 1", loc.Line)
		}
	})

	t.Run("negative position clamps", func(t *testing.T) {
		loc := Resolve("짧은 글", -5)
		if loc.Line != 1 || loc.Column != 1 {
			t.Errorf("line,column = %d,%d, want 1,1", loc.Line, loc.Column)
		}
	})
}
