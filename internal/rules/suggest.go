package rules

import (
	"fmt"
	"strings"
)

// suggestedFixes produces replacement suggestions for a flagged
// keyword: a keyword-specific rewrite when one is known, followed by
// the general guidance that applies to every violation.
func suggestedFixes(keyword string) []string {
	var fixes []string

	switch {
	case strings.Contains(keyword, "최고"):
		fixes = append(fixes, fmt.Sprintf("'%s' → '우수한', '탁월한' 등으로 변경", keyword))
	case strings.Contains(keyword, "완치"), strings.Contains(keyword, "치료"):
		fixes = append(fixes, fmt.Sprintf("'%s' → '개선', '호전' 등으로 변경", keyword))
	case strings.Contains(keyword, "보장"):
		fixes = append(fixes, fmt.Sprintf("'%s' → '도움', '효과' 등으로 변경", keyword))
	case strings.Contains(keyword, "비교"):
		fixes = append(fixes, fmt.Sprintf("'%s' → 객관적 사실만 기술", keyword))
	case strings.Contains(keyword, "후기"), strings.Contains(keyword, "경험담"):
		fixes = append(fixes, fmt.Sprintf("'%s' → 제거 또는 객관적 정보만 포함", keyword))
	}

	fixes = append(fixes,
		"과장된 표현을 객관적 사실로 변경",
		"절대적 표현을 상대적 표현으로 변경",
		"의료적 효과를 보장하는 표현 제거",
	)
	return fixes
}
