package analyzer

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// summaryPrinter groups thousands in amounts.
var summaryPrinter = message.NewPrinter(language.English)

const (
	summaryWidth = 76
	topInsights  = 5
)

// Summary renders a plain-text executive summary: overall score, category
// scores, the highest-priority insights and the acquisition analysis when
// present.
func Summary(result *model.AnalysisResult) string {
	if result == nil {
		return ""
	}
	p := summaryPrinter
	var b strings.Builder

	rule := strings.Repeat("=", summaryWidth)
	b.WriteString(rule + "\n")
	b.WriteString(center("GYM AUDIT - EXECUTIVE SUMMARY", summaryWidth) + "\n")
	b.WriteString(rule + "\n\n")

	s := result.Scores
	b.WriteString(p.Sprintf("OVERALL SCORE: %.2f/100 - %s (%s)\n\n", s.Score, s.Grade, s.GradeLabel))

	b.WriteString("CATEGORY SCORES:\n")
	for _, c := range model.ScoreCategories {
		cs, ok := s.Category(c)
		if !ok {
			continue
		}
		b.WriteString(p.Sprintf("  - %s: %.2f/100\n", c.Label(), cs.Score))
	}

	top := make([]model.Insight, len(result.Insights))
	copy(top, result.Insights)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Priority > top[j].Priority
	})
	if len(top) > topInsights {
		top = top[:topInsights]
	}

	b.WriteString("\nTOP PRIORITIES:\n")
	if len(top) == 0 {
		b.WriteString("  none\n")
	}
	for i, in := range top {
		b.WriteString(p.Sprintf("\n%d. [%s] %s\n", i+1, strings.ToUpper(string(in.Severity)), in.Title))
		b.WriteString(p.Sprintf("   Impact: %.0f/100 | Priority: %.2f/100\n", in.Impact, in.Priority))
	}

	if acq := result.Acquisition; acq != nil {
		b.WriteString("\nACQUISITION ANALYSIS:\n")
		b.WriteString(p.Sprintf("  - Price: %.0f\n", acq.Price))
		b.WriteString(p.Sprintf("  - Monthly loan payment: %.2f\n", acq.MonthlyPayment))
		b.WriteString(p.Sprintf("  - Monthly cash flow after loan: %.2f\n", acq.MonthlyCashFlow))
		b.WriteString(p.Sprintf("  - Risk level: %s\n", acq.Risk))
		b.WriteString(p.Sprintf("  - Recommendation: %s\n", acq.Recommendation))
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
