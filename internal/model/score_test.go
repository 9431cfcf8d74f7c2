package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  Grade
		label string
	}{
		{100, GradeAPlus, "Excellence"},
		{85, GradeAPlus, "Excellence"},
		{84.99, GradeA, "Very good"},
		{75, GradeA, "Very good"},
		{65, GradeBPlus, "Good"},
		{55, GradeB, "Satisfactory"},
		{45, GradeC, "Average"},
		{35, GradeD, "Weak"},
		{34.99, GradeF, "Critical"},
		{0, GradeF, "Critical"},
	}

	for _, tt := range tests {
		got := GradeFor(tt.score)
		assert.Equal(t, tt.want, got, "score %v", tt.score)
		assert.Equal(t, tt.label, got.Label())
	}
}

func TestGradeMonotonic(t *testing.T) {
	t.Parallel()

	prev := GradeFor(0).Rank()
	for s := 0.0; s <= 100; s += 0.25 {
		rank := GradeFor(s).Rank()
		assert.GreaterOrEqual(t, rank, prev, "grade dropped at %v", s)
		prev = rank
	}
}

func TestScoreCategoryValid(t *testing.T) {
	t.Parallel()

	for _, c := range ScoreCategories {
		assert.True(t, c.Valid(), c)
		assert.NotEqual(t, string(c), c.Label())
	}
	assert.False(t, ScoreCategory("vibes").Valid())
	assert.Equal(t, "vibes", ScoreCategory("vibes").Label())
	assert.Equal(t, "Growth potential", ScoreGrowthPotential.Label())
}

func TestOverallScoreCategory(t *testing.T) {
	t.Parallel()

	o := OverallScore{Categories: []CategoryScore{
		{Category: ScoreFinancialHealth, Score: 71.5},
		{Category: ScoreGrowthPotential, Score: 40},
	}}

	cs, ok := o.Category(ScoreGrowthPotential)
	assert.True(t, ok)
	assert.Equal(t, 40.0, cs.Score)

	_, ok = o.Category(ScoreCompetitivePosition)
	assert.False(t, ok)
}

func TestDetailsMap(t *testing.T) {
	t.Parallel()

	d := CompetitiveDetails{PriceRatioPct: 90, Position: PositionLeader, PositionScore: 100}
	m := d.Map()
	assert.Len(t, m, 6)
	assert.Equal(t, 90.0, m["price_ratio_pct"])
	assert.Equal(t, 100.0, m["position_score"])

	assert.Len(t, FinancialDetails{}.Map(), 7)
	assert.Len(t, OperationalDetails{}.Map(), 7)
	assert.Len(t, SatisfactionDetails{}.Map(), 7)
	assert.Len(t, GrowthDetails{}.Map(), 8)
}
