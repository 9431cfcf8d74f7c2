package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sev  Severity
		want float64
	}{
		{SeverityCritical, 1.0},
		{SeverityHigh, 0.8},
		{SeverityMedium, 0.6},
		{SeverityLow, 0.4},
		{SeverityOpportunity, 0.7},
		{Severity("bogus"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.sev), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.sev.Weight())
			assert.Equal(t, tt.want != 0, tt.sev.Valid())
		})
	}
}

func TestEnumValid(t *testing.T) {
	t.Parallel()

	assert.True(t, CategoryHuman.Valid())
	assert.False(t, Category("legal").Valid())
	assert.True(t, TimeframeLongTerm.Valid())
	assert.False(t, Timeframe("court_terme").Valid())
	assert.True(t, RiskMedium.Valid())
	assert.False(t, RiskLevel("extreme").Valid())
}

func TestFloat(t *testing.T) {
	t.Parallel()

	p := Float(3.5)
	q := Float(3.5)
	assert.Equal(t, 3.5, *p)
	assert.NotSame(t, p, q)
}
