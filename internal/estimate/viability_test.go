package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func TestAcquisitionViabilitySample(t *testing.T) {
	t.Parallel()

	v := newEstimator().AcquisitionViability(160000, 120000, model.LoanTerms{})

	assert.InDelta(t, 160000, v.Price, 1e-9)
	assert.Equal(t, 7, v.TermYears)
	assert.InDelta(t, 4, v.AnnualRatePct, 1e-9)
	assert.InDelta(t, 2187.01, v.MonthlyPayment, 1e-9)
	assert.InDelta(t, 183708.76, v.TotalPaid, 1e-9)
	assert.InDelta(t, 23708.76, v.TotalInterest, 1e-9)
	assert.InDelta(t, 10000, v.MonthlyProfit, 1e-9)
	assert.InDelta(t, 120000, v.AnnualProfit, 1e-9)
	assert.InDelta(t, 7812.99, v.MonthlyCashFlow, 1e-9)
	assert.InDelta(t, 93755.89, v.AnnualCashFlow, 1e-9)
	require.NotNil(t, v.PaybackYears)
	assert.InDelta(t, 1.33, *v.PaybackYears, 1e-9)
	assert.True(t, v.Viable)
	assert.Equal(t, model.RiskLow, v.Risk)
	assert.Equal(t, model.RecommendationRecommended, v.Recommendation)
}

func TestAcquisitionViabilityRiskBands(t *testing.T) {
	t.Parallel()

	// 84000 over 7 years at 0% is a 1000 monthly payment.
	loan := model.LoanTerms{Years: 7, AnnualRate: 0}

	tests := []struct {
		name           string
		annualProfit   float64
		viable         bool
		risk           model.RiskLevel
		recommendation string
	}{
		{"comfortable", 24000, true, model.RiskLow, model.RecommendationRecommended},
		{"tight", 14400, true, model.RiskMedium, model.RecommendationAcceptable},
		{"break-even", 12000, false, model.RiskHigh, model.RecommendationNotRecommended},
		{"loss", -6000, false, model.RiskHigh, model.RecommendationNotRecommended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := newEstimator().AcquisitionViability(84000, tt.annualProfit, loan)
			assert.InDelta(t, 1000, v.MonthlyPayment, 1e-9)
			assert.InDelta(t, 84000, v.TotalPaid, 1e-9)
			assert.Zero(t, v.TotalInterest)
			assert.Equal(t, tt.viable, v.Viable)
			assert.Equal(t, tt.risk, v.Risk)
			assert.Equal(t, tt.recommendation, v.Recommendation)
		})
	}
}

func TestAcquisitionViabilityNoPaybackWithoutProfit(t *testing.T) {
	t.Parallel()

	v := newEstimator().AcquisitionViability(100000, 0, model.LoanTerms{})
	assert.Nil(t, v.PaybackYears)
	assert.False(t, v.Viable)

	v = newEstimator().AcquisitionViability(100000, -5000, model.LoanTerms{})
	assert.Nil(t, v.PaybackYears)
}

func TestAcquisitionViabilityCustomTerms(t *testing.T) {
	t.Parallel()

	short := newEstimator().AcquisitionViability(160000, 120000, model.LoanTerms{Years: 3, AnnualRate: 4})
	long := newEstimator().AcquisitionViability(160000, 120000, model.LoanTerms{Years: 10, AnnualRate: 4})

	assert.Equal(t, 3, short.TermYears)
	assert.Greater(t, short.MonthlyPayment, long.MonthlyPayment)
	assert.Less(t, short.TotalInterest, long.TotalInterest)

	// Missing years fall back to the configured term.
	v := newEstimator().AcquisitionViability(160000, 120000, model.LoanTerms{AnnualRate: 4})
	assert.Equal(t, 7, v.TermYears)
}

func TestRecommendationFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.RecommendationNotRecommended, recommendationFor(false, model.RiskLow))
	assert.Equal(t, model.RecommendationRecommended, recommendationFor(true, model.RiskLow))
	assert.Equal(t, model.RecommendationAcceptable, recommendationFor(true, model.RiskMedium))
	assert.Equal(t, model.RecommendationRisky, recommendationFor(true, model.RiskHigh))
}
