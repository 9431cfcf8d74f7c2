package estimate

import (
	"math"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// AcquisitionViability tests whether annualProfit can service a fully
// amortized loan of price on the given terms. Zero-value terms use the
// configured defaults.
func (e *Estimator) AcquisitionViability(price, annualProfit float64, loan model.LoanTerms) model.AcquisitionViability {
	if loan == (model.LoanTerms{}) {
		loan = e.DefaultLoan()
	}
	if loan.Years <= 0 {
		loan.Years = e.cfg.LoanYears
	}
	if loan.AnnualRate < 0 {
		loan.AnnualRate = e.cfg.LoanRatePct
	}

	n := float64(loan.Years * 12)
	r := loan.AnnualRate / 100 / 12

	var payment float64
	if r > 0 {
		f := math.Pow(1+r, n)
		payment = price * r * f / (f - 1)
	} else {
		payment = price / n
	}

	monthlyProfit := annualProfit / 12
	cashFlow := monthlyProfit - payment
	totalPaid := payment * n

	var payback *float64
	if monthlyProfit > 0 {
		payback = model.Float(round2(price / monthlyProfit / 12))
	}

	viable := cashFlow > 0
	risk := riskFor(cashFlow, payment)

	return model.AcquisitionViability{
		Price:           price,
		TermYears:       loan.Years,
		AnnualRatePct:   loan.AnnualRate,
		MonthlyPayment:  round2(payment),
		TotalPaid:       round2(totalPaid),
		TotalInterest:   round2(totalPaid - price),
		MonthlyProfit:   round2(monthlyProfit),
		AnnualProfit:    round2(annualProfit),
		MonthlyCashFlow: round2(cashFlow),
		AnnualCashFlow:  round2(cashFlow * 12),
		PaybackYears:    payback,
		Viable:          viable,
		Risk:            risk,
		Recommendation:  recommendationFor(viable, risk),
	}
}

// riskFor grades cash flow after debt service: low when it exceeds 30% of
// the payment, medium when positive.
func riskFor(cashFlow, payment float64) model.RiskLevel {
	switch {
	case cashFlow > payment*0.3:
		return model.RiskLow
	case cashFlow > 0:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

func recommendationFor(viable bool, risk model.RiskLevel) string {
	if !viable {
		return model.RecommendationNotRecommended
	}
	switch risk {
	case model.RiskLow:
		return model.RecommendationRecommended
	case model.RiskMedium:
		return model.RecommendationAcceptable
	default:
		return model.RecommendationRisky
	}
}
