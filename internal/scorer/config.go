// Package scorer rates a gym on five weighted performance dimensions.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// weightTolerance is how far the weight sum may drift from 1.0.
const weightTolerance = 1e-6

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	// All weights must be non-negative.
	weights := []struct {
		name string
		w    float64
	}{
		{"financial_health", c.Weights.FinancialHealth},
		{"operational_efficiency", c.Weights.OperationalEfficiency},
		{"member_satisfaction", c.Weights.MemberSatisfaction},
		{"growth_potential", c.Weights.GrowthPotential},
		{"competitive_position", c.Weights.CompetitivePosition},
	}
	for _, w := range weights {
		if w.w < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", w.name))
		}
	}

	sum := c.Weights.Sum()
	if math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.4f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// weightFor returns the configured weight of a dimension.
func weightFor(c config.ScoringConfig, cat model.ScoreCategory) float64 {
	switch cat {
	case model.ScoreFinancialHealth:
		return c.Weights.FinancialHealth
	case model.ScoreOperationalEfficiency:
		return c.Weights.OperationalEfficiency
	case model.ScoreMemberSatisfaction:
		return c.Weights.MemberSatisfaction
	case model.ScoreGrowthPotential:
		return c.Weights.GrowthPotential
	case model.ScoreCompetitivePosition:
		return c.Weights.CompetitivePosition
	default:
		return 0
	}
}
