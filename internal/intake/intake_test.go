package intake

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func minimalDoc() map[string]any {
	return map[string]any{
		"monthly_revenue":      36000.0,
		"active_subscriptions": 180.0,
		"total_area_m2":        500.0,
		"coaches":              4.0,
	}
}

func TestFieldNames(t *testing.T) {
	t.Parallel()

	names := FieldNames()
	assert.Len(t, names, 35)
	assert.Equal(t, "monthly_revenue", names[0])
	assert.Equal(t, "market_position", names[34])
	for _, r := range RequiredFields {
		assert.Contains(t, names, r)
	}
}

func TestFromMapDefaults(t *testing.T) {
	t.Parallel()

	m, err := FromMap(minimalDoc())
	require.NoError(t, err)

	assert.InDelta(t, 36000, m.MonthlyRevenue, 1e-9)
	assert.Equal(t, 180, m.ActiveSubscriptions)
	assert.InDelta(t, 500, m.TotalAreaM2, 1e-9)
	assert.Equal(t, 4, m.Coaches)

	assert.InDelta(t, 50, m.AttendanceRate, 1e-9)
	assert.InDelta(t, 12, m.MemberTenureMonths, 1e-9)
	assert.InDelta(t, 3, m.EquipmentAgeYears, 1e-9)
	assert.Equal(t, 20, m.MaxCapacity)
	assert.InDelta(t, 2, m.CoachTenureYears, 1e-9)
	assert.Equal(t, 30, m.ClassesPerWeek)
	assert.InDelta(t, 70, m.ClassFillRate, 1e-9)
	assert.InDelta(t, 70, m.OpeningHoursPerWeek, 1e-9)
	assert.InDelta(t, 500, m.MarketingBudget, 1e-9)
	assert.InDelta(t, 0.02, m.EngagementRate, 1e-9)
	assert.Equal(t, 10, m.ReviewCount)
	assert.InDelta(t, 4.5, m.ReviewRating, 1e-9)
	assert.Equal(t, 2, m.Competitors)
	assert.InDelta(t, 200, m.CompetitorPrice, 1e-9)
	assert.Equal(t, model.PositionFollower, m.MarketPosition)

	assert.Zero(t, m.FixedCosts)
	assert.Zero(t, m.NewMembers)
	assert.Zero(t, m.SocialFollowers)

	// Derived fields.
	assert.InDelta(t, 45, m.CoachMemberRatio, 1e-9)
	assert.InDelta(t, 200, m.AveragePrice, 1e-9)
}

func TestFromMapKeepsProvidedDerivedFields(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc["coach_member_ratio"] = 30.0
	doc["average_price"] = 180.0

	m, err := FromMap(doc)
	require.NoError(t, err)
	assert.InDelta(t, 30, m.CoachMemberRatio, 1e-9)
	assert.InDelta(t, 180, m.AveragePrice, 1e-9)
}

func TestFromMapCoercion(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc["monthly_revenue"] = "36000.50"
	doc["active_subscriptions"] = "180"
	doc["new_members"] = 7.9
	doc["lost_members"] = "three"
	doc["attendance_rate"] = nil
	doc["review_count"] = json.Number("120")
	doc["competitors"] = 5
	doc["market_position"] = " Leader "

	m, err := FromMap(doc)
	require.NoError(t, err)
	assert.InDelta(t, 36000.5, m.MonthlyRevenue, 1e-9)
	assert.Equal(t, 180, m.ActiveSubscriptions)
	assert.Equal(t, 7, m.NewMembers)
	assert.Zero(t, m.LostMembers)
	assert.InDelta(t, 50, m.AttendanceRate, 1e-9)
	assert.Equal(t, 120, m.ReviewCount)
	assert.Equal(t, 5, m.Competitors)
	assert.Equal(t, model.PositionLeader, m.MarketPosition)
}

func TestFromMapLegacyKeys(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"chiffre_affaires_mensuel":  36000.0,
		"nombre_abonnements_actifs": 180.0,
		"surface_totale_m2":         500.0,
		"nombre_coachs":             4.0,
		"taux_presence_moyen":       55.0,
		"position_concurrentielle":  "challenger",
	}

	m, err := FromMap(doc)
	require.NoError(t, err)
	assert.Equal(t, 180, m.ActiveSubscriptions)
	assert.InDelta(t, 55, m.AttendanceRate, 1e-9)
	assert.Equal(t, model.PositionChallenger, m.MarketPosition)
}

func TestFromMapMissingRequired(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	delete(doc, "coaches")
	delete(doc, "total_area_m2")

	_, err := FromMap(doc)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
	assert.Contains(t, err.Error(), "total_area_m2, coaches")
	assert.Equal(t, []string{"total_area_m2", "coaches"}, Missing(doc))
}

func TestFromMapNonPositiveMembers(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc["active_subscriptions"] = 0.0

	_, err := FromMap(doc)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestFromMapRejectsNonFinite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"nan string", "monthly_revenue", "NaN"},
		{"inf string", "monthly_revenue", "Inf"},
		{"infinity string", "rent", "-Infinity"},
		{"yaml nan", "attendance_rate", math.NaN()},
		{"positive inf", "total_area_m2", math.Inf(1)},
		{"inf count", "new_members", "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := minimalDoc()
			doc[tt.key] = tt.value

			_, err := FromMap(doc)
			require.Error(t, err)
			assert.True(t, eris.Is(err, model.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseDocumentYAMLNaN(t *testing.T) {
	t.Parallel()

	raw, err := ParseDocument([]byte("monthly_revenue: .nan\nactive_subscriptions: 180\ntotal_area_m2: 500\ncoaches: 4\n"))
	require.NoError(t, err)
	_, err = FromMap(raw)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidInput))
}

func TestToFloatNonFinite(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 7.0, toFloat("NaN", 7), 1e-9)
	assert.InDelta(t, 7.0, toFloat(math.Inf(-1), 7), 1e-9)
	assert.InDelta(t, 2.5, toFloat("2.5", 7), 1e-9)
	assert.InDelta(t, 0.0, *PurchasePrice(map[string]any{"purchase_price": "Infinity"}), 1e-9)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"loyer_mensuel":    4000.0,
		"rent":             4500.0,
		"prix_acquisition": 160000.0,
		"custom":           "kept",
	}
	out := Normalize(raw)
	assert.Equal(t, 4500.0, out["rent"])
	assert.NotContains(t, out, "loyer_mensuel")
	assert.Equal(t, 160000.0, out["purchase_price"])
	assert.Equal(t, "kept", out["custom"])

	// Input is not mutated.
	assert.Contains(t, raw, "loyer_mensuel")
}

func TestPurchasePrice(t *testing.T) {
	t.Parallel()

	assert.Nil(t, PurchasePrice(minimalDoc()))
	assert.Nil(t, PurchasePrice(map[string]any{"purchase_price": nil}))

	p := PurchasePrice(map[string]any{"purchase_price": "160000"})
	require.NotNil(t, p)
	assert.InDelta(t, 160000, *p, 1e-9)

	p = PurchasePrice(map[string]any{"prix_acquisition": 90000})
	require.NotNil(t, p)
	assert.InDelta(t, 90000, *p, 1e-9)
}

func TestCompleteness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  map[string]any
		want float64
	}{
		{"empty", map[string]any{}, 0},
		{"required only", minimalDoc(), 11.4},
		{"zero and empty ignored", map[string]any{
			"monthly_revenue": 36000.0,
			"fixed_costs":     0.0,
			"rent":            "",
			"payroll":         nil,
			"unknown":         12.0,
		}, 2.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Completeness(tt.doc), 1e-9)
		})
	}

	full := map[string]any{}
	for _, name := range FieldNames() {
		full[name] = 1.0
	}
	full["market_position"] = "leader"
	assert.InDelta(t, 100, Completeness(full), 1e-9)
}

func TestRecommendationBands(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Recommendation(95), "Excellent")
	assert.Contains(t, Recommendation(90), "Excellent")
	assert.Contains(t, Recommendation(70), "Good completeness")
	assert.Contains(t, Recommendation(50), "Average completeness")
	assert.Contains(t, Recommendation(49.9), "Insufficient completeness")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	r := Check(minimalDoc())
	assert.True(t, r.IsValid)
	assert.Empty(t, r.MissingRequired)
	assert.NotNil(t, r.MissingRequired)
	assert.Len(t, r.MissingOptional, 10)
	assert.Equal(t, "fixed_costs", r.MissingOptional[0])
	assert.Empty(t, r.SchemaErrors)
	assert.InDelta(t, 11.4, r.DataCompleteness, 1e-9)
	assert.Contains(t, r.Recommendation, "Insufficient")

	r = Check(map[string]any{"monthly_revenue": 1.0})
	assert.False(t, r.IsValid)
	assert.Equal(t, []string{"active_subscriptions", "total_area_m2", "coaches"}, r.MissingRequired)
}

func TestCheckSchemaErrors(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc["attendance_rate"] = 140.0
	doc["engagement_rate"] = 2.5

	r := Check(doc)
	assert.False(t, r.IsValid)
	require.Len(t, r.SchemaErrors, 2)
	assert.Contains(t, r.SchemaErrors[0], "attendance_rate")
	assert.Contains(t, r.SchemaErrors[1], "engagement_rate")
}

func TestParseDocument(t *testing.T) {
	t.Parallel()

	raw, err := ParseDocument([]byte(`{"monthly_revenue": 36000, "coaches": 4}`))
	require.NoError(t, err)
	assert.Equal(t, 36000, raw["monthly_revenue"])

	raw, err = ParseDocument([]byte("monthly_revenue: 36000\nmarket_position: leader\n"))
	require.NoError(t, err)
	assert.Equal(t, "leader", raw["market_position"])

	_, err = ParseDocument([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = ParseDocument([]byte(""))
	assert.Error(t, err)
}

func TestGymName(t *testing.T) {
	assert.Equal(t, "CrossFit Lyon", GymName(map[string]any{"name": " CrossFit Lyon "}))
	assert.Equal(t, "Box Nord", GymName(map[string]any{"name": "", "gym_name": "Box Nord"}))
	assert.Equal(t, "Salle", GymName(map[string]any{"nom": "Salle"}))
	assert.Empty(t, GymName(map[string]any{"name": 12}))
}
