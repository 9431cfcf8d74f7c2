package intake

import "github.com/eloiseboudon/crossfit-audit/internal/model"

type fieldKind int

const (
	kindFloat fieldKind = iota
	kindInt
	kindString
)

// field describes one input key: its legacy alias, coercion kind, default
// when absent or unparsable, and where it lands in the record.
type field struct {
	name     string
	legacy   string
	kind     fieldKind
	def      float64
	setFloat func(m *model.Metrics, v float64)
	setInt   func(m *model.Metrics, v int)
}

// positionField is the only string field.
const (
	positionField   = "market_position"
	positionLegacy  = "position_concurrentielle"
	defaultPosition = "suiveur"
)

// fields lists every known input key in document order.
var fields = []field{
	{name: "monthly_revenue", legacy: "chiffre_affaires_mensuel", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.MonthlyRevenue = v }},
	{name: "fixed_costs", legacy: "charges_fixes_mensuelles", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.FixedCosts = v }},
	{name: "variable_costs", legacy: "charges_variables_mensuelles", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.VariableCosts = v }},
	{name: "rent", legacy: "loyer_mensuel", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.Rent = v }},
	{name: "sublease_income", legacy: "sous_location_revenus", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.SubleaseIncome = v }},
	{name: "payroll", legacy: "salaires_total", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.Payroll = v }},

	{name: "active_subscriptions", legacy: "nombre_abonnements_actifs", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.ActiveSubscriptions = v }},
	{name: "auto_debit_subscriptions", legacy: "nombre_abonnements_prelevement", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.AutoDebitSubscriptions = v }},
	{name: "card_subscriptions", legacy: "nombre_abonnements_carte", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.CardSubscriptions = v }},
	{name: "average_price", legacy: "panier_moyen_abonnement", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.AveragePrice = v }},
	{name: "sticker_price", legacy: "tarif_affiche_standard", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.StickerPrice = v }},

	{name: "new_members", legacy: "nombre_nouveaux_membres_mois", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.NewMembers = v }},
	{name: "lost_members", legacy: "nombre_membres_perdus_mois", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.LostMembers = v }},
	{name: "attendance_rate", legacy: "taux_presence_moyen", kind: kindFloat, def: 50,
		setFloat: func(m *model.Metrics, v float64) { m.AttendanceRate = v }},
	{name: "member_tenure_months", legacy: "anciennete_moyenne_membres", kind: kindFloat, def: 12,
		setFloat: func(m *model.Metrics, v float64) { m.MemberTenureMonths = v }},

	{name: "total_area_m2", legacy: "surface_totale_m2", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.TotalAreaM2 = v }},
	{name: "training_area_m2", legacy: "surface_entrainement_m2", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.TrainingAreaM2 = v }},
	{name: "equipment_value", legacy: "valeur_equipement", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.EquipmentValue = v }},
	{name: "equipment_age_years", legacy: "age_moyen_equipement", kind: kindFloat, def: 3,
		setFloat: func(m *model.Metrics, v float64) { m.EquipmentAgeYears = v }},
	{name: "max_capacity", legacy: "capacite_max_simultane", kind: kindInt, def: 20,
		setInt: func(m *model.Metrics, v int) { m.MaxCapacity = v }},

	{name: "coaches", legacy: "nombre_coachs", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.Coaches = v }},
	{name: "full_time_coaches", legacy: "nombre_coachs_temps_plein", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.FullTimeCoaches = v }},
	{name: "coach_member_ratio", legacy: "ratio_coach_membre", kind: kindFloat,
		setFloat: func(m *model.Metrics, v float64) { m.CoachMemberRatio = v }},
	{name: "coach_tenure_years", legacy: "anciennete_moyenne_coachs", kind: kindFloat, def: 2,
		setFloat: func(m *model.Metrics, v float64) { m.CoachTenureYears = v }},

	{name: "classes_per_week", legacy: "nombre_cours_semaine", kind: kindInt, def: 30,
		setInt: func(m *model.Metrics, v int) { m.ClassesPerWeek = v }},
	{name: "class_fill_rate", legacy: "taux_remplissage_cours", kind: kindFloat, def: 70,
		setFloat: func(m *model.Metrics, v float64) { m.ClassFillRate = v }},
	{name: "opening_hours_per_week", legacy: "heures_ouverture_semaine", kind: kindFloat, def: 70,
		setFloat: func(m *model.Metrics, v float64) { m.OpeningHoursPerWeek = v }},

	{name: "marketing_budget", legacy: "budget_marketing_mensuel", kind: kindFloat, def: 500,
		setFloat: func(m *model.Metrics, v float64) { m.MarketingBudget = v }},
	{name: "social_followers", legacy: "nombre_followers_instagram", kind: kindInt,
		setInt: func(m *model.Metrics, v int) { m.SocialFollowers = v }},
	{name: "engagement_rate", legacy: "taux_engagement_social", kind: kindFloat, def: 0.02,
		setFloat: func(m *model.Metrics, v float64) { m.EngagementRate = v }},
	{name: "review_count", legacy: "nombre_avis_google", kind: kindInt, def: 10,
		setInt: func(m *model.Metrics, v int) { m.ReviewCount = v }},
	{name: "review_rating", legacy: "note_moyenne_google", kind: kindFloat, def: 4.5,
		setFloat: func(m *model.Metrics, v float64) { m.ReviewRating = v }},

	{name: "competitors", legacy: "nombre_concurrents_directs", kind: kindInt, def: 2,
		setInt: func(m *model.Metrics, v int) { m.Competitors = v }},
	{name: "competitor_price", legacy: "tarif_moyen_concurrent", kind: kindFloat, def: 200,
		setFloat: func(m *model.Metrics, v float64) { m.CompetitorPrice = v }},
	{name: positionField, legacy: positionLegacy, kind: kindString},
}

// RequiredFields must be present for an analysis to run.
var RequiredFields = []string{
	"monthly_revenue",
	"active_subscriptions",
	"total_area_m2",
	"coaches",
}

// FieldNames returns every known input key in document order.
func FieldNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}
