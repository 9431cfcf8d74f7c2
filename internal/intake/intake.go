// Package intake turns loosely typed input documents into metrics records.
package intake

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

const (
	purchasePriceKey    = "purchase_price"
	purchasePriceLegacy = "prix_acquisition"

	// maxMissingOptional caps the optional keys reported by Check.
	maxMissingOptional = 10
)

// ParseDocument decodes a JSON or YAML object.
func ParseDocument(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "intake: parse document")
	}
	if raw == nil {
		return nil, eris.New("intake: document is empty")
	}
	return raw, nil
}

// Normalize returns a copy of raw where legacy keys are renamed to their
// current name. A current key wins over its legacy alias.
func Normalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	rename := func(legacy, name string) {
		v, ok := out[legacy]
		if !ok {
			return
		}
		delete(out, legacy)
		if _, exists := out[name]; !exists {
			out[name] = v
		}
	}
	for _, f := range fields {
		rename(f.legacy, f.name)
	}
	rename(purchasePriceLegacy, purchasePriceKey)
	return out
}

// Missing returns the required keys absent from raw.
func Missing(raw map[string]any) []string {
	data := Normalize(raw)
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// FromMap builds a metrics record from raw. Absent or unparsable values take
// their documented default. A zero coach ratio and a zero average price are
// derived from the other fields. The record is validated before returning.
func FromMap(raw map[string]any) (model.Metrics, error) {
	if missing := Missing(raw); len(missing) > 0 {
		return model.Metrics{}, eris.Wrapf(model.ErrInvalidInput,
			"missing required fields: %s", strings.Join(missing, ", "))
	}

	data := Normalize(raw)
	var m model.Metrics
	for _, f := range fields {
		v := data[f.name]
		if nonFinite(v) {
			return model.Metrics{}, eris.Wrapf(model.ErrInvalidInput,
				"%s must be a finite number, got %v", f.name, v)
		}
		switch f.kind {
		case kindFloat:
			f.setFloat(&m, toFloat(v, f.def))
		case kindInt:
			f.setInt(&m, toInt(v, int(f.def)))
		case kindString:
			s, ok := v.(string)
			if !ok {
				s = defaultPosition
			}
			m.MarketPosition = model.ParsePosition(s)
		}
	}

	if err := m.Validate(); err != nil {
		return model.Metrics{}, err
	}

	if m.CoachMemberRatio == 0 && m.Coaches > 0 {
		m.CoachMemberRatio = float64(m.ActiveSubscriptions) / float64(m.Coaches)
	}
	if m.AveragePrice == 0 {
		m.AveragePrice = m.MonthlyRevenue / float64(m.ActiveSubscriptions)
	}

	return m, nil
}

// PurchasePrice extracts the optional acquisition price.
func PurchasePrice(raw map[string]any) *float64 {
	v, ok := Normalize(raw)[purchasePriceKey]
	if !ok || v == nil {
		return nil
	}
	p := toFloat(v, 0)
	return &p
}

// GymName returns the display name of the audited gym, if the document
// carries one.
func GymName(raw map[string]any) string {
	for _, key := range []string{"name", "gym_name", "nom"} {
		if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Completeness is the percentage of known fields present with a non-zero,
// non-empty value, rounded to one decimal.
func Completeness(raw map[string]any) float64 {
	data := Normalize(raw)
	var provided int
	for _, f := range fields {
		if isProvided(data[f.name]) {
			provided++
		}
	}
	pct := float64(provided) / float64(len(fields)) * 100
	return math.Round(pct*10) / 10
}

// Recommendation describes how far a completeness level can be trusted.
func Recommendation(completeness float64) string {
	switch {
	case completeness >= 90:
		return "Excellent: every field needed for a thorough analysis is present."
	case completeness >= 70:
		return "Good completeness: a few fields are missing but the analysis will be reliable."
	case completeness >= 50:
		return "Average completeness: some insights may be limited. Add more data for a better analysis."
	default:
		return "Insufficient completeness: add more data to get a meaningful analysis."
	}
}

// Report is the outcome of Check.
type Report struct {
	IsValid          bool     `json:"is_valid"`
	MissingRequired  []string `json:"missing_required"`
	MissingOptional  []string `json:"missing_optional"`
	SchemaErrors     []string `json:"schema_errors,omitempty"`
	DataCompleteness float64  `json:"data_completeness"`
	Recommendation   string   `json:"recommendation"`
}

// Check inspects raw without building a record.
func Check(raw map[string]any) Report {
	data := Normalize(raw)

	missingRequired := Missing(data)
	required := make(map[string]bool, len(RequiredFields))
	for _, name := range RequiredFields {
		required[name] = true
	}

	var missingOptional []string
	for _, f := range fields {
		if required[f.name] {
			continue
		}
		if _, ok := data[f.name]; !ok && len(missingOptional) < maxMissingOptional {
			missingOptional = append(missingOptional, f.name)
		}
	}

	schemaErrs := ValidateDocument(data)
	completeness := Completeness(data)

	if missingRequired == nil {
		missingRequired = []string{}
	}
	if missingOptional == nil {
		missingOptional = []string{}
	}

	return Report{
		IsValid:          len(missingRequired) == 0 && len(schemaErrs) == 0,
		MissingRequired:  missingRequired,
		MissingOptional:  missingOptional,
		SchemaErrors:     schemaErrs,
		DataCompleteness: completeness,
		Recommendation:   Recommendation(completeness),
	}
}

func isProvided(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	default:
		f, ok := number(v)
		if !ok {
			return true
		}
		return f != 0
	}
}

// number reports the numeric value of v for the types JSON and YAML decoders
// produce.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// nonFinite reports whether v is, or spells, NaN or an infinity.
func nonFinite(v any) bool {
	f, ok := number(v)
	if !ok {
		s, isStr := v.(string)
		if !isStr {
			return false
		}
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return false
		}
	}
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// toFloat falls back to def for NaN and infinities as well as for values
// that are not numbers.
func toFloat(v any, def float64) float64 {
	if v == nil {
		return def
	}
	f, ok := number(v)
	if !ok {
		s, isStr := v.(string)
		if !isStr {
			return def
		}
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return def
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// toInt truncates numbers toward zero. Strings must hold an integer.
func toInt(v any, def int) int {
	if v == nil {
		return def
	}
	if f, ok := number(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return def
		}
		return int(f)
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return def
}
