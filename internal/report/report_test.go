package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/eloiseboudon/crossfit-audit/internal/analyzer"
	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func sampleResult(t *testing.T, price *float64) *model.AnalysisResult {
	t.Helper()
	a, err := analyzer.New(config.DefaultEngineConfig())
	require.NoError(t, err)

	m := model.Metrics{
		MonthlyRevenue: 36000, FixedCosts: 8000, VariableCosts: 3000, Rent: 4000,
		SubleaseIncome: 1000, Payroll: 12000,
		ActiveSubscriptions: 180, AutoDebitSubscriptions: 160, CardSubscriptions: 20,
		AveragePrice: 200, StickerPrice: 220,
		NewMembers: 8, LostMembers: 5, AttendanceRate: 55, MemberTenureMonths: 14,
		TotalAreaM2: 500, TrainingAreaM2: 400, EquipmentValue: 110000, EquipmentAgeYears: 3.5,
		MaxCapacity: 25, Coaches: 4, FullTimeCoaches: 2, CoachTenureYears: 3,
		ClassesPerWeek: 35, ClassFillRate: 70, OpeningHoursPerWeek: 70,
		MarketingBudget: 800, SocialFollowers: 650, EngagementRate: 0.025,
		ReviewCount: 45, ReviewRating: 4.6,
		Competitors: 3, CompetitorPrice: 230, MarketPosition: model.ParsePosition("suiveur"),
	}
	result, err := a.Run(context.Background(), m, price)
	require.NoError(t, err)
	return result
}

func readBack(t *testing.T, buf *bytes.Buffer) *xlsx.File {
	t.Helper()
	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	return f
}

func findRow(t *testing.T, sheet *xlsx.Sheet, label string) *xlsx.Row {
	t.Helper()
	for _, row := range sheet.Rows {
		if len(row.Cells) > 0 && row.Cells[0].String() == label {
			return row
		}
	}
	t.Fatalf("row %q not found in %s", label, sheet.Name)
	return nil
}

func cellFloat(t *testing.T, c *xlsx.Cell) float64 {
	t.Helper()
	v, err := c.Float()
	require.NoError(t, err)
	return v
}

func TestWriteWithAcquisition(t *testing.T) {
	price := 160000.0
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "CrossFit Lyon", sampleResult(t, &price)))

	f := readBack(t, &buf)
	require.Len(t, f.Sheets, 5)
	for _, name := range []string{SheetSummary, SheetInsights, SheetProjection, SheetScenarios, SheetAcquisition} {
		assert.Contains(t, f.Sheet, name)
	}

	summary := f.Sheet[SheetSummary]
	assert.Equal(t, "CrossFit Lyon", findRow(t, summary, "Gym").Cells[1].String())
	assert.InDelta(t, 69.6, cellFloat(t, findRow(t, summary, "Overall score").Cells[1]), 0.01)
	assert.Equal(t, "B+ - Good", findRow(t, summary, "Grade").Cells[1].String())
	assert.InDelta(t, 91.0, cellFloat(t, findRow(t, summary, "Operational efficiency").Cells[1]), 0.01)

	insights := f.Sheet[SheetInsights]
	require.Len(t, insights.Rows, 6)
	assert.Equal(t, "Too many members per coach", insights.Rows[1].Cells[3].String())
	assert.InDelta(t, 63.0, cellFloat(t, insights.Rows[1].Cells[0]), 0.01)

	projection := f.Sheet[SheetProjection]
	assert.Equal(t, "Month", projection.Rows[0].Cells[0].String())
	assert.InDelta(t, 36600.0, cellFloat(t, projection.Rows[1].Cells[2]), 0.01)
	assert.InDelta(t, 473159.76, cellFloat(t, findRow(t, projection, "Total revenue").Cells[1]), 0.01)

	scenarios := f.Sheet[SheetScenarios]
	assert.InDelta(t, 10000.0, cellFloat(t, findRow(t, scenarios, "current").Cells[3]), 0.01)
	assert.InDelta(t, 386400.0, cellFloat(t, findRow(t, scenarios, "Max annual increase").Cells[1]), 0.01)

	acq := f.Sheet[SheetAcquisition]
	assert.InDelta(t, 2187.01, cellFloat(t, findRow(t, acq, "Monthly payment").Cells[1]), 0.01)
	assert.Equal(t, string(model.RiskLow), findRow(t, acq, "Risk level").Cells[1].String())
}

func TestWorkbookWithoutAcquisition(t *testing.T) {
	f, err := Workbook("", sampleResult(t, nil))
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 4)
	assert.NotContains(t, f.Sheet, SheetAcquisition)
}

func TestWorkbookNil(t *testing.T) {
	_, err := Workbook("x", nil)
	assert.Error(t, err)
}

func TestWriteBatch(t *testing.T) {
	result := sampleResult(t, nil)
	var buf bytes.Buffer
	require.NoError(t, WriteBatch(&buf, []BatchRow{
		{Name: "CrossFit Lyon", Result: result},
		{Name: "Broken Box", Err: errors.New("missing required fields: coaches")},
	}))

	f := readBack(t, &buf)
	sheet := f.Sheet[SheetBatch]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 3)

	header := sheet.Rows[0]
	assert.Equal(t, "Gym", header.Cells[0].String())
	assert.Equal(t, "Error", header.Cells[len(header.Cells)-1].String())

	ok := findRow(t, sheet, "CrossFit Lyon")
	assert.InDelta(t, 69.6, cellFloat(t, ok.Cells[1]), 0.01)
	assert.Equal(t, "B+", ok.Cells[2].String())
	insightCount, err := ok.Cells[8].Int()
	require.NoError(t, err)
	assert.Equal(t, 5, insightCount)

	failed := findRow(t, sheet, "Broken Box")
	require.Len(t, failed.Cells, len(header.Cells))
	assert.Equal(t, "missing required fields: coaches", failed.Cells[len(failed.Cells)-1].String())
}
