// Package report renders analysis results as XLSX workbooks.
package report

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// Sheet names.
const (
	SheetSummary     = "Summary"
	SheetInsights    = "Insights"
	SheetProjection  = "Projection"
	SheetScenarios   = "Scenarios"
	SheetAcquisition = "Acquisition"
	SheetBatch       = "Batch"
)

const (
	moneyFormat = "#,##0.00"
	pctFormat   = "0.00"
)

// Workbook builds the workbook of a single analysis. The Acquisition sheet
// is present only when the result carries a viability analysis.
func Workbook(name string, result *model.AnalysisResult) (*xlsx.File, error) {
	if result == nil {
		return nil, eris.New("report: nil result")
	}
	f := xlsx.NewFile()

	if err := summarySheet(f, name, result); err != nil {
		return nil, err
	}
	if err := insightsSheet(f, result.Insights); err != nil {
		return nil, err
	}
	if err := projectionSheet(f, result.Projections.Revenue); err != nil {
		return nil, err
	}
	if err := scenariosSheet(f, result.Projections.Optimization); err != nil {
		return nil, err
	}
	if result.Acquisition != nil {
		if err := acquisitionSheet(f, result.Acquisition); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Write streams the workbook of a single analysis to w.
func Write(w io.Writer, name string, result *model.AnalysisResult) error {
	f, err := Workbook(name, result)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "report: write workbook")
}

// BatchRow is one line of a batch workbook.
type BatchRow struct {
	Name   string
	Result *model.AnalysisResult
	Err    error
}

// WriteBatch writes one row per analyzed record, failed ones included.
func WriteBatch(w io.Writer, rows []BatchRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetBatch)
	if err != nil {
		return eris.Wrap(err, "report: add batch sheet")
	}

	header := []string{"Gym", "Overall score", "Grade"}
	for _, c := range model.ScoreCategories {
		header = append(header, c.Label())
	}
	header = append(header, "Insights", "Critical insights", "Error")
	addHeader(sheet, header...)

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		if r.Err != nil || r.Result == nil {
			for range header[1 : len(header)-1] {
				row.AddCell()
			}
			msg := "no result"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			row.AddCell().SetString(msg)
			continue
		}

		scores := r.Result.Scores
		row.AddCell().SetFloatWithFormat(scores.Score, pctFormat)
		row.AddCell().SetString(string(scores.Grade))
		for _, c := range model.ScoreCategories {
			cs, _ := scores.Category(c)
			row.AddCell().SetFloatWithFormat(cs.Score, pctFormat)
		}
		critical := 0
		for _, in := range r.Result.Insights {
			if in.Severity == model.SeverityCritical {
				critical++
			}
		}
		row.AddCell().SetInt(len(r.Result.Insights))
		row.AddCell().SetInt(critical)
		row.AddCell()
	}

	return eris.Wrap(f.Write(w), "report: write batch workbook")
}

func summarySheet(f *xlsx.File, name string, result *model.AnalysisResult) error {
	sheet, err := f.AddSheet(SheetSummary)
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	if name != "" {
		addLabel(sheet, "Gym", name)
	}
	if !result.GeneratedAt.IsZero() {
		addLabel(sheet, "Generated at", result.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}
	addNumber(sheet, "Members", float64(result.Summary.Members), "0")
	addNumber(sheet, "Monthly revenue", result.Summary.MonthlyRevenue, moneyFormat)
	addNumber(sheet, "Area (m²)", result.Summary.AreaM2, "0")
	addNumber(sheet, "Coaches", float64(result.Summary.Coaches), "0")
	sheet.AddRow()

	addNumber(sheet, "Overall score", result.Scores.Score, pctFormat)
	addLabel(sheet, "Grade", string(result.Scores.Grade)+" - "+result.Scores.GradeLabel)
	sheet.AddRow()

	addHeader(sheet, "Category", "Score", "Weight")
	for _, cs := range result.Scores.Categories {
		row := sheet.AddRow()
		row.AddCell().SetString(cs.Category.Label())
		row.AddCell().SetFloatWithFormat(cs.Score, pctFormat)
		row.AddCell().SetFloatWithFormat(cs.Weight, pctFormat)
	}
	return nil
}

func insightsSheet(f *xlsx.File, insights []model.Insight) error {
	sheet, err := f.AddSheet(SheetInsights)
	if err != nil {
		return eris.Wrap(err, "report: add insights sheet")
	}

	addHeader(sheet, "Priority", "Severity", "Category", "Title", "Description",
		"Impact", "Difficulty", "Revenue impact", "Cost impact", "Timeframe", "Actions", "KPIs")
	for _, in := range insights {
		row := sheet.AddRow()
		row.AddCell().SetFloatWithFormat(in.Priority, pctFormat)
		row.AddCell().SetString(strings.ToUpper(string(in.Severity)))
		row.AddCell().SetString(string(in.Category))
		row.AddCell().SetString(in.Title)
		row.AddCell().SetString(in.Description)
		row.AddCell().SetFloatWithFormat(in.Impact, "0")
		row.AddCell().SetFloatWithFormat(in.Difficulty, "0")
		addOptional(row, in.RevenueImpact)
		addOptional(row, in.CostImpact)
		row.AddCell().SetString(string(in.Timeframe))
		row.AddCell().SetString(strings.Join(in.Steps, "\n"))
		row.AddCell().SetString(strings.Join(in.KPIs, ", "))
	}
	return nil
}

func projectionSheet(f *xlsx.File, p model.RevenueProjection) error {
	sheet, err := f.AddSheet(SheetProjection)
	if err != nil {
		return eris.Wrap(err, "report: add projection sheet")
	}

	addHeader(sheet, "Month", "Members", "Revenue", "Growth rate (%)")
	for _, period := range p.Periods {
		row := sheet.AddRow()
		row.AddCell().SetInt(period.Month)
		row.AddCell().SetInt(period.Members)
		row.AddCell().SetFloatWithFormat(period.Revenue, moneyFormat)
		row.AddCell().SetFloatWithFormat(period.GrowthRatePct, pctFormat)
	}
	sheet.AddRow()
	addNumber(sheet, "Total revenue", p.TotalRevenue, moneyFormat)
	addNumber(sheet, "Average monthly revenue", p.AverageRevenue, moneyFormat)
	addNumber(sheet, "Final members", float64(p.FinalMembers), "0")
	addNumber(sheet, "Total growth (%)", p.TotalGrowthPct, pctFormat)
	return nil
}

func scenariosSheet(f *xlsx.File, o model.OptimizationImpact) error {
	sheet, err := f.AddSheet(SheetScenarios)
	if err != nil {
		return eris.Wrap(err, "report: add scenarios sheet")
	}

	addHeader(sheet, "Adoption (%)", "Revenue", "Costs", "Profit", "Profit increase", "Increase (%)", "Annual profit")
	current := sheet.AddRow()
	current.AddCell().SetString("current")
	current.AddCell().SetFloatWithFormat(o.Current.Revenue, moneyFormat)
	current.AddCell().SetFloatWithFormat(o.Current.Costs, moneyFormat)
	current.AddCell().SetFloatWithFormat(o.Current.Profit, moneyFormat)
	current.AddCell()
	current.AddCell()
	current.AddCell().SetFloatWithFormat(o.Current.AnnualProfit, moneyFormat)

	for _, s := range o.Scenarios {
		row := sheet.AddRow()
		row.AddCell().SetInt(s.AdoptionPct)
		row.AddCell().SetFloatWithFormat(s.Revenue, moneyFormat)
		row.AddCell().SetFloatWithFormat(s.Costs, moneyFormat)
		row.AddCell().SetFloatWithFormat(s.Profit, moneyFormat)
		row.AddCell().SetFloatWithFormat(s.ProfitIncrease, moneyFormat)
		row.AddCell().SetFloatWithFormat(s.IncreasePct, pctFormat)
		row.AddCell().SetFloatWithFormat(s.AnnualProfit, moneyFormat)
	}
	sheet.AddRow()
	addNumber(sheet, "Max monthly increase", o.MaxMonthlyIncrease, moneyFormat)
	addNumber(sheet, "Max annual increase", o.MaxAnnualIncrease, moneyFormat)
	return nil
}

func acquisitionSheet(f *xlsx.File, a *model.AcquisitionViability) error {
	sheet, err := f.AddSheet(SheetAcquisition)
	if err != nil {
		return eris.Wrap(err, "report: add acquisition sheet")
	}

	addNumber(sheet, "Purchase price", a.Price, moneyFormat)
	addNumber(sheet, "Term (years)", float64(a.TermYears), "0")
	addNumber(sheet, "Annual rate (%)", a.AnnualRatePct, pctFormat)
	addNumber(sheet, "Monthly payment", a.MonthlyPayment, moneyFormat)
	addNumber(sheet, "Total paid", a.TotalPaid, moneyFormat)
	addNumber(sheet, "Total interest", a.TotalInterest, moneyFormat)
	addNumber(sheet, "Monthly profit", a.MonthlyProfit, moneyFormat)
	addNumber(sheet, "Monthly cash flow", a.MonthlyCashFlow, moneyFormat)
	addNumber(sheet, "Annual cash flow", a.AnnualCashFlow, moneyFormat)
	if a.PaybackYears != nil {
		addNumber(sheet, "Payback (years)", *a.PaybackYears, pctFormat)
	} else {
		addLabel(sheet, "Payback (years)", "never")
	}
	addLabel(sheet, "Risk level", string(a.Risk))
	addLabel(sheet, "Recommendation", a.Recommendation)
	return nil
}

func addHeader(sheet *xlsx.Sheet, titles ...string) {
	row := sheet.AddRow()
	for _, t := range titles {
		cell := row.AddCell()
		cell.SetString(t)
		style := xlsx.NewStyle()
		style.Font.Bold = true
		style.ApplyFont = true
		cell.SetStyle(style)
	}
}

func addLabel(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}

func addNumber(sheet *xlsx.Sheet, label string, value float64, format string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloatWithFormat(value, format)
}

// addOptional leaves the cell empty when v is nil.
func addOptional(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloatWithFormat(*v, moneyFormat)
	}
}
