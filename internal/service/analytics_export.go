package service

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"swimschool/internal/analytics"
)

// Analytics workbook sheet names
const (
	SheetSummary  = "Summary"
	SheetRevenue  = "Revenue"
	SheetServices = "Services"
	SheetMastery  = "Mastery"
	SheetAtRisk   = "At Risk"
)

// WriteAnalyticsJSON writes a snapshot as indented JSON
func WriteAnalyticsJSON(w io.Writer, snap analytics.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode analytics: %w", err)
	}
	return nil
}

// WriteAnalyticsXLSX writes a snapshot as a workbook with one sheet per section
func WriteAnalyticsXLSX(w io.Writer, snap analytics.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{SheetSummary, []interface{}{"Metric", "Current", "Previous", "Change %"}, summaryRows(snap)},
		{SheetRevenue, []interface{}{"Period", "Start", "Revenue", "Lessons"}, revenueRows(snap)},
		{SheetServices, []interface{}{"Service", "Bookings", "Revenue", "Share %"}, serviceRows(snap)},
		{SheetMastery, []interface{}{"Category", "Skills", "Mastered", "Percent"}, masteryRows(snap)},
		{SheetAtRisk, []interface{}{"Client ID", "Name", "Last Lesson", "Days Since"}, atRiskRows(snap)},
	}

	for _, sheet := range sheets {
		if sheet.name != SheetSummary {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", sheet.name, err)
			}
		}
		if err := writeRows(f, sheet.name, sheet.header, sheet.rows); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet.name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 22)
}

func summaryRows(snap analytics.Snapshot) [][]interface{} {
	comparison := func(name string, c analytics.Comparison) []interface{} {
		return []interface{}{name, c.Current, c.Previous, c.Change}
	}
	return [][]interface{}{
		{"School", snap.TenantName},
		{"Range", string(snap.Period.Range)},
		{"Generated", snap.GeneratedAt.Format("2006-01-02 15:04")},
		comparison("Revenue ("+snap.Currency+")", snap.Revenue),
		comparison("Lessons", snap.Lessons),
		comparison("Active students", snap.ActiveStudents),
		{"Expenses", snap.Expenses},
		{"Net income", snap.NetIncome},
		{"Completion rate %", snap.Rates.CompletionRate},
		{"Cancellation rate %", snap.Rates.CancellationRate},
		{"No-show rate %", snap.Rates.NoShowRate},
		{"Total clients", snap.TotalClients},
	}
}

func revenueRows(snap analytics.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Series))
	for _, b := range snap.Series {
		rows = append(rows, []interface{}{b.Label, b.Start.Format("2006-01-02"), b.Revenue, b.Lessons})
	}
	return rows
}

func serviceRows(snap analytics.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Services))
	for _, s := range snap.Services {
		rows = append(rows, []interface{}{s.Name, s.Bookings, s.Revenue, s.Percent})
	}
	return rows
}

func masteryRows(snap analytics.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Mastery))
	for _, c := range snap.Mastery {
		rows = append(rows, []interface{}{c.Name, c.TotalSkills, c.Mastered, c.Percent})
	}
	return rows
}

func atRiskRows(snap analytics.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.AtRisk))
	for _, a := range snap.AtRisk {
		last := "never"
		if a.LastLesson != nil {
			last = a.LastLesson.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{a.ClientID, a.Name, last, a.DaysSince})
	}
	return rows
}
