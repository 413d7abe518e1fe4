package service

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"swimschool/internal/analytics"
)

func sampleSnapshot() analytics.Snapshot {
	last := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	return analytics.Snapshot{
		TenantName:  "Blue Lagoon",
		Currency:    "USD",
		GeneratedAt: testNow,
		Period:      analytics.Period{Range: analytics.Range30Days},
		Revenue:     analytics.Comparison{Current: 450, Previous: 300, Change: 50},
		Lessons:     analytics.Comparison{Current: 12, Previous: 10, Change: 20},
		Series: []analytics.Bucket{
			{Label: "Feb 9", Start: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), Revenue: 200, Lessons: 5},
			{Label: "Feb 16", Start: time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), Revenue: 250, Lessons: 7},
		},
		Services: []analytics.ServiceShare{{ServiceTypeID: 1, Name: "Private", Bookings: 6, Revenue: 270, Percent: 50}},
		Mastery:  []analytics.CategoryProgress{{CategoryID: 1, Name: "Water Safety", TotalSkills: 4, Mastered: 2, Percent: 50}},
		AtRisk: []analytics.AtRisk{
			{ClientID: 7, Name: "Lucas Mueller", LastLesson: &last, DaysSince: 18},
			{ClientID: 9, Name: "Nora Park", DaysSince: -1},
		},
		TotalClients: 8,
	}
}

func TestWriteAnalyticsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalyticsXLSX(&buf, sampleSnapshot()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetRevenue, SheetServices, SheetMastery, SheetAtRisk}, f.GetSheetList())

	tests := []struct {
		sheet string
		cell  string
		want  string
	}{
		{SheetSummary, "A1", "Metric"},
		{SheetSummary, "B2", "Blue Lagoon"},
		{SheetSummary, "A5", "Revenue (USD)"},
		{SheetSummary, "B5", "450"},
		{SheetSummary, "D5", "50"},
		{SheetRevenue, "A3", "Feb 16"},
		{SheetRevenue, "D3", "7"},
		{SheetServices, "A2", "Private"},
		{SheetMastery, "D2", "50"},
		{SheetAtRisk, "B2", "Lucas Mueller"},
		{SheetAtRisk, "C2", "2026-02-20"},
		{SheetAtRisk, "C3", "never"},
	}

	for _, tt := range tests {
		t.Run(tt.sheet+"!"+tt.cell, func(t *testing.T) {
			got, err := f.GetCellValue(tt.sheet, tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	rows, err := f.GetRows(SheetRevenue)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestWriteAnalyticsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalyticsJSON(&buf, sampleSnapshot()))

	var decoded analytics.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Blue Lagoon", decoded.TenantName)
	assert.Equal(t, analytics.Range30Days, decoded.Period.Range)
	assert.Len(t, decoded.AtRisk, 2)
}
