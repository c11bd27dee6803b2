package insights

import (
	"strings"
	"testing"

	"sales-dashboard/internal/models"
)

func testReport() *models.Report {
	return &models.Report{
		Summary: models.Summary{
			TotalSales:     1_500_000,
			TotalProfit:    120_000,
			Rows:           100,
			Orders:         80,
			LossOrderCount: 12,
		},
		Categories: []models.CategoryProfit{
			{Category: "Office Supplies", Sales: 200_000, Profit: -15_000},
			{Category: "Furniture", Sales: 500_000, Profit: 35_000},
			{Category: "Technology", Sales: 800_000, Profit: 100_000},
		},
	}
}

func TestBuild(t *testing.T) {
	ins := Build(testReport())

	if len(ins.Findings) != 3 {
		t.Fatalf("findings = %d, want 3", len(ins.Findings))
	}
	if !strings.Contains(ins.Findings[0], "Technology") {
		t.Errorf("top sales finding = %q, want Technology", ins.Findings[0])
	}
	if !strings.Contains(ins.Findings[1], "Office Supplies") {
		t.Errorf("profit drag finding = %q, want Office Supplies", ins.Findings[1])
	}
	if !strings.Contains(ins.Findings[2], "12.0%") {
		t.Errorf("loss share finding = %q, want 12.0%%", ins.Findings[2])
	}

	if len(ins.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
	if !strings.Contains(ins.Narrative, "$1.50M") {
		t.Errorf("narrative = %q, want formatted total sales", ins.Narrative)
	}
	if !strings.Contains(ins.Narrative, "12 unprofitable orders") {
		t.Errorf("narrative = %q, want loss order count", ins.Narrative)
	}
}

func TestBuild_Empty(t *testing.T) {
	for _, rep := range []*models.Report{nil, {}} {
		ins := Build(rep)
		if len(ins.Findings) != 0 || len(ins.Recommendations) != 0 || ins.Narrative != "" {
			t.Errorf("empty report should yield empty insights, got %+v", ins)
		}
	}
}

func TestBuild_NoCategories(t *testing.T) {
	rep := &models.Report{Summary: models.Summary{Rows: 10, LossOrderCount: 1}}
	ins := Build(rep)

	if len(ins.Findings) != 1 {
		t.Fatalf("findings = %d, want only the loss share", len(ins.Findings))
	}
	if !strings.Contains(ins.Findings[0], "10.0%") {
		t.Errorf("finding = %q, want 10.0%%", ins.Findings[0])
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2_345_678, "$2.35M"},
		{1_000_000, "$1.00M"},
		{12_500, "$12.5K"},
		{1_000, "$1.0K"},
		{999, "$999"},
		{0, "$0"},
		{-1_500_000, "$-1.50M"},
		{-2_500, "$-2.5K"},
		{-42, "$-42"},
	}

	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
