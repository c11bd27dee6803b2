package schema

import (
	"testing"
)

var superstoreHeaders = []string{
	"Order ID", "Order Date", "Ship Date", "Ship Mode", "Customer Name",
	"Segment", "Country", "City", "State", "Region", "Category",
	"Sub-Category", "Product Name", "Sales", "Quantity", "Discount", "Profit",
}

func TestResolve_SuperstoreHeaders(t *testing.T) {
	res, err := Resolve(superstoreHeaders, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if !res.Complete() {
		t.Fatalf("expected complete resolution, unresolved: %v", res.Unresolved)
	}

	want := map[Field]string{
		FieldOrderDate:   "Order Date",
		FieldSales:       "Sales",
		FieldProfit:      "Profit",
		FieldDiscount:    "Discount",
		FieldCategory:    "Category",
		FieldSubCategory: "Sub-Category",
		FieldRegion:      "Region",
		FieldState:       "State",
		FieldOrderID:     "Order ID",
		FieldProductName: "Product Name",
	}

	for f, column := range want {
		m, ok := res.Columns[f]
		if !ok {
			t.Errorf("field %s not resolved", f)
			continue
		}
		if m.Column != column {
			t.Errorf("field %s resolved to %q, want %q", f, m.Column, column)
		}
	}
}

// A superset of required names resolves automatically regardless of case
// and ordering.
func TestResolve_CaseAndOrderInsensitive(t *testing.T) {
	headers := []string{
		"Extra Column", "PROFIT", "region", "sub_category", "STATE",
		"discount", "order date", "CATEGORY", "Sales", "another",
	}

	res, err := Resolve(headers, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if !res.Complete() {
		t.Errorf("expected complete resolution, unresolved: %v", res.Unresolved)
	}
}

func TestResolve_FuzzyMatching(t *testing.T) {
	tests := []struct {
		name   string
		header string
		field  Field
	}{
		{"date with prefix", "Transaction Order Date", FieldOrderDate},
		{"sales amount", "Total Sales Amount", FieldSales},
		{"subcategory squashed", "SubCategory", FieldSubCategory},
		{"region suffix", "Geo Region", FieldRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve([]string{tt.header}, nil)
			if err != nil {
				t.Fatalf("Resolve() failed: %v", err)
			}
			m, ok := res.Columns[tt.field]
			if !ok {
				t.Fatalf("field %s not resolved from %q", tt.field, tt.header)
			}
			if m.Column != tt.header {
				t.Errorf("resolved to %q, want %q", m.Column, tt.header)
			}
		})
	}
}

// The exact pass must bind "Category" before fuzzy matching has a chance
// to grab "Sub-Category" for it.
func TestResolve_CategoryNotStolenBySubCategory(t *testing.T) {
	res, err := Resolve([]string{"Sub-Category", "Category"}, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if got := res.Columns[FieldCategory].Column; got != "Category" {
		t.Errorf("category resolved to %q, want %q", got, "Category")
	}
	if got := res.Columns[FieldSubCategory].Column; got != "Sub-Category" {
		t.Errorf("sub_category resolved to %q, want %q", got, "Sub-Category")
	}
}

func TestResolve_UnresolvedReported(t *testing.T) {
	res, err := Resolve([]string{"Order Date", "Sales", "Profit"}, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if res.Complete() {
		t.Fatal("expected incomplete resolution")
	}

	unresolved := make(map[Field]bool)
	for _, f := range res.Unresolved {
		unresolved[f] = true
	}
	for _, f := range []Field{FieldDiscount, FieldCategory, FieldSubCategory, FieldRegion, FieldState} {
		if !unresolved[f] {
			t.Errorf("expected %s in unresolved list", f)
		}
	}

	if len(res.Candidates) != 3 {
		t.Errorf("expected 3 candidate headers, got %d", len(res.Candidates))
	}
}

func TestResolve_Overrides(t *testing.T) {
	headers := []string{"When", "Money In", "Money Kept", "Pct Off", "Cat", "SubCat", "Area", "Province"}

	overrides := map[Field]string{
		FieldOrderDate:   "When",
		FieldSales:       "Money In",
		FieldProfit:      "Money Kept",
		FieldDiscount:    "Pct Off",
		FieldCategory:    "Cat",
		FieldSubCategory: "SubCat",
		FieldRegion:      "Area",
	}

	res, err := Resolve(headers, overrides)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	for f, want := range overrides {
		m := res.Columns[f]
		if m.Column != want {
			t.Errorf("field %s resolved to %q, want override %q", f, m.Column, want)
		}
		if m.Kind != MatchOverride {
			t.Errorf("field %s kind = %s, want %s", f, m.Kind, MatchOverride)
		}
	}

	// "Province" still resolves automatically for state.
	if got := res.Columns[FieldState].Column; got != "Province" {
		t.Errorf("state resolved to %q, want %q", got, "Province")
	}
}

func TestResolve_OverrideUnknownColumn(t *testing.T) {
	_, err := Resolve([]string{"Sales"}, map[Field]string{FieldProfit: "No Such Column"})
	if err == nil {
		t.Error("expected error for override naming a missing column")
	}
}

func TestResolution_NilSafety(t *testing.T) {
	var res *Resolution
	if res.Has(FieldSales) {
		t.Error("nil resolution should not have fields")
	}
	if got := res.Index(FieldSales); got != -1 {
		t.Errorf("nil resolution index = %d, want -1", got)
	}
}
