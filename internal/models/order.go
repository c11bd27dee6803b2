package models

import "time"

// Order is one sales order line from an uploaded dataset. Numeric fields
// carry a validity flag: coercion failures mark the field missing instead
// of dropping the row, so each aggregate can exclude the row on its own.
type Order struct {
	OrderDate     time.Time
	DateValid     bool
	OrderID       string
	ProductName   string
	Category      string
	SubCategory   string
	Region        string
	State         string
	Sales         float64
	SalesValid    bool
	Profit        float64
	ProfitValid   bool
	Discount      float64
	DiscountValid bool
}

// HighDiscountLoss reports whether the order is a high-discount loss:
// discount of at least 30% with negative profit.
func (o Order) HighDiscountLoss() bool {
	return o.DiscountValid && o.Discount >= 0.30 && o.ProfitValid && o.Profit < 0
}

// Filter narrows a dataset before aggregation. The zero value matches
// every row.
type Filter struct {
	From    time.Time
	To      time.Time
	Regions []string
}

func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && len(f.Regions) == 0
}

// Match reports whether the order passes the filter. Orders without a
// valid date cannot be compared against a date bound and are excluded
// while one is set.
func (f Filter) Match(o Order) bool {
	if !f.From.IsZero() || !f.To.IsZero() {
		if !o.DateValid {
			return false
		}
		if !f.From.IsZero() && o.OrderDate.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && o.OrderDate.After(f.To) {
			return false
		}
	}
	if len(f.Regions) > 0 {
		found := false
		for _, r := range f.Regions {
			if r == o.Region {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
