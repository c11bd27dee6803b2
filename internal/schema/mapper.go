// Package schema maps the column names of an uploaded dataset onto the
// canonical fields the metric engine operates on. Matching is tolerant:
// explicit user overrides win, then case-insensitive exact matches against
// known aliases, then normalized substring matches. Fields left without a
// column are reported, never fatal.
package schema

import (
	"fmt"
	"strings"
)

// Field is a canonical dataset attribute.
type Field string

const (
	FieldOrderDate   Field = "order_date"
	FieldSales       Field = "sales"
	FieldProfit      Field = "profit"
	FieldDiscount    Field = "discount"
	FieldCategory    Field = "category"
	FieldSubCategory Field = "sub_category"
	FieldRegion      Field = "region"
	FieldState       Field = "state"
	FieldOrderID     Field = "order_id"
	FieldProductName Field = "product_name"
)

// Required are the fields the dashboards expect to find. Optional fields
// enrich the output (distinct order counts, leak-list columns) but their
// absence disables nothing.
func Required() []Field {
	return []Field{
		FieldOrderDate, FieldSales, FieldProfit, FieldDiscount,
		FieldCategory, FieldSubCategory, FieldRegion, FieldState,
	}
}

func Optional() []Field {
	return []Field{FieldOrderID, FieldProductName}
}

// aliases are accepted spellings per field, compared case-insensitively
// after trimming. The squashed forms (spaces, underscores and dashes
// removed) are also compared, so "Sub-Category", "sub_category" and
// "SubCategory" all land on the same field.
var aliases = map[Field][]string{
	FieldOrderDate:   {"order date", "date", "orderdate", "order_date"},
	FieldSales:       {"sales", "sale", "revenue", "sales amount"},
	FieldProfit:      {"profit", "margin"},
	FieldDiscount:    {"discount", "discount rate", "disc"},
	FieldCategory:    {"category"},
	FieldSubCategory: {"sub-category", "sub category", "subcategory"},
	FieldRegion:      {"region"},
	FieldState:       {"state", "province"},
	FieldOrderID:     {"order id", "order no", "order number"},
	FieldProductName: {"product name", "product", "item name"},
}

// MatchKind records how a field found its column.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchFuzzy    MatchKind = "fuzzy"
	MatchOverride MatchKind = "override"
)

type ColumnMatch struct {
	Column string    `json:"column"`
	Index  int       `json:"index"`
	Kind   MatchKind `json:"kind"`
}

// Resolution is the outcome of mapping one header row. Unresolved lists
// required fields with no column; Candidates carries the actual headers so
// a client can offer a manual remap.
type Resolution struct {
	Columns    map[Field]ColumnMatch `json:"columns"`
	Unresolved []Field               `json:"unresolved,omitempty"`
	Candidates []string              `json:"candidates,omitempty"`
}

// Has reports whether the field resolved to a column.
func (r *Resolution) Has(f Field) bool {
	if r == nil {
		return false
	}
	_, ok := r.Columns[f]
	return ok
}

// Index returns the column index for a resolved field, or -1.
func (r *Resolution) Index(f Field) int {
	if r == nil {
		return -1
	}
	m, ok := r.Columns[f]
	if !ok {
		return -1
	}
	return m.Index
}

// Complete reports whether every required field resolved.
func (r *Resolution) Complete() bool {
	return r != nil && len(r.Unresolved) == 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func squash(s string) string {
	s = normalize(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, s)
}

// Resolve maps headers onto the canonical fields. Overrides name an exact
// header (matched case-insensitively) per field and take precedence over
// automatic matching; an override naming a header that does not exist is
// an error, since the user explicitly asked for it.
func Resolve(headers []string, overrides map[Field]string) (*Resolution, error) {
	res := &Resolution{
		Columns:    make(map[Field]ColumnMatch),
		Candidates: append([]string(nil), headers...),
	}

	used := make(map[int]bool)
	fields := append(Required(), Optional()...)

	for f, want := range overrides {
		idx := findHeader(headers, want)
		if idx < 0 {
			return nil, fmt.Errorf("override for %s: no column named %q", f, want)
		}
		res.Columns[f] = ColumnMatch{Column: headers[idx], Index: idx, Kind: MatchOverride}
		used[idx] = true
	}

	// Exact pass before any fuzzy matching, so a dataset with both
	// "Category" and "Sub-Category" never fuzzy-binds category to the
	// wrong one.
	for _, f := range fields {
		if res.Has(f) {
			continue
		}
		if idx := exactMatch(headers, f, used); idx >= 0 {
			res.Columns[f] = ColumnMatch{Column: headers[idx], Index: idx, Kind: MatchExact}
			used[idx] = true
		}
	}

	for _, f := range fields {
		if res.Has(f) {
			continue
		}
		if idx := fuzzyMatch(headers, f, used); idx >= 0 {
			res.Columns[f] = ColumnMatch{Column: headers[idx], Index: idx, Kind: MatchFuzzy}
			used[idx] = true
		}
	}

	for _, f := range Required() {
		if !res.Has(f) {
			res.Unresolved = append(res.Unresolved, f)
		}
	}

	return res, nil
}

func findHeader(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func exactMatch(headers []string, f Field, used map[int]bool) int {
	for i, h := range headers {
		if used[i] {
			continue
		}
		hn, hs := normalize(h), squash(h)
		for _, alias := range aliases[f] {
			if hn == alias || hs == squash(alias) {
				return i
			}
		}
	}
	return -1
}

func fuzzyMatch(headers []string, f Field, used map[int]bool) int {
	for i, h := range headers {
		if used[i] {
			continue
		}
		hs := squash(h)
		if hs == "" {
			continue
		}
		for _, alias := range aliases[f] {
			as := squash(alias)
			if strings.Contains(hs, as) || strings.Contains(as, hs) {
				return i
			}
		}
	}
	return -1
}
