// Package ingest reads uploaded datasets into raw tables and coerces rows
// into order records. Readers are format-tolerant: ragged CSV rows, quoted
// cells and XLSX workbooks all land in the same Table shape, and cell
// coercion marks bad values missing instead of failing the load.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/schema"
)

// Table is one uploaded dataset before schema mapping: a header row and
// the raw string cells beneath it.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadTable parses the reader into a Table, choosing the parser by file
// extension: .xlsx/.xlsm go through excelize, everything else is treated
// as CSV. A table with no header row is an error; a table with a header
// and no rows is not.
func ReadTable(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(r)
	default:
		return readCSV(r)
	}
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

func readWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	t := &Table{Headers: rows[0]}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// DecodeOrder coerces one raw row into an order record using the resolved
// column mapping. Missing columns and unparseable cells leave the field
// invalid; discounts parse out of [0,1] are clamped into it.
func DecodeOrder(row []string, res *schema.Resolution) models.Order {
	o := models.Order{
		OrderID:     cell(row, res.Index(schema.FieldOrderID)),
		ProductName: cell(row, res.Index(schema.FieldProductName)),
		Category:    cell(row, res.Index(schema.FieldCategory)),
		SubCategory: cell(row, res.Index(schema.FieldSubCategory)),
		Region:      cell(row, res.Index(schema.FieldRegion)),
		State:       cell(row, res.Index(schema.FieldState)),
	}

	o.OrderDate, o.DateValid = ParseDate(cell(row, res.Index(schema.FieldOrderDate)))
	o.Sales, o.SalesValid = ParseNumber(cell(row, res.Index(schema.FieldSales)))
	o.Profit, o.ProfitValid = ParseNumber(cell(row, res.Index(schema.FieldProfit)))

	if d, ok := ParseNumber(cell(row, res.Index(schema.FieldDiscount))); ok {
		o.Discount, o.DiscountValid = clamp(d, 0, 1), true
	}

	return o
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// dateLayouts cover the formats seen across superstore exports and
// spreadsheet round-trips.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	"2-Jan-2006",
	"2006-01-02 15:04:05",
	"1/2/06",
}

// ParseDate tries the known order-date layouts in order.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a numeric cell, tolerating currency symbols,
// thousands separators, surrounding parentheses for negatives and a
// trailing percent sign (divided by 100).
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if percent {
		v /= 100
	}
	if negative {
		v = -v
	}
	return v, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
