package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/ingest"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/schema"
)

const (
	batchSize   = 5000
	maxWorkers  = 8
	monthLayout = "2006-01"

	maxSubCategories = 10
	maxLossOrders    = 50
)

// bucketLabels follow the decision dashboard's discount bins. A bucket
// covers a half-open interval (lo, hi], so a zero discount falls in none.
var bucketLabels = [...]string{"0–10%", "10–20%", "20–30%", "30–40%", "40%+"}

var bucketUpper = [...]float64{0.1, 0.2, 0.3, 0.4, 1.0}

// Analytics holds the dataset for the current session and the aggregates
// the dashboards render. One upload replaces everything; the unfiltered
// report is precomputed at load time, filtered reports are computed on
// demand with the same single pass.
type Analytics struct {
	mu         sync.RWMutex
	orders     []models.Order
	resolution *schema.Resolution
	report     *models.Report

	source        string
	loadedAt      time.Time
	rowsProcessed atomic.Int64
	logger        *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		report: computeReport(nil, fullResolution(), models.Filter{}),
		logger: slog.Default(),
	}
}

// LoadFromFile loads the bundled sample dataset. Unlike uploads the sample
// must map completely; an unresolved required column here is a deployment
// error, not a user one.
func (a *Analytics) LoadFromFile(ctx context.Context, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	res, err := a.LoadFromReader(ctx, f, filename, nil)
	if err != nil {
		return err
	}
	if !res.Complete() {
		return fmt.Errorf("sample dataset %s: unresolved columns %v", filename, res.Unresolved)
	}
	return nil
}

// LoadFromReader ingests a dataset and replaces the current one. The
// returned resolution may be incomplete; callers surface it so the user
// can supply overrides, and the dependent report sections stay disabled
// until they do. The error path is reserved for unreadable input and bad
// overrides.
func (a *Analytics) LoadFromReader(ctx context.Context, r io.Reader, filename string, overrides map[schema.Field]string) (*schema.Resolution, error) {
	start := time.Now()

	table, err := ingest.ReadTable(r, filename)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	res, err := schema.Resolve(table.Headers, overrides)
	if err != nil {
		return nil, err
	}

	orders, err := a.decodeRows(ctx, table, res)
	if err != nil {
		return nil, err
	}

	report := computeReport(orders, res, models.Filter{})

	a.mu.Lock()
	a.orders = orders
	a.resolution = res
	a.report = report
	a.source = filename
	a.loadedAt = time.Now()
	a.mu.Unlock()

	a.rowsProcessed.Store(int64(len(orders)))

	duration := time.Since(start)
	a.logger.Info("dataset loaded",
		"source", filename,
		"rows", len(orders),
		"unresolved", res.Unresolved,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f rows/sec", float64(len(orders))/max(duration.Seconds(), 1e-9)))

	return res, nil
}

// decodeRows coerces raw rows in index-addressed batches so the decoded
// slice keeps the file order regardless of worker scheduling.
func (a *Analytics) decodeRows(ctx context.Context, table *ingest.Table, res *schema.Resolution) ([]models.Order, error) {
	orders := make([]models.Order, len(table.Rows))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for lo := 0; lo < len(table.Rows); lo += batchSize {
		hi := min(lo+batchSize, len(table.Rows))
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			for i := lo; i < hi; i++ {
				orders[i] = ingest.DecodeOrder(table.Rows[i], res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetData installs an already-decoded dataset with every column treated as
// mapped. Used by tests.
func (a *Analytics) SetData(orders []models.Order) {
	res := fullResolution()
	report := computeReport(orders, res, models.Filter{})

	a.mu.Lock()
	a.orders = orders
	a.resolution = res
	a.report = report
	a.loadedAt = time.Now()
	a.mu.Unlock()

	a.rowsProcessed.Store(int64(len(orders)))
}

// Report returns the aggregates for the filter. The zero filter serves the
// precomputed report; anything else recomputes over the current dataset.
func (a *Analytics) Report(f models.Filter) *models.Report {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if f.IsZero() {
		return a.report
	}
	return computeReport(a.orders, a.resolution, f)
}

// Resolution returns the column mapping of the current dataset.
func (a *Analytics) Resolution() *schema.Resolution {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.resolution == nil {
		return fullResolution()
	}
	return a.resolution
}

// Stats is the monitoring view served under /admin/stats.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"rows":            a.rowsProcessed.Load(),
		"source":          a.source,
		"loaded_at":       a.loadedAt,
		"schema_complete": a.resolution == nil || a.resolution.Complete(),
		"months":          len(a.report.Monthly),
		"categories":      len(a.report.Categories),
		"regions":         len(a.report.Regions),
		"loss_orders":     a.report.Summary.LossOrderCount,
	}
}

func fullResolution() *schema.Resolution {
	res := &schema.Resolution{Columns: make(map[schema.Field]schema.ColumnMatch)}
	for i, f := range append(schema.Required(), schema.Optional()...) {
		res.Columns[f] = schema.ColumnMatch{Column: string(f), Index: i, Kind: schema.MatchExact}
	}
	return res
}

// sectionFields names the canonical fields each report section depends
// on. An unmapped field disables the section rather than the dashboard.
var sectionFields = map[string][]schema.Field{
	models.SectionMonthlyTrend:    {schema.FieldOrderDate, schema.FieldSales, schema.FieldProfit},
	models.SectionCategoryProfit:  {schema.FieldCategory, schema.FieldSales, schema.FieldProfit},
	models.SectionSubCategories:   {schema.FieldSubCategory, schema.FieldProfit},
	models.SectionRegionProfit:    {schema.FieldRegion, schema.FieldSales, schema.FieldProfit},
	models.SectionDiscountBuckets: {schema.FieldDiscount, schema.FieldProfit},
	models.SectionLossOrders:      {schema.FieldDiscount, schema.FieldProfit},
}

type monthlyAcc struct {
	sales, profit float64
	orderIDs      map[string]struct{}
	rows          int
}

type groupAcc struct {
	sales, profit float64
	rows          int
}

func computeReport(orders []models.Order, res *schema.Resolution, f models.Filter) *models.Report {
	rep := &models.Report{}

	disabled := make(map[string]string)
	enabled := func(section string) bool {
		for _, field := range sectionFields[section] {
			if !res.Has(field) {
				disabled[section] = fmt.Sprintf("column for %s not mapped", field)
				return false
			}
		}
		return true
	}

	doMonthly := enabled(models.SectionMonthlyTrend)
	doCategories := enabled(models.SectionCategoryProfit)
	doSubCats := enabled(models.SectionSubCategories)
	doRegions := enabled(models.SectionRegionProfit)
	doBuckets := enabled(models.SectionDiscountBuckets)
	doLoss := enabled(models.SectionLossOrders)

	countByID := res.Has(schema.FieldOrderID)

	monthly := make(map[string]*monthlyAcc)
	categories := make(map[string]*groupAcc)
	subCategories := make(map[string]*groupAcc)
	regions := make(map[string]*groupAcc)
	var buckets [len(bucketLabels)]groupAcc
	orderIDs := make(map[string]struct{})

	var discountSum float64
	var discountRows int
	sum := &rep.Summary

	for _, o := range orders {
		if !f.Match(o) {
			continue
		}
		sum.Rows++

		if o.SalesValid {
			sum.TotalSales += o.Sales
		}
		if o.ProfitValid {
			sum.TotalProfit += o.Profit
		}
		if o.DiscountValid {
			discountSum += o.Discount
			discountRows++
		}
		if countByID && o.OrderID != "" {
			orderIDs[o.OrderID] = struct{}{}
		}

		if doLoss && o.HighDiscountLoss() {
			sum.LossOrderCount++
			rep.LossOrders = append(rep.LossOrders, lossOrder(o))
		}

		if doMonthly && o.DateValid {
			key := o.OrderDate.Format(monthLayout)
			acc := monthly[key]
			if acc == nil {
				acc = &monthlyAcc{orderIDs: make(map[string]struct{})}
				monthly[key] = acc
			}
			if o.SalesValid {
				acc.sales += o.Sales
			}
			if o.ProfitValid {
				acc.profit += o.Profit
			}
			if countByID && o.OrderID != "" {
				acc.orderIDs[o.OrderID] = struct{}{}
			}
			acc.rows++
		}

		if doCategories {
			accumulate(categories, o.Category, o)
		}
		if doSubCats {
			accumulate(subCategories, o.SubCategory, o)
		}
		if doRegions {
			accumulate(regions, o.Region, o)
		}
		if doBuckets && o.DiscountValid {
			if i := bucketFor(o.Discount); i >= 0 {
				if o.ProfitValid {
					buckets[i].profit += o.Profit
				}
				buckets[i].rows++
			}
		}
	}

	if countByID {
		sum.Orders = len(orderIDs)
	} else {
		sum.Orders = sum.Rows
	}
	if sum.Orders > 0 {
		sum.AvgOrderValue = sum.TotalSales / float64(sum.Orders)
	}
	if discountRows > 0 {
		sum.AvgDiscount = discountSum / float64(discountRows)
	}

	if doMonthly {
		rep.Monthly = sortMonthly(monthly, countByID)
	}
	if doCategories {
		rep.Categories = sortCategories(categories)
	}
	if doSubCats {
		rep.SubCategories = sortSubCategories(subCategories)
	}
	if doRegions {
		rep.Regions = sortRegions(regions)
	}
	if doBuckets {
		rep.DiscountBuckets = make([]models.DiscountBucketProfit, len(bucketLabels))
		for i, label := range bucketLabels {
			rep.DiscountBuckets[i] = models.DiscountBucketProfit{
				Bucket: label,
				Profit: buckets[i].profit,
				Rows:   buckets[i].rows,
			}
		}
	}
	if doLoss {
		slices.SortStableFunc(rep.LossOrders, func(a, b models.LossOrder) int {
			return compareFloats(a.Profit, b.Profit)
		})
		if len(rep.LossOrders) > maxLossOrders {
			rep.LossOrders = rep.LossOrders[:maxLossOrders]
		}
	}

	if len(disabled) > 0 {
		rep.Disabled = disabled
	}
	return rep
}

func accumulate(groups map[string]*groupAcc, key string, o models.Order) {
	acc := groups[key]
	if acc == nil {
		acc = &groupAcc{}
		groups[key] = acc
	}
	if o.SalesValid {
		acc.sales += o.Sales
	}
	if o.ProfitValid {
		acc.profit += o.Profit
	}
	acc.rows++
}

// bucketFor returns the discount bucket index, or -1 when the discount
// falls outside every bin.
func bucketFor(d float64) int {
	if d <= 0 {
		return -1
	}
	for i, hi := range bucketUpper {
		if d <= hi {
			return i
		}
	}
	return -1
}

func lossOrder(o models.Order) models.LossOrder {
	lo := models.LossOrder{
		OrderID:     o.OrderID,
		Category:    o.Category,
		SubCategory: o.SubCategory,
		ProductName: o.ProductName,
		Sales:       o.Sales,
		Discount:    o.Discount,
		Profit:      o.Profit,
	}
	if o.DateValid {
		lo.OrderDate = o.OrderDate.Format("2006-01-02")
	}
	return lo
}

func sortMonthly(groups map[string]*monthlyAcc, countByID bool) []models.MonthlyPoint {
	result := make([]models.MonthlyPoint, 0, len(groups))
	for month, acc := range groups {
		p := models.MonthlyPoint{Month: month, Sales: acc.sales, Profit: acc.profit, Orders: acc.rows}
		if countByID {
			p.Orders = len(acc.orderIDs)
		}
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b models.MonthlyPoint) int {
		return compareStrings(a.Month, b.Month)
	})
	return result
}

func sortCategories(groups map[string]*groupAcc) []models.CategoryProfit {
	result := make([]models.CategoryProfit, 0, len(groups))
	for name, acc := range groups {
		result = append(result, models.CategoryProfit{Category: name, Sales: acc.sales, Profit: acc.profit, Rows: acc.rows})
	}
	slices.SortFunc(result, func(a, b models.CategoryProfit) int {
		if c := compareFloats(a.Profit, b.Profit); c != 0 {
			return c
		}
		return compareStrings(a.Category, b.Category)
	})
	return result
}

func sortSubCategories(groups map[string]*groupAcc) []models.SubCategoryProfit {
	result := make([]models.SubCategoryProfit, 0, len(groups))
	for name, acc := range groups {
		result = append(result, models.SubCategoryProfit{SubCategory: name, Profit: acc.profit, Rows: acc.rows})
	}
	slices.SortFunc(result, func(a, b models.SubCategoryProfit) int {
		if c := compareFloats(a.Profit, b.Profit); c != 0 {
			return c
		}
		return compareStrings(a.SubCategory, b.SubCategory)
	})
	if len(result) > maxSubCategories {
		result = result[:maxSubCategories]
	}
	return result
}

func sortRegions(groups map[string]*groupAcc) []models.RegionProfit {
	result := make([]models.RegionProfit, 0, len(groups))
	for name, acc := range groups {
		result = append(result, models.RegionProfit{Region: name, Sales: acc.sales, Profit: acc.profit, Rows: acc.rows})
	}
	slices.SortFunc(result, func(a, b models.RegionProfit) int {
		if c := compareFloats(a.Profit, b.Profit); c != 0 {
			return c
		}
		return compareStrings(a.Region, b.Region)
	})
	return result
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
