package models

// Report section names, used as keys in Report.Disabled when the column
// a section depends on could not be mapped.
const (
	SectionMonthlyTrend    = "monthly_trend"
	SectionCategoryProfit  = "category_profit"
	SectionSubCategories   = "subcategory_losses"
	SectionRegionProfit    = "region_profit"
	SectionDiscountBuckets = "discount_buckets"
	SectionLossOrders      = "loss_orders"
)

type Summary struct {
	TotalSales     float64 `json:"total_sales"`
	TotalProfit    float64 `json:"total_profit"`
	Orders         int     `json:"orders"`
	Rows           int     `json:"rows"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	AvgDiscount    float64 `json:"avg_discount"`
	LossOrderCount int     `json:"loss_order_count"`
}

type MonthlyPoint struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
	Orders int     `json:"orders"`
}

type CategoryProfit struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
	Profit   float64 `json:"profit"`
	Rows     int     `json:"rows"`
}

type SubCategoryProfit struct {
	SubCategory string  `json:"sub_category"`
	Profit      float64 `json:"profit"`
	Rows        int     `json:"rows"`
}

type RegionProfit struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
	Rows   int     `json:"rows"`
}

type DiscountBucketProfit struct {
	Bucket string  `json:"bucket"`
	Profit float64 `json:"profit"`
	Rows   int     `json:"rows"`
}

// LossOrder is one row of the high-discount leak list. Field tags double
// as the CSV export header.
type LossOrder struct {
	OrderDate   string  `json:"order_date" csv:"order_date"`
	OrderID     string  `json:"order_id,omitempty" csv:"order_id"`
	Category    string  `json:"category" csv:"category"`
	SubCategory string  `json:"sub_category" csv:"sub_category"`
	ProductName string  `json:"product_name,omitempty" csv:"product_name"`
	Sales       float64 `json:"sales" csv:"sales"`
	Discount    float64 `json:"discount" csv:"discount"`
	Profit      float64 `json:"profit" csv:"profit"`
}

// Report is the full set of aggregates one dashboard render needs.
// Sections whose canonical column is unmapped appear in Disabled with a
// reason and stay empty; everything else is computed from the rows that
// survive the filter.
type Report struct {
	Summary         Summary                `json:"summary"`
	Monthly         []MonthlyPoint         `json:"monthly"`
	Categories      []CategoryProfit       `json:"categories"`
	SubCategories   []SubCategoryProfit    `json:"sub_categories"`
	Regions         []RegionProfit         `json:"regions"`
	DiscountBuckets []DiscountBucketProfit `json:"discount_buckets"`
	LossOrders      []LossOrder            `json:"loss_orders"`
	Disabled        map[string]string      `json:"disabled,omitempty"`
}
