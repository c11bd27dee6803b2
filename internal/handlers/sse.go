package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const maxTableRows = 50

var lossTableTemplate = template.Must(template.New("lossTable").Funcs(template.FuncMap{
	"pct": func(d float64) float64 { return d * 100 },
}).Parse(`
<div id="loss-orders-content">
<table class="modern-table">
<thead><tr><th>Order Date</th><th>Order ID</th><th>Category</th><th>Sub-Category</th><th>Product</th><th>Sales</th><th>Discount</th><th>Profit</th></tr></thead>
<tbody>
{{range $i, $item := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{.OrderDate}}</td>
<td>{{.OrderID}}</td>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.SubCategory}}</td>
<td>{{.ProductName}}</td>
<td>${{printf "%.2f" .Sales}}</td>
<td>{{printf "%.0f" (pct .Discount)}}%</td>
<td class="loss"><strong>${{printf "%.2f" .Profit}}</strong></td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type templateData struct {
	Data    []models.LossOrder
	MaxRows int
}

func (h *SSEHandlers) renderLossTable(data []models.LossOrder) (string, error) {
	var buf strings.Builder

	if len(data) > maxTableRows {
		data = data[:maxTableRows]
	}

	err := lossTableTemplate.Execute(&buf, templateData{Data: data, MaxRows: maxTableRows})
	return buf.String(), err
}

func (h *SSEHandlers) filtered(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	f, err := parseFilter(r)
	if err != nil {
		http.Error(w, "invalid filter", http.StatusBadRequest)
		return nil, false
	}
	return h.analytics.Report(f), true
}

func (h *SSEHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.filtered(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	h.patchSignals(sse, map[string]any{"monthlyData": rep.Monthly})
	flush(w)
}

func (h *SSEHandlers) HandleCategoryProfit(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.filtered(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	h.patchSignals(sse, map[string]any{"categoryData": rep.Categories})
	flush(w)
}

func (h *SSEHandlers) HandleRegionProfit(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.filtered(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	h.patchSignals(sse, map[string]any{"regionData": rep.Regions})
	flush(w)
}

func (h *SSEHandlers) HandleDiscountBuckets(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.filtered(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	h.patchSignals(sse, map[string]any{
		"bucketData":      rep.DiscountBuckets,
		"subCategoryData": rep.SubCategories,
	})
	flush(w)
}

func (h *SSEHandlers) HandleLossOrders(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.filtered(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	html, err := h.renderLossTable(rep.LossOrders)
	if err != nil {
		h.logger.Error("render loss table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

// HandleRefreshAll pushes every chart signal plus the KPI row and leak
// table in one stream; the diagnostic page calls it on load and on filter
// changes.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.filtered(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	html, err := h.renderLossTable(rep.LossOrders)
	if err != nil {
		h.logger.Error("render loss table", "error", err)
		return
	}
	sse.PatchElements(html)

	h.patchSignals(sse, map[string]any{
		"summary":         rep.Summary,
		"monthlyData":     rep.Monthly,
		"categoryData":    rep.Categories,
		"subCategoryData": rep.SubCategories,
		"regionData":      rep.Regions,
		"bucketData":      rep.DiscountBuckets,
		"insights":        insights.Build(rep),
		"disabled":        rep.Disabled,
	})
	flush(w)
}

// HandleRefreshDecision is the decision page's refresh: signals only,
// since that page has no leak-table element to patch.
func (h *SSEHandlers) HandleRefreshDecision(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.filtered(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	h.patchSignals(sse, map[string]any{
		"summary":         rep.Summary,
		"categoryData":    rep.Categories,
		"subCategoryData": rep.SubCategories,
		"regionData":      rep.Regions,
		"bucketData":      rep.DiscountBuckets,
		"insights":        insights.Build(rep),
		"disabled":        rep.Disabled,
	})
	flush(w)
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
