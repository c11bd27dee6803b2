package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/ingest"
	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const cacheMaxAge = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// parseFilter reads the shared filter query parameters: from and to as
// YYYY-MM-DD, regions as a comma-separated list. Unparseable dates are a
// client error.
func parseFilter(r *http.Request) (models.Filter, error) {
	var f models.Filter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, ok := ingest.ParseDate(v)
		if !ok {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, ok := ingest.ParseDate(v)
		if !ok {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		f.To = t
	}
	if v := q.Get("regions"); v != "" {
		for _, region := range strings.Split(v, ",") {
			if region = strings.TrimSpace(region); region != "" {
				f.Regions = append(f.Regions, region)
			}
		}
	}

	return f, nil
}

// report resolves the filter and computes the report, writing a
// BAD_REQUEST response itself when the filter is malformed.
func (h *APIHandlers) report(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	f, err := parseFilter(r)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid filter"), requestID(r))
		return nil, false
	}
	return h.analytics.Report(f), true
}

func cached() map[string]string {
	return map[string]string{"Cache-Control": cacheMaxAge}
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, rep.Summary, cached())
}

func (h *APIHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, rep.Monthly, cached())
}

func (h *APIHandlers) HandleCategoryProfit(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, rep.Categories, cached())
}

func (h *APIHandlers) HandleSubCategoryLosses(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, rep.SubCategories, cached())
}

func (h *APIHandlers) HandleRegionProfit(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, rep.Regions, cached())
}

func (h *APIHandlers) HandleDiscountBuckets(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, rep.DiscountBuckets, cached())
}

func (h *APIHandlers) HandleLossOrders(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, map[string]any{
		"count":  rep.Summary.LossOrderCount,
		"orders": rep.LossOrders,
	}, cached())
}

func (h *APIHandlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, insights.Build(rep), cached())
}

// HandleSchema returns the column mapping of the current dataset, so the
// client can show which canonical fields resolved and offer a remap for
// those that did not.
func (h *APIHandlers) HandleSchema(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Resolution())
}

// HandleLossOrdersExport streams the leak list as a CSV download.
func (h *APIHandlers) HandleLossOrdersExport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}

	out, err := csvutil.Marshal(rep.LossOrders)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "encode loss orders"), requestID(r))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="loss_orders.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
