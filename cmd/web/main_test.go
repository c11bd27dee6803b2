package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	a := services.NewAnalytics()
	a.SetData([]models.Order{
		{
			OrderDate: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), DateValid: true,
			OrderID: "O-1", ProductName: "Conference Table",
			Category: "Furniture", SubCategory: "Tables", Region: "South", State: "Florida",
			Sales: 100, SalesValid: true,
			Profit: -30, ProfitValid: true,
			Discount: 0.4, DiscountValid: true,
		},
		{
			OrderDate: time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), DateValid: true,
			OrderID: "O-2", ProductName: "Headset",
			Category: "Technology", SubCategory: "Phones", Region: "West", State: "California",
			Sales: 200, SalesValid: true,
			Profit: 50, ProfitValid: true,
			Discount: 0.1, DiscountValid: true,
		},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templateHandlers := &server.TemplateHandlers{
		Diagnostic: handleDiagnostic,
		Decision:   handleDecision,
	}
	return server.NewServer(a, logger, templateHandlers, 1<<20)
}

func TestDashboardPages(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Diagnostic"},
		{"/decision", "Decision"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("GET %s = %d, want 200", tt.path, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", ct)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("page %s missing %q", tt.path, tt.want)
			}
			if cc := w.Header().Get("Cache-Control"); cc != cacheMaxAge {
				t.Errorf("Cache-Control = %q, want %q", cc, cacheMaxAge)
			}
		})
	}
}

func TestAPIRoutes(t *testing.T) {
	srv := newTestServer(t)

	paths := []string{
		"/health",
		"/admin/stats",
		"/api/summary",
		"/api/monthly-trend",
		"/api/category-profit",
		"/api/subcategory-losses",
		"/api/region-profit",
		"/api/discount-buckets",
		"/api/loss-orders",
		"/api/insights",
		"/api/schema",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("GET %s = %d, want 200", path, w.Code)
			}

			var resp map[string]any
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("GET %s: decode: %v", path, err)
			}
			if resp["success"] != true {
				t.Errorf("GET %s: success = %v", path, resp["success"])
			}
		})
	}
}

func TestLossOrderExportRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/loss-orders/export", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
}

func TestSSERoutes(t *testing.T) {
	srv := newTestServer(t)

	paths := []string{
		"/sse/monthly-trend",
		"/sse/category-profit",
		"/sse/region-profit",
		"/sse/discount-buckets",
		"/sse/loss-orders",
		"/sse/refresh-all",
		"/sse/refresh-decision",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("GET %s: Content-Type = %q, want text/event-stream", path, ct)
			}
		})
	}
}

func TestUploadRequiresPost(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/upload", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/upload = %d, want 405", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", w.Code)
	}
}
