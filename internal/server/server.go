package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
)

type Server struct {
	analytics      *services.Analytics
	mux            *http.ServeMux
	logger         *slog.Logger
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	uploadHandlers *handlers.UploadHandlers
}

// TemplateHandlers carries the page handlers for the two dashboards.
type TemplateHandlers struct {
	Diagnostic http.HandlerFunc
	Decision   http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers, maxUploadBytes int64) *Server {
	s := &Server{
		analytics:      analytics,
		mux:            http.NewServeMux(),
		logger:         logger,
		apiHandlers:    handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:    handlers.NewSSEHandlers(analytics, logger),
		uploadHandlers: handlers.NewUploadHandlers(analytics, logger, maxUploadBytes),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard pages
	s.mux.HandleFunc("GET /{$}", templateHandlers.Diagnostic)
	s.mux.HandleFunc("GET /decision", templateHandlers.Decision)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/monthly-trend", s.apiHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /api/category-profit", s.apiHandlers.HandleCategoryProfit)
	s.mux.HandleFunc("GET /api/subcategory-losses", s.apiHandlers.HandleSubCategoryLosses)
	s.mux.HandleFunc("GET /api/region-profit", s.apiHandlers.HandleRegionProfit)
	s.mux.HandleFunc("GET /api/discount-buckets", s.apiHandlers.HandleDiscountBuckets)
	s.mux.HandleFunc("GET /api/loss-orders", s.apiHandlers.HandleLossOrders)
	s.mux.HandleFunc("GET /api/loss-orders/export", s.apiHandlers.HandleLossOrdersExport)
	s.mux.HandleFunc("GET /api/insights", s.apiHandlers.HandleInsights)
	s.mux.HandleFunc("GET /api/schema", s.apiHandlers.HandleSchema)
	s.mux.HandleFunc("POST /api/upload", s.uploadHandlers.HandleUpload)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/monthly-trend", s.sseHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /sse/category-profit", s.sseHandlers.HandleCategoryProfit)
	s.mux.HandleFunc("GET /sse/region-profit", s.sseHandlers.HandleRegionProfit)
	s.mux.HandleFunc("GET /sse/discount-buckets", s.sseHandlers.HandleDiscountBuckets)
	s.mux.HandleFunc("GET /sse/loss-orders", s.sseHandlers.HandleLossOrders)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("GET /sse/refresh-decision", s.sseHandlers.HandleRefreshDecision)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
