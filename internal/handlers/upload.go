package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/schema"
	"sales-dashboard/internal/services"
)

type UploadHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	maxBytes  int64
}

func NewUploadHandlers(analytics *services.Analytics, logger *slog.Logger, maxBytes int64) *UploadHandlers {
	return &UploadHandlers{
		analytics: analytics,
		logger:    logger,
		maxBytes:  maxBytes,
	}
}

func requestID(r *http.Request) string {
	return observability.GetRequestID(r.Context())
}

// HandleUpload replaces the in-memory dataset with an uploaded file.
//
// The request is multipart with the dataset under "file". Manual column
// mappings ride along as "map[<field>]" form values, e.g.
// map[sales]=Revenue; the client sends them after a first upload comes
// back with unresolved fields. The response always carries the resolution
// so the client knows which report sections are live.
func (h *UploadHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	rid := requestID(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid multipart request"), rid)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequest("missing dataset file"), rid)
		return
	}
	defer file.Close()

	overrides := parseOverrides(r)

	res, err := h.analytics.LoadFromReader(r.Context(), file, header.Filename, overrides)
	if err != nil {
		errors.WriteError(w, h.logger, errors.ValidationWrap(err, "could not ingest dataset"), rid)
		return
	}

	rep := h.analytics.Report(models.Filter{})

	h.logger.Info("dataset replaced",
		"filename", header.Filename,
		"rows", rep.Summary.Rows,
		"unresolved", res.Unresolved,
		"request_id", rid,
	)

	errors.WriteSuccess(w, map[string]any{
		"resolution": res,
		"summary":    rep.Summary,
		"disabled":   rep.Disabled,
	})
}

// parseOverrides collects map[<field>]=<column> form values into a schema
// override set. Unknown field names are ignored; the mapper validates the
// column names.
func parseOverrides(r *http.Request) map[schema.Field]string {
	known := make(map[schema.Field]bool)
	for _, f := range append(schema.Required(), schema.Optional()...) {
		known[f] = true
	}

	overrides := make(map[schema.Field]string)
	for key, values := range r.Form {
		if !strings.HasPrefix(key, "map[") || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		f := schema.Field(key[len("map[") : len(key)-1])
		if known[f] && values[0] != "" {
			overrides[f] = values[0]
		}
	}
	if len(overrides) == 0 {
		return nil
	}
	return overrides
}
