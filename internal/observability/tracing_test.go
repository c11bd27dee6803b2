package observability

import (
	"context"
	"errors"
	"testing"
)

func TestStartSpan_NewTrace(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "GET /")

	if span.TraceID == "" || span.SpanID == "" {
		t.Fatalf("span missing IDs: %+v", span)
	}
	if span.ParentID != "" {
		t.Errorf("root span has parent %q", span.ParentID)
	}
	if span.Operation != "GET /" {
		t.Errorf("operation = %q", span.Operation)
	}
	if GetSpan(ctx) != span {
		t.Error("span not stored on the context")
	}
}

func TestStartSpan_ChildSharesTrace(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "GET /api/upload")
	_, child := StartSpan(ctx, "load dataset")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace %q != parent trace %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent %q != parent span %q", child.ParentID, parent.SpanID)
	}
	if child.SpanID == parent.SpanID {
		t.Error("child must get its own span ID")
	}
}

func TestSpan_FinishAndTags(t *testing.T) {
	_, span := StartSpan(context.Background(), "op")

	span.SetTag("http.status_code", "500")
	span.SetError(errors.New("HTTP 500"))
	span.Finish()

	if span.Duration <= 0 {
		t.Errorf("duration = %v, want > 0", span.Duration)
	}
	if span.Tags["http.status_code"] != "500" {
		t.Errorf("tags = %v", span.Tags)
	}
	if span.Err == nil {
		t.Error("error not recorded")
	}
}

func TestGetSpan_Empty(t *testing.T) {
	if GetSpan(context.Background()) != nil {
		t.Error("empty context should carry no span")
	}
}
