package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"
)

type sampleBody struct {
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
	Email      string `json:"email" validate:"required,email"`
}

func TestDecodeJSONBodyReportsJSONFieldNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_id":0,"email":"nope"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if _, ok := details["customer_id"]; !ok {
		t.Fatalf("expected customer_id detail, got %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"customer_id":1,"email":"a@b.co","extra":true}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestParseQueryTime(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2025-03-10T12:00:00%2B02:00&bad=yesterday", nil)

	got, err := ParseQueryTime(req, "start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("expected %v in UTC, got %v", want, got)
	}

	if _, err := ParseQueryTime(req, "bad"); err == nil {
		t.Fatal("expected parse failure")
	}
	if _, err := ParseQueryTime(req, "missing"); err == nil {
		t.Fatal("expected missing parameter failure")
	}
}

func TestParseIDParam(t *testing.T) {
	build := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("orderId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	id, err := ParseIDParam(build("42"), "orderId")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "abc"} {
		if _, err := ParseIDParam(build(raw), "orderId"); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestParseQueryIntRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected out of range error")
	}
	got, err := ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 10, 1, 100)
	if err != nil || got != 10 {
		t.Fatalf("expected default 10, got %d (%v)", got, err)
	}
}
