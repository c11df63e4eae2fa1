package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/oms-backend/internal/customers"
	"github.com/angelmondragon/oms-backend/internal/reports"
	"github.com/angelmondragon/oms-backend/pkg/config"
	"github.com/angelmondragon/oms-backend/pkg/db/models"
	"github.com/angelmondragon/oms-backend/pkg/types"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCustomerService struct {
	customers.Service
	create func(ctx context.Context, input customers.CreateCustomerInput) (*models.Customer, error)
	get    func(ctx context.Context, id int64) (*models.Customer, error)
	delete func(ctx context.Context, id int64) error
}

func (s *stubCustomerService) Create(ctx context.Context, input customers.CreateCustomerInput) (*models.Customer, error) {
	return s.create(ctx, input)
}

func (s *stubCustomerService) Get(ctx context.Context, id int64) (*models.Customer, error) {
	return s.get(ctx, id)
}

func (s *stubCustomerService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

type stubReportsService struct {
	gotLimit int
}

func (s *stubReportsService) TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]reports.TopProduct, error) {
	s.gotLimit = limit
	return []reports.TopProduct{{ProductID: 1, SKU: "SKU-1", Name: "Widget", TotalQuantity: 4, TotalSalesCents: 1000}}, nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	tests := []struct {
		name       string
		db         Pinger
		redis      Pinger
		wantStatus int
		wantRedis  string
	}{
		{name: "all up", db: stubPinger{}, redis: stubPinger{}, wantStatus: http.StatusOK, wantRedis: "ok"},
		{name: "redis disabled", db: stubPinger{}, redis: nil, wantStatus: http.StatusOK, wantRedis: "disabled"},
		{name: "db down", db: stubPinger{err: errors.New("refused")}, redis: stubPinger{}, wantStatus: http.StatusServiceUnavailable},
		{name: "redis down", db: stubPinger{}, redis: stubPinger{err: errors.New("refused")}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			HealthReady(cfg, nil, tc.db, tc.redis).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			require.Equal(t, tc.wantStatus, resp.Code)
			assert.Equal(t, "dev", resp.Header().Get("X-OMS-Env"))
			if tc.wantStatus != http.StatusOK {
				return
			}
			var body struct {
				Data struct {
					Status string            `json:"status"`
					Checks map[string]string `json:"checks"`
				} `json:"data"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "ready", body.Data.Status)
			assert.Equal(t, tc.wantRedis, body.Data.Checks["redis"])
		})
	}
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "prod", resp.Header().Get("X-OMS-Env"))
}

func TestCustomerCreateValidatesBody(t *testing.T) {
	called := false
	svc := &stubCustomerService{
		create: func(ctx context.Context, input customers.CreateCustomerInput) (*models.Customer, error) {
			called = true
			return &models.Customer{ID: 1, Email: input.Email}, nil
		},
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"email":"not-an-email","first_name":"A","last_name":"B"}`))
	CustomerCreate(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, called)

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"email":"a@example.com","first_name":"A","last_name":"B"}`))
	CustomerCreate(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.True(t, called)
}

func TestCustomerGetNotFound(t *testing.T) {
	svc := &stubCustomerService{
		get: func(ctx context.Context, id int64) (*models.Customer, error) {
			return nil, customers.NotFoundError(id)
		},
	}

	resp := httptest.NewRecorder()
	CustomerGet(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/customers/7", nil), customerIDParam, "7"))

	require.Equal(t, http.StatusNotFound, resp.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(customers.ReasonCustomerNotFound), body.Error.Reason)
}

func TestCustomerDeleteReturnsNoContent(t *testing.T) {
	var gotID int64
	svc := &stubCustomerService{
		delete: func(ctx context.Context, id int64) error {
			gotID = id
			return nil
		},
	}

	resp := httptest.NewRecorder()
	CustomerDelete(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/customers/3", nil), customerIDParam, "3"))

	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, int64(3), gotID)
	assert.Zero(t, resp.Body.Len())
}

func TestTopProducts(t *testing.T) {
	svc := &stubReportsService{}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/top-products?start=2025-01-01T00:00:00Z&end=2025-02-01T00:00:00Z", nil)
	TopProducts(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, reports.DefaultTopProductsLimit, svc.gotLimit)

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/top-products?start=2025-01-01T00:00:00Z&end=2025-02-01T00:00:00Z&limit=500", nil)
	TopProducts(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/top-products?end=2025-02-01T00:00:00Z", nil)
	TopProducts(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}
