package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/oms-backend/internal/customers"
	"github.com/angelmondragon/oms-backend/internal/orders"
	"github.com/angelmondragon/oms-backend/internal/products"
	"github.com/angelmondragon/oms-backend/internal/reports"
	"github.com/angelmondragon/oms-backend/pkg/config"
	"github.com/angelmondragon/oms-backend/pkg/db/models"
	"github.com/angelmondragon/oms-backend/pkg/enums"
	"github.com/angelmondragon/oms-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCustomers struct {
	customers.Service
}

func (stubCustomers) Get(ctx context.Context, id int64) (*models.Customer, error) {
	return &models.Customer{ID: id, Email: "a@example.com"}, nil
}

type stubProducts struct {
	products.Service
}

func (stubProducts) Delete(ctx context.Context, id int64) error {
	return nil
}

type stubOrders struct {
	orders.Service
	created  int
	statuses []string
}

func (s *stubOrders) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDetail, error) {
	s.created++
	return &orders.OrderDetail{ID: int64(s.created), CustomerID: input.CustomerID, Status: enums.OrderStatusPending}, nil
}

func (s *stubOrders) SetOrderStatus(ctx context.Context, orderID int64, status string) (*orders.OrderDetail, error) {
	s.statuses = append(s.statuses, status)
	return &orders.OrderDetail{ID: orderID, Status: enums.OrderStatus(status)}, nil
}

func (s *stubOrders) DeleteOrder(ctx context.Context, orderID int64) (bool, error) {
	return orderID == 1, nil
}

func (s *stubOrders) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]orders.OrderSummary, error) {
	return []orders.OrderSummary{{ID: 1, CustomerID: customerID}}, nil
}

type stubReports struct{}

func (stubReports) TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]reports.TopProduct, error) {
	return []reports.TopProduct{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Env: "dev"},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T, ordersSvc *stubOrders) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(testConfig(), nil, Deps{
		DBPinger:       stubPinger{},
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Customers:      stubCustomers{},
		Products:       stubProducts{},
		Orders:         ordersSvc,
		Reports:        stubReports{},
	})
}

func TestRouterServesRoutes(t *testing.T) {
	router := newTestRouter(t, &stubOrders{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"live", http.MethodGet, "/health/live", "", http.StatusOK},
		{"ready without redis", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"get customer", http.MethodGet, "/api/v1/customers/4", "", http.StatusOK},
		{"customer orders", http.MethodGet, "/api/v1/customers/4/orders", "", http.StatusOK},
		{"delete product", http.MethodDelete, "/api/v1/products/2", "", http.StatusNoContent},
		{"create order", http.MethodPost, "/api/v1/orders", `{"customer_id":4,"items":[{"product_id":1,"quantity":1}]}`, http.StatusCreated},
		{"set status", http.MethodPatch, "/api/v1/orders/3/status", `{"status":"CONFIRMED"}`, http.StatusOK},
		{"delete order", http.MethodDelete, "/api/v1/orders/1", "", http.StatusNoContent},
		{"delete missing order", http.MethodDelete, "/api/v1/orders/2", "", http.StatusNotFound},
		{"bad order id", http.MethodPatch, "/api/v1/orders/x/status", `{"status":"CONFIRMED"}`, http.StatusBadRequest},
		{"top products", http.MethodGet, "/api/v1/reports/top-products?start=2025-01-01T00:00:00Z&end=2025-02-01T00:00:00Z", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	router := newTestRouter(t, &stubOrders{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected metrics endpoint to respond 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/health/live"`) {
		t.Fatalf("expected route label in metrics output")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, &stubOrders{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestRouterPassesStatusThrough(t *testing.T) {
	svc := &stubOrders{}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/3/status", strings.NewReader(`{"status":"shipped"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	if len(svc.statuses) != 1 || svc.statuses[0] != "shipped" {
		t.Fatalf("unexpected statuses %v", svc.statuses)
	}
}
