package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/oms-backend/internal/products"
	internalorders "github.com/angelmondragon/oms-backend/internal/orders"
	"github.com/angelmondragon/oms-backend/pkg/enums"
	"github.com/angelmondragon/oms-backend/pkg/types"
)

type stubOrdersService struct {
	create    func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error)
	replace   func(ctx context.Context, orderID int64, items []internalorders.ItemInput) (*internalorders.OrderDetail, error)
	setStatus func(ctx context.Context, orderID int64, status string) (*internalorders.OrderDetail, error)
	delete    func(ctx context.Context, orderID int64) (bool, error)
	get       func(ctx context.Context, orderID int64) (*internalorders.OrderDetail, error)
	byRange   func(ctx context.Context, start, end time.Time) ([]internalorders.OrderSummary, error)
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error) {
	return s.create(ctx, input)
}

func (s *stubOrdersService) ReplaceOrderItems(ctx context.Context, orderID int64, items []internalorders.ItemInput) (*internalorders.OrderDetail, error) {
	return s.replace(ctx, orderID, items)
}

func (s *stubOrdersService) SetOrderStatus(ctx context.Context, orderID int64, status string) (*internalorders.OrderDetail, error) {
	return s.setStatus(ctx, orderID, status)
}

func (s *stubOrdersService) DeleteOrder(ctx context.Context, orderID int64) (bool, error) {
	return s.delete(ctx, orderID)
}

func (s *stubOrdersService) GetOrder(ctx context.Context, orderID int64) (*internalorders.OrderDetail, error) {
	return s.get(ctx, orderID)
}

func (s *stubOrdersService) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]internalorders.OrderSummary, error) {
	return []internalorders.OrderSummary{}, nil
}

func (s *stubOrdersService) ListOrdersByDateRange(ctx context.Context, start, end time.Time) ([]internalorders.OrderSummary, error) {
	return s.byRange(ctx, start, end)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return body.Error
}

func TestCreateReturns201(t *testing.T) {
	var got internalorders.CreateOrderInput
	svc := &stubOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error) {
			got = input
			return &internalorders.OrderDetail{ID: 9, CustomerID: input.CustomerID, Status: enums.OrderStatusPending, TotalCents: 500}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"customer_id":3,"items":[{"product_id":1,"quantity":2}]}`))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.CustomerID != 3 || len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected input passed to service: %+v", got)
	}
	var body struct {
		Data internalorders.OrderDetail `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != 9 || body.Data.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected body %+v", body.Data)
	}
}

func TestCreateRejectsMissingCustomer(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"items":[{"product_id":1,"quantity":2}]}`))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateMapsOutOfStock(t *testing.T) {
	svc := &stubOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDetail, error) {
			return nil, products.OutOfStockError(1, 0, 2)
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"customer_id":3,"items":[{"product_id":1,"quantity":2}]}`))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Reason != string(products.ReasonOutOfStock) {
		t.Fatalf("expected OUT_OF_STOCK, got %q", apiErr.Reason)
	}
	details, ok := apiErr.Details.(map[string]any)
	if !ok || details["available"] != float64(0) || details["requested"] != float64(2) {
		t.Fatalf("unexpected details %v", apiErr.Details)
	}
}

func TestSetStatusPassesRawStatus(t *testing.T) {
	var gotID int64
	var gotStatus string
	svc := &stubOrdersService{
		setStatus: func(ctx context.Context, orderID int64, status string) (*internalorders.OrderDetail, error) {
			gotID, gotStatus = orderID, status
			return &internalorders.OrderDetail{ID: orderID, Status: enums.OrderStatusConfirmed}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/12/status", strings.NewReader(`{"status":"confirmed"}`))
	req = withURLParam(req, orderIDParam, "12")
	resp := httptest.NewRecorder()
	SetStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotID != 12 || gotStatus != "confirmed" {
		t.Fatalf("unexpected service call %d %q", gotID, gotStatus)
	}
}

func TestDeleteResponses(t *testing.T) {
	deleted := true
	svc := &stubOrdersService{
		delete: func(ctx context.Context, orderID int64) (bool, error) {
			return deleted, nil
		},
	}

	resp := httptest.NewRecorder()
	Delete(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/orders/5", nil), orderIDParam, "5"))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	deleted = false
	resp = httptest.NewRecorder()
	Delete(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/orders/5", nil), orderIDParam, "5"))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Reason != string(internalorders.ReasonOrderNotFound) {
		t.Fatalf("expected ORDER_NOT_FOUND, got %q", apiErr.Reason)
	}
}

func TestDetailRejectsBadID(t *testing.T) {
	svc := &stubOrdersService{}
	resp := httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/abc", nil), orderIDParam, "abc"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestListByDateRangeParsesBounds(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &stubOrdersService{
		byRange: func(ctx context.Context, start, end time.Time) ([]internalorders.OrderSummary, error) {
			gotStart, gotEnd = start, end
			return []internalorders.OrderSummary{{ID: 1}}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?start=2025-01-01T00:00:00Z&end=2025-01-31T23:59:59Z", nil)
	resp := httptest.NewRecorder()
	ListByDateRange(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotStart.Month() != time.January || gotEnd.Day() != 31 {
		t.Fatalf("unexpected bounds %v %v", gotStart, gotEnd)
	}

	resp = httptest.NewRecorder()
	ListByDateRange(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders?start=2025-01-01", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non RFC3339 start, got %d", resp.Code)
	}
}
