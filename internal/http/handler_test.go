package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/circuitbreaker"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/middleware"
	"github.com/guttosm/pack-assistant/internal/mocks"
	"github.com/guttosm/pack-assistant/internal/repository"
	"github.com/guttosm/pack-assistant/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	router   *gin.Engine
	packing  *service.PackingService
	orders   *repository.MemoryOrdersRepository
	settings *repository.MemoryCapacitySettingsRepository
	drafts   *repository.MemoryDraftsRepository
}

func newAPIFixture(t testing.TB, cfg RouterConfig) *apiFixture {
	t.Helper()
	f := &apiFixture{
		orders:   repository.NewMemoryOrdersRepository(),
		settings: repository.NewMemoryCapacitySettingsRepository(),
		drafts:   repository.NewMemoryDraftsRepository(),
	}
	ctx := context.Background()
	require.NoError(t, f.orders.Upsert(ctx, &model.Order{
		ID: "ORD-1",
		Items: []model.OrderLineItem{
			{ItemID: "L1", CatalogNumber: "X1", OrderedQuantity: 25, UnitWeight: 0.5},
			{ItemID: "L2", CatalogNumber: "X2", OrderedQuantity: 3, UnitWeight: 1},
		},
	}))
	require.NoError(t, f.settings.Upsert(ctx, &model.MaxPerBoxSetting{CatalogNumber: "X1", MaxQuantity: 10}))

	capacityCache := service.NewShardedCache(100, time.Minute, 4)
	t.Cleanup(capacityCache.Stop)
	resolver := service.NewCapacityResolver(f.settings, capacityCache)
	orderService := service.NewOrderService(f.orders)
	draftService := service.NewDraftService(f.drafts)

	f.packing = service.NewPackingService(orderService, resolver, draftService, time.Hour)
	t.Cleanup(func() { f.packing.Shutdown(context.Background()) })

	handler := NewHandler(orderService, service.NewCapacitySettingsService(f.settings, resolver), f.packing, draftService)
	healthHandler := NewHealthHandler()
	healthHandler.SetSessionStats(f.packing)
	f.router = NewRouter(handler, healthHandler, cfg)
	return f
}

func (f *apiFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data      json.RawMessage `json:"data"`
		RequestID string          `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	assert.NotEmpty(t, resp.RequestID)
	var data T
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestOrders(t *testing.T) {
	f := newAPIFixture(t, RouterConfig{})

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		check          func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "import order",
			method:         http.MethodPut,
			path:           "/api/orders/SO-9",
			body:           `{"customer": "ACME", "items": [{"item_id": "a", "catalog_number": "X1", "ordered_quantity": 4}]}`,
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				order := decodeData[model.Order](t, w)
				assert.Equal(t, "SO-9", order.ID)
				assert.Equal(t, "ACME", order.Customer)
				assert.Len(t, order.Items, 1)
			},
		},
		{
			name:           "get order",
			method:         http.MethodGet,
			path:           "/api/orders/ORD-1",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				order := decodeData[model.Order](t, w)
				assert.Len(t, order.Items, 2)
			},
		},
		{
			name:           "unknown order",
			method:         http.MethodGet,
			path:           "/api/orders/missing",
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, w).Error)
			},
		},
		{
			name:           "empty item list",
			method:         http.MethodPut,
			path:           "/api/orders/SO-9",
			body:           `{"items": []}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non-positive quantity",
			method:         http.MethodPut,
			path:           "/api/orders/SO-9",
			body:           `{"items": [{"item_id": "a", "catalog_number": "X1", "ordered_quantity": 0}]}`,
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, "must be a positive integer", resp.Details["items.ordered_quantity"])
			},
		},
		{
			name:           "duplicate item ids",
			method:         http.MethodPut,
			path:           "/api/orders/SO-9",
			body:           `{"items": [{"item_id": "a", "catalog_number": "X1", "ordered_quantity": 1}, {"item_id": "a", "catalog_number": "X2", "ordered_quantity": 1}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			method:         http.MethodPut,
			path:           "/api/orders/SO-9",
			body:           `{"items": `,
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, dto.MsgInvalidRequestBody, decodeError(t, w).Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, w)
			}
		})
	}
}

func TestCapacitySettings(t *testing.T) {
	f := newAPIFixture(t, RouterConfig{})

	w := f.do(http.MethodPut, "/api/capacity-settings/X2", `{"max_quantity": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	setting := decodeData[model.MaxPerBoxSetting](t, w)
	assert.Equal(t, "X2", setting.CatalogNumber)
	assert.Equal(t, 2, setting.MaxQuantity)

	w = f.do(http.MethodGet, "/api/capacity-settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	settings := decodeData[[]model.MaxPerBoxSetting](t, w)
	require.Len(t, settings, 2)
	assert.Equal(t, "X1", settings[0].CatalogNumber)
	assert.Equal(t, "X2", settings[1].CatalogNumber)

	// The new capacity applies to sessions opened afterwards.
	w = f.do(http.MethodPost, "/api/packing/ORD-1/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeData[service.SessionSnapshot](t, w)
	assert.Len(t, snap.Units, 5)

	w = f.do(http.MethodPut, "/api/capacity-settings/X2", `{"max_quantity": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a positive integer", decodeError(t, w).Details["max_quantity"])

	w = f.do(http.MethodDelete, "/api/capacity-settings/X2", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodDelete, "/api/capacity-settings/X2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPackingSessionFlow(t *testing.T) {
	f := newAPIFixture(t, RouterConfig{})

	w := f.do(http.MethodGet, "/api/packing/ORD-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/packing/ORD-1/open", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodeData[service.SessionSnapshot](t, w)
	require.Len(t, snap.Units, 4)
	assert.Equal(t, []int{10, 10, 5}, []int{snap.Units[0].UnitQuantity, snap.Units[1].UnitQuantity, snap.Units[2].UnitQuantity})
	assert.Len(t, snap.Boxes, 4)

	w = f.do(http.MethodPost, "/api/packing/ORD-1/connections", `{"from": "L1_split_1", "to": "L2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	connected := decodeData[dto.ConnectResponse](t, w)
	assert.True(t, connected.Connected)
	require.NotNil(t, connected.Connection)
	assert.Len(t, connected.Boxes, 3)

	w = f.do(http.MethodPost, "/api/packing/ORD-1/connections", `{"from": "L2", "to": "L2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeData[dto.ConnectResponse](t, w).Connected)

	w = f.do(http.MethodPut, "/api/packing/ORD-1/units/L2/quantity", `{"quantity": 99}`)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeData[service.SessionSnapshot](t, w)
	assert.Equal(t, 3, snap.State["L2"].Quantity)

	w = f.do(http.MethodPut, "/api/packing/ORD-1/units/L1_split_3/box", `{"box_number": 1}`)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeData[service.SessionSnapshot](t, w)
	assert.Equal(t, 1, snap.State["L1_split_3"].BoxNumber)
	assert.Equal(t, snap.State["L1_split_1"].BoxNumber, snap.State["L1_split_3"].BoxNumber)

	w = f.do(http.MethodGet, "/api/packing/ORD-1/boxes", "")
	require.Equal(t, http.StatusOK, w.Code)
	boxes := decodeData[dto.BoxesResponse](t, w)
	assert.Equal(t, "ORD-1", boxes.OrderID)
	assert.Len(t, boxes.Boxes, 2)

	w = f.do(http.MethodDelete, "/api/packing/ORD-1/connections/"+url.PathEscape(connected.Connection.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	disconnected := decodeData[dto.DisconnectResponse](t, w)
	assert.True(t, disconnected.Removed)

	w = f.do(http.MethodDelete, "/api/packing/ORD-1/connections/unknown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeData[dto.DisconnectResponse](t, w).Removed)

	w = f.do(http.MethodPost, "/api/packing/ORD-1/flush", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	draft, err := f.drafts.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, 3, draft.PackingState["L2"].Quantity)

	w = f.do(http.MethodPost, "/api/packing/ORD-1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeData[service.SessionSnapshot](t, w)
	assert.Len(t, snap.Boxes, 4)
	assert.Empty(t, snap.Connections)

	w = f.do(http.MethodDelete, "/api/packing/ORD-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, f.packing.ActiveSessions())

	w = f.do(http.MethodGet, "/api/packing/ORD-1/boxes", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPackingSessionErrors(t *testing.T) {
	f := newAPIFixture(t, RouterConfig{})
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/packing/ORD-1/open", "").Code)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "open unknown order",
			method:         http.MethodPost,
			path:           "/api/packing/missing/open",
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "quantity for unknown unit",
			method:         http.MethodPut,
			path:           "/api/packing/ORD-1/units/nope/quantity",
			body:           `{"quantity": 1}`,
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "missing quantity",
			method:         http.MethodPut,
			path:           "/api/packing/ORD-1/units/L2/quantity",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidRequest,
		},
		{
			name:           "box number below one",
			method:         http.MethodPut,
			path:           "/api/packing/ORD-1/units/L2/box",
			body:           `{"box_number": 0}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidRequest,
		},
		{
			name:           "connect unknown unit",
			method:         http.MethodPost,
			path:           "/api/packing/ORD-1/connections",
			body:           `{"from": "L2", "to": "ghost"}`,
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "connect without target",
			method:         http.MethodPost,
			path:           "/api/packing/ORD-1/connections",
			body:           `{"from": "L2", "to": " "}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidRequest,
		},
		{
			name:           "flush without session",
			method:         http.MethodPost,
			path:           "/api/packing/ORD-2/flush",
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "close without session",
			method:         http.MethodDelete,
			path:           "/api/packing/ORD-2",
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
		})
	}
}

func TestExportPackingList(t *testing.T) {
	f := newAPIFixture(t, RouterConfig{})

	w := f.do(http.MethodGet, "/api/orders/ORD-1/packing-list", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing to export before the order is opened")

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/packing/ORD-1/open", "").Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/packing/ORD-1/connections", `{"from": "L1_split_3", "to": "L2"}`).Code)

	w = f.do(http.MethodGet, "/api/orders/ORD-1/packing-list?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "packing-list-ORD-1.csv")

	records, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Box", "Unit ID", "Catalog Number", "Quantity", "Box Weight (kg)"}, records[0])
	assert.Equal(t, []string{"3", "L1_split_3", "X1", "5", "5.500"}, records[3])
	assert.Equal(t, []string{"3", "L2", "X2", "3", "5.500"}, records[4])

	w = f.do(http.MethodGet, "/api/orders/ORD-1/packing-list?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be csv or xlsx", decodeError(t, w).Details["format"])

	// A closed session exports its saved draft.
	require.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/packing/ORD-1", "").Code)
	w = f.do(http.MethodGet, "/api/orders/ORD-1/packing-list?format=xlsx", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "packing-list-ORD-1.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"session not found", service.ErrSessionNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped order not found", errors.Join(errors.New("lookup"), service.ErrOrderNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"capacity setting not found", service.ErrCapacitySettingNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"split error", &service.SplitError{ItemID: "L1", Err: service.ErrInvalidCapacity}, http.StatusBadRequest, dto.ErrCodeInvalidRequest},
		{"invalid box number", service.ErrInvalidBoxNumber, http.StatusBadRequest, dto.ErrCodeInvalidRequest},
		{"no line items", service.ErrNoLineItems, http.StatusConflict, dto.ErrCodeConflict},
		{"circuit open", circuitbreaker.ErrCircuitOpen, http.StatusServiceUnavailable, dto.ErrCodeUnavailable},
		{"repository not configured", service.ErrRepositoryNotConfigured, http.StatusServiceUnavailable, dto.ErrCodeUnavailable},
		{"store deadline", fmt.Errorf("load drafts: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, dto.ErrCodeTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			writeServiceError(NewResponseBuilder(c), tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, resp.Error)
			if tt.expectedStatus == http.StatusInternalServerError {
				assert.Equal(t, dto.MsgInternalError, resp.Message, "internal errors are not leaked")
			}
		})
	}
}

func TestHandler_WithMockServices(t *testing.T) {
	t.Run("order storage unavailable", func(t *testing.T) {
		orders := mocks.NewMockOrderService(t)
		orders.On("Get", mock.Anything, "ORD-1").Return(nil, circuitbreaker.ErrCircuitOpen)
		router := NewRouter(NewHandler(orders, nil, nil, nil), NewHealthHandler(), RouterConfig{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.MsgUnavailable, decodeError(t, w).Message)
	})

	t.Run("capacity upsert records operator", func(t *testing.T) {
		settings := mocks.NewMockCapacitySettingsService(t)
		settings.On("Upsert", mock.Anything, "X9", 6, "").
			Return(&model.MaxPerBoxSetting{CatalogNumber: "X9", MaxQuantity: 6}, nil)
		router := NewRouter(NewHandler(nil, settings, nil, nil), NewHealthHandler(), RouterConfig{})

		req := httptest.NewRequest(http.MethodPut, "/api/capacity-settings/X9", bytes.NewBufferString(`{"max_quantity": 6}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("capacity routes absent without service", func(t *testing.T) {
		router := NewRouter(NewHandler(nil, nil, nil, nil), NewHealthHandler(), RouterConfig{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/capacity-settings", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_AuditsPackingActions(t *testing.T) {
	var mu sync.Mutex
	var actions []string
	ls := mocks.NewMockLoggingService(t)
	ls.On("CreateLog", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(*model.LogEntry)
			if entry.ActionType == "" {
				return
			}
			assert.Equal(t, "ORD-1", entry.OrderID)
			mu.Lock()
			actions = append(actions, entry.ActionType)
			mu.Unlock()
		}).
		Return(nil).Maybe()

	f := newAPIFixture(t, RouterConfig{LoggingService: ls})
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/packing/ORD-1/open", "").Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/packing/ORD-1/connections", `{"from": "L1_split_1", "to": "L2"}`).Code)
	require.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/packing/ORD-1/flush", "").Code)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return assert.ObjectsAreEqual(3, len(actions))
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{middleware.ActionOpenSession, middleware.ActionConnect, middleware.ActionFlushDraft}, actions)
}

func TestHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t, RouterConfig{})
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/packing/ORD-1/open", "").Code)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "liveness probe",
			path:           "/healthz",
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ok"`,
		},
		{
			name:           "readiness probe reports sessions",
			path:           "/readyz",
			expectedStatus: http.StatusOK,
			expectedBody:   `"active_sessions":1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, tt.path, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func BenchmarkHandler_SetQuantity(b *testing.B) {
	f := newAPIFixture(b, RouterConfig{})
	f.do(http.MethodPost, "/api/packing/ORD-1/open", "")
	body := []byte(`{"quantity": 2}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPut, "/api/packing/ORD-1/units/L2/quantity", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
	}
}

func TestHandler_GetOrderActivity(t *testing.T) {
	page := &model.OrderActivity{
		OrderID: "ORD-1",
		Total:   1,
		Limit:   10,
		Entries: []model.LogEntry{{OrderID: "ORD-1", ActionType: middleware.ActionConnect, OperatorID: "op-7"}},
	}

	tests := []struct {
		name           string
		path           string
		setup          func(*mocks.MockLoggingService)
		withLogging    bool
		expectedStatus int
		check          func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "returns activity page",
			path:        "/api/orders/ORD-1/activity?limit=10",
			withLogging: true,
			setup: func(m *mocks.MockLoggingService) {
				m.On("OrderActivity", mock.Anything, "ORD-1", 10, 0).Return(page, nil).Once()
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				got := decodeData[model.OrderActivity](t, w)
				assert.Equal(t, int64(1), got.Total)
				require.Len(t, got.Entries, 1)
				assert.Equal(t, middleware.ActionConnect, got.Entries[0].ActionType)
			},
		},
		{
			name:           "rejects non-numeric limit",
			path:           "/api/orders/ORD-1/activity?limit=ten",
			withLogging:    true,
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Contains(t, decodeError(t, w).Details, "limit")
			},
		},
		{
			name:        "storage failure",
			path:        "/api/orders/ORD-1/activity",
			withLogging: true,
			setup: func(m *mocks.MockLoggingService) {
				m.On("OrderActivity", mock.Anything, "ORD-1", 0, 0).Return(nil, circuitbreaker.ErrCircuitOpen).Once()
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "unavailable without request logging",
			path:           "/api/orders/ORD-1/activity",
			expectedStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, dto.ErrCodeUnavailable, decodeError(t, w).Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RouterConfig{}
			if tt.withLogging {
				ls := mocks.NewMockLoggingService(t)
				ls.On("CreateLog", mock.Anything, mock.Anything).Return(nil).Maybe()
				if tt.setup != nil {
					tt.setup(ls)
				}
				cfg.LoggingService = ls
			}
			f := newAPIFixture(t, cfg)

			w := f.do(http.MethodGet, tt.path, "")
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, w)
			}
		})
	}
}
