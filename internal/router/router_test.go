package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/handlers"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/middleware"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

// listOnlyService отвечает только на ListOrders; остальное в этих тестах не вызывается.
type listOnlyService struct {
	service.OrderService
	calls int
}

func (s *listOnlyService) ListOrders(context.Context, service.ListFilter) ([]models.Order, int64, error) {
	s.calls++
	return []models.Order{{ID: uuid.New(), UserID: "u1"}}, 1, nil
}

func newTestRouter(svc service.OrderService, limiter *middleware.RateLimiter) (*gin.Engine, *token.HSVerifier) {
	v := token.NewHSVerifier("secret", "", "")
	return Router(Deps{
		Orders:      handlers.NewOrderHandler(svc, zap.NewNop()),
		Verifier:    v,
		Limiter:     limiter,
		CORSOrigins: []string{"*"},
		Log:         zap.NewNop(),
	}), v
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(&listOnlyService{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestOrderRoutesRequireAuth(t *testing.T) {
	svc := &listOnlyService{}
	r, _ := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/order/userorders", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, svc.calls)
}

func TestAdminRoutes(t *testing.T) {
	svc := &listOnlyService{}
	r, v := newTestRouter(svc, nil)

	userTok, err := v.Sign("u1", service.RoleCustomer, time.Hour)
	require.NoError(t, err)
	adminTok, err := v.Sign("a1", service.RoleAdmin, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/order/list", nil)
	req.Header.Set("token", userTok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, svc.calls)

	req = httptest.NewRequest(http.MethodPost, "/api/order/list", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.calls)
}

func TestRateLimitAppliedPerUser(t *testing.T) {
	svc := &listOnlyService{}
	r, v := newTestRouter(svc, middleware.NewRateLimiter(0.001, 1))
	tok, err := v.Sign("u1", service.RoleCustomer, time.Hour)
	require.NoError(t, err)

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/order/userorders", strings.NewReader(""))
		req.Header.Set("token", tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(&listOnlyService{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/order/userorders", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisteredOrderRoutes(t *testing.T) {
	r, _ := newTestRouter(&listOnlyService{}, nil)

	got := map[string]bool{}
	for _, ri := range r.Routes() {
		got[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /api/order/flutterwave",
		"POST /api/order/continue-payment",
		"POST /api/order/verifyFlutterwave",
		"POST /api/order/cancel-pending",
		"POST /api/order/userorders",
		"POST /api/order/list",
		"POST /api/order/status",
		"GET /api/orders/:id",
	} {
		assert.True(t, got[want], want)
	}
}
