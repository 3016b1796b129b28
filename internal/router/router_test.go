package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sport-facility-reservation/internal/handler"
	"github.com/iliyamo/sport-facility-reservation/internal/model"
	"github.com/iliyamo/sport-facility-reservation/internal/utils"
)

const testSecret = "router-test-secret"

func newTestRouter() *echo.Echo {
	e := echo.New()
	sports := &handler.SportHandler{}
	RegisterRoutes(e, sports)
	RegisterReservations(e, &handler.ReservationHandler{}, testSecret)
	RegisterSports(e, sports, testSecret)
	RegisterRatings(e, &handler.RatingHandler{}, testSecret)
	RegisterNotifications(e, &handler.NotificationHandler{}, testSecret)
	return e
}

func routeSet(e *echo.Echo) map[string]bool {
	set := make(map[string]bool)
	for _, r := range e.Routes() {
		set[fmt.Sprintf("%s %s", r.Method, r.Path)] = true
	}
	return set
}

func TestRouteTable(t *testing.T) {
	set := routeSet(newTestRouter())

	expected := []string{
		"GET /healthz",
		"GET /v1/sports",
		"POST /v1/sports",
		"PUT /v1/sports/:id",
		"DELETE /v1/sports/:id",
		"GET /v1/sports/statistics",
		"POST /v1/reservations",
		"GET /v1/reservations",
		"GET /v1/reservations/mine",
		"GET /v1/reservations/by-sport",
		"GET /v1/reservations/by-sport/mine",
		"PATCH /v1/reservations/:id/cancel",
		"PATCH /v1/reservations/:id/block",
		"PATCH /v1/reservations/:id/time",
		"POST /v1/reservations/blocked",
		"POST /v1/reservations/:id/join",
		"POST /v1/reservations/:id/leave",
		"POST /v1/reservations/:id/ratings",
		"GET /v1/reservations/:id/ratings",
		"GET /v1/reservations/:id/ratings/mine",
		"DELETE /v1/reservations/:id/ratings/mine",
		"GET /v1/notifications",
		"POST /v1/notifications/seen",
	}
	for _, route := range expected {
		assert.True(t, set[route], "missing route %s", route)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	e := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Admin-only operations must reject a plain user before any handler
// logic runs; the general listing stays reachable for users while the
// by-sport grouping is reserved for admins.
func TestAdminRoutesRejectUserRole(t *testing.T) {
	e := newTestRouter()
	tok, err := utils.NewAccessToken(testSecret, 7, "alice", model.RoleUser, 5)
	require.NoError(t, err)

	adminOnly := []struct{ method, path string }{
		{http.MethodGet, "/v1/reservations/by-sport"},
		{http.MethodPatch, "/v1/reservations/9/block"},
		{http.MethodPatch, "/v1/reservations/9/time"},
		{http.MethodPost, "/v1/reservations/blocked"},
		{http.MethodPost, "/v1/sports"},
		{http.MethodPut, "/v1/sports/9"},
		{http.MethodDelete, "/v1/sports/9"},
		{http.MethodGet, "/v1/sports/statistics"},
	}
	for _, r := range adminOnly {
		req := httptest.NewRequest(r.method, r.path, nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", r.method, r.path)
	}
}
