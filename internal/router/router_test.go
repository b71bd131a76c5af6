package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lunchly/internal/config"
	"github.com/iliyamo/lunchly/internal/handler"
	"github.com/iliyamo/lunchly/internal/middleware"
	"github.com/iliyamo/lunchly/internal/repository"
)

func newServer(t *testing.T, secret string) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, sm, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := echo.New()
	h := handler.NewReservationHandler(repository.NewReservationRepo(db), nil, nil, time.UTC)
	RegisterRoutes(e, db)
	RegisterReservations(e, h, ReservationDeps{
		JWTSecret: secret,
		Cache:     middleware.NewResponseCache(config.CacheConfig{Enabled: true}, nil),
	})
	return e, sm
}

func TestHealth(t *testing.T) {
	e, _ := newServer(t, "")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestWritesRequireTokenWhenSecretSet(t *testing.T) {
	e, sm := newServer(t, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/v1/customers/1/reservations",
		strings.NewReader(`{"num_guests":2,"start_at":"2020-01-15T14:30:00Z"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// reads stay public
	sm.ExpectQuery(`FROM reservations\s+WHERE customer_id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "num_guests", "start_at", "notes"}))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/customers/1/reservations", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, sm.ExpectationsWereMet())
}

func TestWritesOpenWithoutSecret(t *testing.T) {
	e, sm := newServer(t, "")
	sm.ExpectExec(`INSERT INTO reservations`).WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/v1/customers/1/reservations",
		strings.NewReader(`{"num_guests":2,"start_at":"2020-01-15T14:30:00Z"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NoError(t, sm.ExpectationsWereMet())
}
