package handler

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
)

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
    tests := []struct {
        name string
        db   Pinger
        code int
        body string
    }{
        {"no database", nil, http.StatusOK, "ok"},
        {"database up", pingFunc(func(context.Context) error { return nil }), http.StatusOK, "ok"},
        {"database down", pingFunc(func(context.Context) error { return errors.New("refused") }), http.StatusServiceUnavailable, "database unavailable"},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            e := echo.New()
            rec := httptest.NewRecorder()
            c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
            assert.NoError(t, Health(tt.db)(c))
            assert.Equal(t, tt.code, rec.Code)
            assert.Equal(t, tt.body, rec.Body.String())
        })
    }
}
