// Package repository maps reservations rows to model.Reservation values.
// Queries run through a Querier so callers decide whether they execute on a
// pooled *sql.DB or inside a *sql.Tx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by every *NotFoundError.  Handlers should
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a lookup by id that matched no row.  Status carries
// the HTTP status the calling layer should surface.
type NotFoundError struct {
	Resource string
	ID       uint64
	Status   int
}

func newNotFound(resource string, id uint64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id, Status: http.StatusNotFound}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s: %d", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Querier is the part of *sql.DB and *sql.Tx the repositories use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
