package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/lunchly/internal/model"
)

// ReservationRepo loads and stores reservations.  All timestamp fields are
// assumed to be stored in UTC.  Concurrent saves of the same row are not
// coordinated; the last UPDATE wins.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepo returns a ReservationRepo that issues its queries
// through q.
func NewReservationRepo(q Querier) *ReservationRepo {
	if q == nil {
		panic("nil querier passed to NewReservationRepo")
	}
	return &ReservationRepo{q: q}
}

// WithQuerier returns a copy of the repo bound to another querier, typically
// a *sql.Tx opened by the caller.
func (r *ReservationRepo) WithQuerier(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, customer_id, num_guests, start_at, notes`

// reservationRecord mirrors one row of the reservations table before it is
// validated into a model.Reservation.
type reservationRecord struct {
	ID         uint64
	CustomerID uint64
	NumGuests  int
	StartAt    sql.NullTime
	Notes      sql.NullString
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var rec reservationRecord
	if err := s.Scan(&rec.ID, &rec.CustomerID, &rec.NumGuests, &rec.StartAt, &rec.Notes); err != nil {
		return nil, err
	}
	id := rec.ID
	res, err := model.NewReservation(model.Fields{
		ID:         &id,
		CustomerID: rec.CustomerID,
		NumGuests:  rec.NumGuests,
		StartAt:    rec.StartAt.Time,
		Notes:      rec.Notes.String,
	})
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", rec.ID, err)
	}
	return res, nil
}

// ListByCustomer returns every reservation of the given customer ordered by
// start time.  A customer without reservations yields an empty slice.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE customer_id = ?
		ORDER BY start_at, id`
	rows, err := r.q.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns the reservation with the given id.  When no row matches
// the error is a *NotFoundError (errors.Is(err, ErrNotFound) holds).
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = ?`
	res, err := scanReservation(r.q.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newNotFound("reservation", id)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Save inserts res when it has no id yet and adopts the generated id;
// otherwise it updates the mutable columns of the existing row.  The
// customer_id column is written only by the insert.
func (r *ReservationRepo) Save(ctx context.Context, res *model.Reservation) error {
	id, saved := res.ID()
	if !saved {
		return r.insert(ctx, res)
	}
	const q = `UPDATE reservations SET num_guests = ?, start_at = ?, notes = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, res.NumGuests(), res.StartAt().UTC(), res.Notes(), id)
	return err
}

func (r *ReservationRepo) insert(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (customer_id, num_guests, start_at, notes) VALUES (?, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, q, res.CustomerID(), res.NumGuests(), res.StartAt().UTC(), res.Notes())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	return res.AssignID(uint64(id))
}
