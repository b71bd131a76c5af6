package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is the parent of every field validation failure.  Handlers
// use errors.Is(err, ErrValidation) to answer 400 instead of 500.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidNumGuests  = fmt.Errorf("%w: can't make reservation with fewer than 1 guest", ErrValidation)
	ErrInvalidStartAt    = fmt.Errorf("%w: not a valid start_at", ErrValidation)
	ErrInvalidCustomer   = fmt.Errorf("%w: customer id is required", ErrValidation)
	ErrCustomerImmutable = fmt.Errorf("%w: can't change customer id", ErrValidation)
)

// Fields carries the raw values used to build a Reservation, either from a
// request body or from a reservations row.  ID is nil for reservations that
// have never been saved.
type Fields struct {
	ID         *uint64
	CustomerID uint64
	NumGuests  int
	StartAt    time.Time
	Notes      string
}

// Reservation is a booking of a table for a party at a given time, tied to
// exactly one customer.  Its fields are only reachable through validating
// setters, so a live instance always satisfies NumGuests() >= 1, a non-zero
// StartAt() and an immutable CustomerID().
//
// Fields:
//  id         – reservations.id, nil until the first insert.
//  customerID – reservations.customer_id, set once.
//  numGuests  – reservations.num_guests.
//  startAt    – reservations.start_at.
//  notes      – reservations.notes, "" when the column is NULL.
type Reservation struct {
	id         *uint64
	customerID uint64
	numGuests  int
	startAt    time.Time
	notes      string
}

// NewReservation validates every field of f and returns the resulting
// Reservation.  The first invalid field aborts construction.
func NewReservation(f Fields) (*Reservation, error) {
	r := &Reservation{}
	if f.ID != nil {
		id := *f.ID
		r.id = &id
	}
	if err := r.SetCustomerID(f.CustomerID); err != nil {
		return nil, err
	}
	if err := r.SetNumGuests(f.NumGuests); err != nil {
		return nil, err
	}
	if err := r.SetStartAt(f.StartAt); err != nil {
		return nil, err
	}
	r.SetNotes(f.Notes)
	return r, nil
}

// ID returns the persisted identifier and whether one has been assigned.
func (r *Reservation) ID() (uint64, bool) {
	if r.id == nil {
		return 0, false
	}
	return *r.id, true
}

// AssignID records the identifier generated by storage on the first insert.
// It refuses to overwrite an identifier that is already set.
func (r *Reservation) AssignID(id uint64) error {
	if r.id != nil {
		return fmt.Errorf("reservation already has id %d", *r.id)
	}
	r.id = &id
	return nil
}

// CustomerID returns the customer the reservation belongs to.
func (r *Reservation) CustomerID() uint64 { return r.customerID }

// NumGuests returns the party size.
func (r *Reservation) NumGuests() int { return r.numGuests }

// StartAt returns the start time in whatever zone it was parsed or scanned in.
func (r *Reservation) StartAt() time.Time { return r.startAt }

// Notes returns the free-form notes, "" when none were given.
func (r *Reservation) Notes() string { return r.notes }

// SetCustomerID stores the customer reference.  Once set it may only be
// "changed" to the same value.
func (r *Reservation) SetCustomerID(id uint64) error {
	if id == 0 {
		return ErrInvalidCustomer
	}
	if r.customerID != 0 && r.customerID != id {
		return ErrCustomerImmutable
	}
	r.customerID = id
	return nil
}

// SetNumGuests sets the party size; fewer than 1 guest is rejected.
func (r *Reservation) SetNumGuests(n int) error {
	if n < 1 {
		return ErrInvalidNumGuests
	}
	r.numGuests = n
	return nil
}

// SetStartAt sets the start time; the zero time is rejected.
func (r *Reservation) SetStartAt(t time.Time) error {
	if t.IsZero() {
		return ErrInvalidStartAt
	}
	r.startAt = t
	return nil
}

// SetNotes never fails; an empty value is stored as "".
func (r *Reservation) SetNotes(s string) {
	r.notes = s
}

// startAtLayouts lists the inputs accepted from forms and JSON bodies, most
// specific first.
var startAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04 pm",
}

// ParseStartAt converts user input into a start time.  Times without a zone
// are read in loc (UTC when loc is nil).
func ParseStartAt(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range startAtLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStartAt, s)
}

// FormattedStartAt renders the start time for display, e.g.
// "January 15th 2020, 2:30 pm", in the zone StartAt() carries.
func (r *Reservation) FormattedStartAt() string {
	return formatStartAt(r.startAt)
}

// FormattedStartAtIn renders the start time as FormattedStartAt does, after
// converting it to loc (UTC when loc is nil).
func (r *Reservation) FormattedStartAtIn(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return formatStartAt(r.startAt.In(loc))
}

func formatStartAt(t time.Time) string {
	return fmt.Sprintf("%s %d%s %d, %s",
		t.Format("January"), t.Day(), ordinalSuffix(t.Day()), t.Year(), t.Format("3:04 pm"))
}

func ordinalSuffix(day int) string {
	switch day {
	case 11, 12, 13:
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
