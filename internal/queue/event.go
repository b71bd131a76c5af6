// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/lunchly/internal/model"
)

// Event kinds carried in ReservationSavedEvent.Kind.
const (
    KindCreated = "created"
    KindUpdated = "updated"
)

// ReservationSavedEvent is published after a reservation row is inserted or
// updated.  It carries enough information for downstream consumers to log or
// notify the customer without querying the primary database.
type ReservationSavedEvent struct {
    Kind             string `json:"kind"`
    ReservationID    uint64 `json:"reservation_id"`
    CustomerID       uint64 `json:"customer_id"`
    NumGuests        int    `json:"num_guests"`
    StartAt          string `json:"start_at"`
    FormattedStartAt string `json:"formatted_start_at"`
    Notes            string `json:"notes"`
    SavedBy          string `json:"saved_by,omitempty"`
    SavedAt          string `json:"saved_at"`
}

// NewReservationSavedEvent snapshots a persisted reservation.  kind is
// KindCreated or KindUpdated; FormattedStartAt is rendered in loc so log
// lines match what the API shows.
func NewReservationSavedEvent(kind string, r *model.Reservation, savedBy string, at time.Time, loc *time.Location) ReservationSavedEvent {
    id, _ := r.ID()
    return ReservationSavedEvent{
        Kind:             kind,
        ReservationID:    id,
        CustomerID:       r.CustomerID(),
        NumGuests:        r.NumGuests(),
        StartAt:          r.StartAt().UTC().Format(time.RFC3339),
        FormattedStartAt: r.FormattedStartAtIn(loc),
        Notes:            r.Notes(),
        SavedBy:          savedBy,
        SavedAt:          at.UTC().Format(time.RFC3339),
    }
}
