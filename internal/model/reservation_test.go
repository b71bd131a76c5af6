package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() Fields {
	return Fields{
		CustomerID: 5,
		NumGuests:  2,
		StartAt:    time.Date(2020, time.January, 15, 14, 30, 0, 0, time.UTC),
		Notes:      "window seat",
	}
}

func TestNewReservation(t *testing.T) {
	r, err := NewReservation(validFields())
	require.NoError(t, err)

	_, ok := r.ID()
	assert.False(t, ok)
	assert.Equal(t, uint64(5), r.CustomerID())
	assert.Equal(t, 2, r.NumGuests())
	assert.Equal(t, "window seat", r.Notes())
	assert.True(t, r.StartAt().Equal(time.Date(2020, time.January, 15, 14, 30, 0, 0, time.UTC)))
}

func TestNewReservationWithID(t *testing.T) {
	f := validFields()
	id := uint64(42)
	f.ID = &id
	r, err := NewReservation(f)
	require.NoError(t, err)

	got, ok := r.ID()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), got)

	// the caller's variable must not alias the entity's id
	id = 7
	got, _ = r.ID()
	assert.Equal(t, uint64(42), got)
}

func TestNewReservationRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Fields)
		want   error
	}{
		{"zero guests", func(f *Fields) { f.NumGuests = 0 }, ErrInvalidNumGuests},
		{"negative guests", func(f *Fields) { f.NumGuests = -3 }, ErrInvalidNumGuests},
		{"zero start", func(f *Fields) { f.StartAt = time.Time{} }, ErrInvalidStartAt},
		{"missing customer", func(f *Fields) { f.CustomerID = 0 }, ErrInvalidCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			r, err := NewReservation(f)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestEmptyNotesBecomeEmptyString(t *testing.T) {
	f := validFields()
	f.Notes = ""
	r, err := NewReservation(f)
	require.NoError(t, err)
	assert.Equal(t, "", r.Notes())

	r.SetNotes("allergic to nuts")
	assert.Equal(t, "allergic to nuts", r.Notes())
	r.SetNotes("")
	assert.Equal(t, "", r.Notes())
}

func TestSetNumGuestsKeepsPreviousValueOnError(t *testing.T) {
	r, err := NewReservation(validFields())
	require.NoError(t, err)

	require.NoError(t, r.SetNumGuests(8))
	assert.Equal(t, 8, r.NumGuests())

	assert.ErrorIs(t, r.SetNumGuests(0), ErrInvalidNumGuests)
	assert.Equal(t, 8, r.NumGuests())
}

func TestSetCustomerIDOnlyOnce(t *testing.T) {
	r, err := NewReservation(validFields())
	require.NoError(t, err)

	assert.NoError(t, r.SetCustomerID(5))
	err = r.SetCustomerID(6)
	assert.ErrorIs(t, err, ErrCustomerImmutable)
	assert.Equal(t, uint64(5), r.CustomerID())
}

func TestAssignID(t *testing.T) {
	r, err := NewReservation(validFields())
	require.NoError(t, err)

	require.NoError(t, r.AssignID(11))
	id, ok := r.ID()
	assert.True(t, ok)
	assert.Equal(t, uint64(11), id)

	assert.Error(t, r.AssignID(12))
	id, _ = r.ID()
	assert.Equal(t, uint64(11), id)
}

func TestParseStartAt(t *testing.T) {
	want := time.Date(2020, time.January, 15, 14, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2020-01-15T14:30:00Z",
		"2020-01-15T14:30:00",
		"2020-01-15T14:30",
		"2020-01-15 14:30:00",
		"2020-01-15 14:30",
		"2020-01-15 2:30 PM",
		" 2020-01-15 2:30 pm ",
	} {
		got, err := ParseStartAt(in, nil)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseStartAt("not a date", nil)
	assert.True(t, errors.Is(err, ErrInvalidStartAt))
}

func TestFormattedStartAt(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2020, time.January, 15, 14, 30, 0, 0, time.UTC), "January 15th 2020, 2:30 pm"},
		{time.Date(2021, time.March, 1, 9, 5, 0, 0, time.UTC), "March 1st 2021, 9:05 am"},
		{time.Date(2021, time.March, 2, 0, 0, 0, 0, time.UTC), "March 2nd 2021, 12:00 am"},
		{time.Date(2021, time.March, 23, 12, 0, 0, 0, time.UTC), "March 23rd 2021, 12:00 pm"},
		{time.Date(2021, time.March, 12, 18, 45, 0, 0, time.UTC), "March 12th 2021, 6:45 pm"},
	}
	for _, tt := range tests {
		f := validFields()
		f.StartAt = tt.at
		r, err := NewReservation(f)
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.FormattedStartAt())
	}
}

func TestFormattedStartAtIn(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	f := validFields()
	f.StartAt = time.Date(2020, time.January, 15, 19, 30, 0, 0, time.UTC)
	r, err := NewReservation(f)
	require.NoError(t, err)

	assert.Equal(t, "January 15th 2020, 2:30 pm", r.FormattedStartAtIn(ny))
	assert.Equal(t, "January 15th 2020, 7:30 pm", r.FormattedStartAtIn(nil))

	// Same instant parsed in New York renders identically.
	local, err := ParseStartAt("2020-01-15 2:30 PM", ny)
	require.NoError(t, err)
	require.NoError(t, r.SetStartAt(local))
	assert.Equal(t, "January 15th 2020, 2:30 pm", r.FormattedStartAtIn(ny))
}
