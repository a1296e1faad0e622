package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state shared by hotel stays and grooming appointments.
type Status string

const (
	StatusPending                   Status = "pending"
	StatusPendingClientConfirmation Status = "pending_client_confirmation"
	StatusConfirmed                 Status = "confirmed"
	StatusCompleted                 Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingClientConfirmation, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// ReservationType discriminates the two reservation shapes.
type ReservationType string

const (
	TypeHotel    ReservationType = "hotel"
	TypeGrooming ReservationType = "peluqueria"
)

const (
	// DateFormat is the ISO calendar date used for document keys, filters and exports.
	DateFormat = "2006-01-02"

	// GroomingFirstHour and GroomingLastHour bound the hourly salon slots (09:00..16:00).
	GroomingFirstHour = 9
	GroomingLastHour  = 16

	// GroomingDailyLimit is the number of appointments after which a day is full.
	GroomingDailyLimit = 3

	// AlmostFullThreshold is the number of remaining slots at or below which a day is almost full.
	AlmostFullThreshold = 3

	// Hotel partition by room suffix.
	HotelOneMaxRoom = 21
	HotelTwoMinRoom = 25

	// DefaultHotelTwoLastRoom is used when the config does not size hotel 2.
	DefaultHotelTwoLastRoom = 40

	RoomPrefix = "HAB."

	// DefaultDebounceMS is the quiet period before a document write is persisted.
	DefaultDebounceMS = 1000
)

// GroomingSlots returns the fixed hourly slots in order.
func GroomingSlots() []string {
	slots := make([]string, 0, GroomingLastHour-GroomingFirstHour+1)
	for h := GroomingFirstHour; h <= GroomingLastHour; h++ {
		slots = append(slots, time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04"))
	}
	return slots
}

// IsGroomingSlot reports whether slot is one of the fixed hourly slots.
func IsGroomingSlot(slot string) bool {
	slot = strings.TrimSpace(slot)
	for _, s := range GroomingSlots() {
		if s == slot {
			return true
		}
	}
	return false
}

// ParseDate parses an ISO date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, strings.TrimSpace(s))
}

// DateKey formats t as an ISO date.
func DateKey(t time.Time) string {
	return t.Format(DateFormat)
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
