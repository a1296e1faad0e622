package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidReservation = errors.New("invalid reservation")

type Client struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	IsVip      bool   `json:"isVip,omitempty"`
	IsEmployee bool   `json:"isEmployee,omitempty"`
	Allergies  string `json:"allergies,omitempty"`
	Warnings   string `json:"warnings,omitempty"`
}

// HotelStay is the boarding part of a hotel reservation. The night of
// CheckOutDate is not part of the stay.
type HotelStay struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	RoomNumber   string `json:"roomNumber"`
	Pets         []Pet  `json:"pets"`
}

// Nights returns the number of nights between check-in and check-out.
func (h *HotelStay) Nights() int {
	in, err1 := ParseDate(h.CheckInDate)
	out, err2 := ParseDate(h.CheckOutDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

// Occupies reports whether the stay covers the night of date.
func (h *HotelStay) Occupies(date string) bool {
	return h.CheckInDate <= date && date < h.CheckOutDate
}

// Overlaps reports whether the [checkIn, checkOut) ranges intersect.
func (h *HotelStay) Overlaps(other *HotelStay) bool {
	return h.CheckInDate < other.CheckOutDate && other.CheckInDate < h.CheckOutDate
}

// GroomingAppointment is a single-slot salon appointment for one pet.
type GroomingAppointment struct {
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Pet         Pet      `json:"pet"`
	FinalPrice  *float64 `json:"finalPrice,omitempty"`
	BeforePhoto string   `json:"beforePhoto,omitempty"`
	AfterPhoto  string   `json:"afterPhoto,omitempty"`
}

// Reservation is either a hotel stay or a grooming appointment. Exactly one
// of the embedded variants is set and it must agree with Type.
type Reservation struct {
	ID                 string             `json:"id"`
	Type               ReservationType    `json:"type"`
	Status             Status             `json:"status"`
	Client             Client             `json:"client"`
	AdditionalServices AdditionalServices `json:"additionalServices"`

	*HotelStay
	*GroomingAppointment

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Reservation) IsHotel() bool {
	return r.Type == TypeHotel && r.HotelStay != nil
}

func (r *Reservation) IsGrooming() bool {
	return r.Type == TypeGrooming && r.GroomingAppointment != nil
}

// Pets returns the pets covered by the reservation in pet-index order.
func (r *Reservation) Pets() []Pet {
	switch {
	case r.IsHotel():
		return r.HotelStay.Pets
	case r.IsGrooming():
		return []Pet{r.GroomingAppointment.Pet}
	}
	return nil
}

// StartDate is the check-in date of a stay or the date of an appointment.
func (r *Reservation) StartDate() string {
	switch {
	case r.IsHotel():
		return r.CheckInDate
	case r.IsGrooming():
		return r.GroomingAppointment.Date
	}
	return ""
}

// Normalize recomputes every pet size from its weight and collapses duplicate
// additional services.
func (r *Reservation) Normalize() {
	if r.HotelStay != nil {
		for i := range r.HotelStay.Pets {
			r.HotelStay.Pets[i].Normalize()
		}
	}
	if r.GroomingAppointment != nil {
		r.GroomingAppointment.Pet.Normalize()
		r.GroomingAppointment.Time = strings.TrimSpace(r.GroomingAppointment.Time)
	}
	r.AdditionalServices = r.AdditionalServices.Normalize()
}

func (r *Reservation) Validate() error {
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidReservation, r.Status)
	}

	switch r.Type {
	case TypeHotel:
		if r.HotelStay == nil || r.GroomingAppointment != nil {
			return fmt.Errorf("%w: hotel reservation must carry only hotel fields", ErrInvalidReservation)
		}
		if err := r.HotelStay.validate(); err != nil {
			return err
		}
	case TypeGrooming:
		if r.GroomingAppointment == nil || r.HotelStay != nil {
			return fmt.Errorf("%w: grooming reservation must carry only grooming fields", ErrInvalidReservation)
		}
		if err := r.GroomingAppointment.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidReservation, r.Type)
	}

	if strings.TrimSpace(r.Client.Name) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidReservation)
	}

	pets := r.Pets()
	for i := range pets {
		if err := validatePet(&pets[i]); err != nil {
			return err
		}
	}

	if err := r.AdditionalServices.Validate(len(pets)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReservation, err)
	}
	return nil
}

func (h *HotelStay) validate() error {
	in, err := ParseDate(h.CheckInDate)
	if err != nil {
		return fmt.Errorf("%w: bad check-in date %q", ErrInvalidReservation, h.CheckInDate)
	}
	out, err := ParseDate(h.CheckOutDate)
	if err != nil {
		return fmt.Errorf("%w: bad check-out date %q", ErrInvalidReservation, h.CheckOutDate)
	}
	if !out.After(in) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrInvalidReservation)
	}
	if _, err := ParseRoomNumber(h.RoomNumber); err != nil {
		return err
	}
	if len(h.Pets) == 0 {
		return fmt.Errorf("%w: at least one pet is required", ErrInvalidReservation)
	}
	return nil
}

func (g *GroomingAppointment) validate() error {
	if _, err := ParseDate(g.Date); err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidReservation, g.Date)
	}
	if !IsGroomingSlot(g.Time) {
		return fmt.Errorf("%w: time %q is not a salon slot", ErrInvalidReservation, g.Time)
	}
	if g.FinalPrice != nil && *g.FinalPrice < 0 {
		return fmt.Errorf("%w: final price must not be negative", ErrInvalidReservation)
	}
	return nil
}

func validatePet(p *Pet) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: pet name is required", ErrInvalidReservation)
	}
	if p.Weight <= 0 {
		return fmt.Errorf("%w: pet %q weight must be positive", ErrInvalidReservation, p.Name)
	}
	if p.Sex != "" && p.Sex != SexMale && p.Sex != SexFemale {
		return fmt.Errorf("%w: pet %q has unknown sex %q", ErrInvalidReservation, p.Name, p.Sex)
	}
	return nil
}

// ParseRoomNumber extracts n from "HAB.<n>".
func ParseRoomNumber(room string) (int, error) {
	room = strings.TrimSpace(room)
	if !strings.HasPrefix(room, RoomPrefix) {
		return 0, fmt.Errorf("%w: room %q must look like %s<n>", ErrInvalidReservation, room, RoomPrefix)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(room, RoomPrefix))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: room %q must look like %s<n>", ErrInvalidReservation, room, RoomPrefix)
	}
	return n, nil
}

// RoomName formats n as a room number.
func RoomName(n int) string {
	return RoomPrefix + strconv.Itoa(n)
}

// HotelForRoom returns 1 or 2 for rooms of either building, 0 otherwise.
func HotelForRoom(n int) int {
	switch {
	case n >= 1 && n <= HotelOneMaxRoom:
		return 1
	case n >= HotelTwoMinRoom:
		return 2
	}
	return 0
}
