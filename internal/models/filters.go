package models

import "sort"

// Reservations is an ordered reservation list. Every view keeps the order of
// the receiver unless it says otherwise.
type Reservations []Reservation

func (rs Reservations) filter(keep func(*Reservation) bool) Reservations {
	out := make(Reservations, 0)
	for i := range rs {
		if keep(&rs[i]) {
			out = append(out, rs[i])
		}
	}
	return out
}

// ByDate returns hotel stays occupying the night of date and grooming
// appointments on date.
func (rs Reservations) ByDate(date string) Reservations {
	return rs.filter(func(r *Reservation) bool {
		switch {
		case r.IsHotel():
			return r.HotelStay.Occupies(date)
		case r.IsGrooming():
			return r.GroomingAppointment.Date == date
		}
		return false
	})
}

func (rs Reservations) ByStatus(status Status) Reservations {
	return rs.filter(func(r *Reservation) bool { return r.Status == status })
}

func (rs Reservations) ByType(t ReservationType) Reservations {
	return rs.filter(func(r *Reservation) bool { return r.Type == t })
}

// ByRoomRange returns hotel stays whose room number lies in [min, max].
func (rs Reservations) ByRoomRange(min, max int) Reservations {
	return rs.filter(func(r *Reservation) bool {
		if !r.IsHotel() {
			return false
		}
		n, err := ParseRoomNumber(r.RoomNumber)
		return err == nil && n >= min && n <= max
	})
}

// ByHotel returns stays in hotel 1 or 2.
func (rs Reservations) ByHotel(hotel int) Reservations {
	return rs.filter(func(r *Reservation) bool {
		if !r.IsHotel() {
			return false
		}
		n, err := ParseRoomNumber(r.RoomNumber)
		return err == nil && HotelForRoom(n) == hotel
	})
}

func (rs Reservations) CheckInsOn(date string) Reservations {
	return rs.filter(func(r *Reservation) bool { return r.IsHotel() && r.CheckInDate == date })
}

func (rs Reservations) CheckOutsOn(date string) Reservations {
	return rs.filter(func(r *Reservation) bool { return r.IsHotel() && r.CheckOutDate == date })
}

// ActiveOn returns the not yet completed stays occupying date, sorted by
// check-out date. Ties keep list order.
func (rs Reservations) ActiveOn(date string) Reservations {
	out := rs.filter(func(r *Reservation) bool {
		return r.IsHotel() && r.Status != StatusCompleted && r.HotelStay.Occupies(date)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckOutDate < out[j].CheckOutDate
	})
	return out
}

// GroomingOn returns the grooming appointments on date.
func (rs Reservations) GroomingOn(date string) Reservations {
	return rs.filter(func(r *Reservation) bool {
		return r.IsGrooming() && r.GroomingAppointment.Date == date
	})
}

// GroomingCounts maps each date to its number of grooming appointments.
func (rs Reservations) GroomingCounts() map[string]int {
	counts := make(map[string]int)
	for i := range rs {
		if rs[i].IsGrooming() {
			counts[rs[i].GroomingAppointment.Date]++
		}
	}
	return counts
}

// Find returns the reservation with id.
func (rs Reservations) Find(id string) (*Reservation, bool) {
	for i := range rs {
		if rs[i].ID == id {
			return &rs[i], true
		}
	}
	return nil, false
}
