package availability

import (
	"fmt"
	"sort"

	"pethotel/internal/models"
)

// Hotel knows the rooms of both buildings.
type Hotel struct {
	rooms map[int][]int
}

// NewHotel builds the room inventory: hotel 1 has rooms 1..oneLast, hotel 2
// has rooms twoFirst..twoLast. Room numbers outside the partition are rejected.
func NewHotel(oneLast, twoFirst, twoLast int) (*Hotel, error) {
	if oneLast < 1 || oneLast > models.HotelOneMaxRoom {
		return nil, fmt.Errorf("hotel 1 last room %d outside 1..%d", oneLast, models.HotelOneMaxRoom)
	}
	if twoFirst < models.HotelTwoMinRoom || twoLast < twoFirst {
		return nil, fmt.Errorf("hotel 2 rooms %d..%d invalid", twoFirst, twoLast)
	}

	h := &Hotel{rooms: map[int][]int{}}
	for n := 1; n <= oneLast; n++ {
		h.rooms[1] = append(h.rooms[1], n)
	}
	for n := twoFirst; n <= twoLast; n++ {
		h.rooms[2] = append(h.rooms[2], n)
	}
	return h, nil
}

// Rooms lists the room names of hotel in ascending order.
func (h *Hotel) Rooms(hotel int) []string {
	out := make([]string, 0, len(h.rooms[hotel]))
	for _, n := range h.rooms[hotel] {
		out = append(out, models.RoomName(n))
	}
	return out
}

// HasRoom reports whether room n exists in either hotel.
func (h *Hotel) HasRoom(n int) bool {
	for _, rooms := range h.rooms {
		for _, r := range rooms {
			if r == n {
				return true
			}
		}
	}
	return false
}

// Conflicts returns the stays in the same room as candidate whose
// [checkIn, checkOut) range intersects it. The candidate itself is ignored.
func Conflicts(rs models.Reservations, candidate *models.Reservation) models.Reservations {
	out := models.Reservations{}
	if !candidate.IsHotel() {
		return out
	}
	want, err := models.ParseRoomNumber(candidate.RoomNumber)
	if err != nil {
		return out
	}
	for _, r := range rs {
		if !r.IsHotel() || (candidate.ID != "" && r.ID == candidate.ID) {
			continue
		}
		n, err := models.ParseRoomNumber(r.RoomNumber)
		if err != nil || n != want {
			continue
		}
		if r.HotelStay.Overlaps(candidate.HotelStay) {
			out = append(out, r)
		}
	}
	return out
}

// FreeRooms lists the rooms of hotel with no stay intersecting [checkIn, checkOut).
func (h *Hotel) FreeRooms(rs models.Reservations, hotel int, checkIn, checkOut string) ([]string, error) {
	if checkOut <= checkIn {
		return nil, fmt.Errorf("check-out %s must be after check-in %s", checkOut, checkIn)
	}
	if _, ok := h.rooms[hotel]; !ok {
		return nil, fmt.Errorf("unknown hotel %d", hotel)
	}

	window := &models.HotelStay{CheckInDate: checkIn, CheckOutDate: checkOut}
	busy := make(map[int]bool)
	for _, r := range rs.ByHotel(hotel) {
		if r.HotelStay.Overlaps(window) {
			n, _ := models.ParseRoomNumber(r.RoomNumber)
			busy[n] = true
		}
	}

	free := make([]int, 0, len(h.rooms[hotel]))
	for _, n := range h.rooms[hotel] {
		if !busy[n] {
			free = append(free, n)
		}
	}
	sort.Ints(free)

	out := make([]string, 0, len(free))
	for _, n := range free {
		out = append(out, models.RoomName(n))
	}
	return out, nil
}

// Occupancy returns the occupied and total room counts of hotel on date.
func (h *Hotel) Occupancy(rs models.Reservations, hotel int, date string) (occupied, total int) {
	rooms := make(map[string]bool)
	for _, r := range rs.ByHotel(hotel) {
		if r.HotelStay.Occupies(date) {
			rooms[r.RoomNumber] = true
		}
	}
	return len(rooms), len(h.rooms[hotel])
}
