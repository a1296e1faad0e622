package availability

import (
	"fmt"

	"pethotel/internal/models"
)

// DayStatus is the calendar colour of a grooming day.
type DayStatus string

const (
	StatusBusy       DayStatus = "busy"
	StatusAlmostFull DayStatus = "almostFull"
	StatusAvailable  DayStatus = "available"
)

// Reason explains why a date cannot take new grooming bookings.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonWeekend Reason = "weekend"
	ReasonHoliday Reason = "holiday"
	ReasonFull    Reason = "full"
)

type TimeSlot struct {
	Time  string `json:"time"`
	Taken bool   `json:"taken"`
}

type GroomingDay struct {
	Date      string     `json:"date"`
	Available bool       `json:"available"`
	Reason    Reason     `json:"reason,omitempty"`
	Booked    int        `json:"booked"`
	Remaining int        `json:"remaining"`
	Status    DayStatus  `json:"status"`
	Slots     []TimeSlot `json:"slots"`
}

// Grooming derives salon availability from the reservation list.
type Grooming struct {
	holidays   HolidayChecker
	dailyLimit int
	slots      []string
}

// NewGrooming returns a checker using the fixed hourly slots. A non-positive
// dailyLimit falls back to models.GroomingDailyLimit.
func NewGrooming(holidays HolidayChecker, dailyLimit int) *Grooming {
	if dailyLimit <= 0 {
		dailyLimit = models.GroomingDailyLimit
	}
	return &Grooming{
		holidays:   holidays,
		dailyLimit: dailyLimit,
		slots:      models.GroomingSlots(),
	}
}

// Check applies the booking rules in order: weekend, holiday, full.
func (g *Grooming) Check(rs models.Reservations, date string) (bool, Reason, error) {
	d, err := models.ParseDate(date)
	if err != nil {
		return false, ReasonNone, fmt.Errorf("invalid date %q: %w", date, err)
	}
	date = models.DateKey(d)

	if IsWeekend(d) {
		return false, ReasonWeekend, nil
	}
	if g.holidays != nil && g.holidays.IsHoliday(date) {
		return false, ReasonHoliday, nil
	}
	if len(rs.GroomingOn(date)) >= g.dailyLimit {
		return false, ReasonFull, nil
	}
	return true, ReasonNone, nil
}

// TakenSlots marks every slot that already has an appointment on date.
func (g *Grooming) TakenSlots(rs models.Reservations, date string) map[string]bool {
	taken := make(map[string]bool, len(g.slots))
	for _, r := range rs.GroomingOn(date) {
		taken[r.GroomingAppointment.Time] = true
	}
	return taken
}

// Classify maps the number of remaining slots to a calendar status.
func Classify(remaining int) DayStatus {
	switch {
	case remaining <= 0:
		return StatusBusy
	case remaining <= models.AlmostFullThreshold:
		return StatusAlmostFull
	default:
		return StatusAvailable
	}
}

// Day computes the full availability picture for one date. Dates closed by
// any rule report zero remaining slots.
func (g *Grooming) Day(rs models.Reservations, date string) (GroomingDay, error) {
	ok, reason, err := g.Check(rs, date)
	if err != nil {
		return GroomingDay{}, err
	}
	d, _ := models.ParseDate(date)
	date = models.DateKey(d)

	taken := g.TakenSlots(rs, date)
	day := GroomingDay{
		Date:      date,
		Available: ok,
		Reason:    reason,
		Booked:    len(rs.GroomingOn(date)),
		Slots:     make([]TimeSlot, 0, len(g.slots)),
	}

	free := 0
	for _, s := range g.slots {
		day.Slots = append(day.Slots, TimeSlot{Time: s, Taken: taken[s]})
		if !taken[s] {
			free++
		}
	}
	if ok {
		day.Remaining = free
	}
	day.Status = Classify(day.Remaining)
	return day, nil
}

// Range computes Day for n consecutive dates starting at from.
func (g *Grooming) Range(rs models.Reservations, from string, n int) ([]GroomingDay, error) {
	start, err := models.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", from, err)
	}
	days := make([]GroomingDay, 0, n)
	for i := 0; i < n; i++ {
		day, err := g.Day(rs, models.DateKey(start.AddDate(0, 0, i)))
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// SlotFree reports whether a new appointment may take slot on date.
func (g *Grooming) SlotFree(rs models.Reservations, date, slot string) (bool, Reason, error) {
	ok, reason, err := g.Check(rs, date)
	if err != nil || !ok {
		return ok, reason, err
	}
	if g.TakenSlots(rs, date)[slot] {
		return false, ReasonFull, nil
	}
	return true, ReasonNone, nil
}
