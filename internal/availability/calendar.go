package availability

import (
	"fmt"
	"time"

	"pethotel/internal/models"
)

// HolidayChecker reports whether the salon is closed for a holiday on date.
type HolidayChecker interface {
	IsHoliday(date string) bool
}

// DateRange is an inclusive range of ISO dates.
type DateRange struct {
	From string
	To   string
}

func (r DateRange) Contains(date string) bool {
	return r.From <= date && date <= r.To
}

// Calendar holds the configured holidays and high-season ranges.
type Calendar struct {
	holidays   map[string]struct{}
	highSeason []DateRange
}

func NewCalendar(holidays []string, highSeason []DateRange) (*Calendar, error) {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		d, err := models.ParseDate(h)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		c.holidays[models.DateKey(d)] = struct{}{}
	}
	for _, r := range highSeason {
		from, err := models.ParseDate(r.From)
		if err != nil {
			return nil, fmt.Errorf("invalid high season start %q: %w", r.From, err)
		}
		to, err := models.ParseDate(r.To)
		if err != nil {
			return nil, fmt.Errorf("invalid high season end %q: %w", r.To, err)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("high season %s..%s ends before it starts", r.From, r.To)
		}
		c.highSeason = append(c.highSeason, DateRange{From: models.DateKey(from), To: models.DateKey(to)})
	}
	return c, nil
}

func (c *Calendar) IsHoliday(date string) bool {
	if c == nil {
		return false
	}
	_, ok := c.holidays[date]
	return ok
}

func (c *Calendar) IsHighSeason(date string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.highSeason {
		if r.Contains(date) {
			return true
		}
	}
	return false
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
