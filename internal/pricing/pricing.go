package pricing

import (
	"math"

	"pethotel/internal/models"
)

// SeasonChecker reports whether a night falls in high season.
type SeasonChecker interface {
	IsHighSeason(date string) bool
}

// Input is everything a quote depends on besides the price document.
type Input struct {
	Pets     []models.Pet
	Nights   []string
	Client   models.Client
	Services models.AdditionalServices
}

type Line struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Quote is the breakdown of a price. Discounts are reported as positive amounts.
type Quote struct {
	Pending          bool    `json:"pending"`
	Base             float64 `json:"base"`
	HighSeason       float64 `json:"highSeason"`
	MultiPetDiscount float64 `json:"multiPetDiscount"`
	VIPDiscount      float64 `json:"vipDiscount"`
	EmployeeDiscount float64 `json:"employeeDiscount"`
	Services         float64 `json:"services"`
	Subtotal         float64 `json:"subtotal"`
	IVA              float64 `json:"iva"`
	Total            float64 `json:"total"`
	Lines            []Line  `json:"lines,omitempty"`
}

// Compute prices in according to cfg. A nil cfg means the price document has
// not been loaded yet and yields a pending zero quote.
//
// Order: base by size per night, high-season increase per pet and night,
// multi-pet discount, VIP then employee discount, additional services, IVA.
func Compute(cfg *models.PricingConfig, in Input, season SeasonChecker) Quote {
	if cfg == nil {
		return Quote{Pending: true}
	}

	nights := len(in.Nights)
	if nights == 0 {
		nights = 1
	}
	highNights := 0
	if season != nil {
		for _, n := range in.Nights {
			if season.IsHighSeason(n) {
				highNights++
			}
		}
	}

	var q Quote
	for _, p := range in.Pets {
		size := models.SizeFromWeight(p.Weight)
		q.Base += cfg.SizePrices.For(size) * float64(nights)
	}
	q.HighSeason = cfg.HighSeasonIncrease * float64(len(in.Pets)*highNights)
	running := q.Base + q.HighSeason

	if pct := multiPetPercent(cfg, len(in.Pets)); pct > 0 {
		q.MultiPetDiscount = running * pct / 100
		running -= q.MultiPetDiscount
	}
	if in.Client.IsVip && cfg.Discounts.VIP > 0 {
		q.VIPDiscount = running * cfg.Discounts.VIP / 100
		running -= q.VIPDiscount
	}
	if in.Client.IsEmployee && cfg.Discounts.Employee > 0 {
		q.EmployeeDiscount = running * cfg.Discounts.Employee / 100
		running -= q.EmployeeDiscount
	}

	for _, svc := range in.Services {
		for _, l := range serviceLines(cfg, svc) {
			q.Services += l.Amount
			q.Lines = append(q.Lines, Line{Label: l.Label, Amount: Round(l.Amount)})
		}
	}
	running += q.Services

	running = math.Max(running, 0)
	q.Subtotal = Round(running)
	q.IVA = Round(running * cfg.IVA / 100)
	q.Total = Round(running * (1 + cfg.IVA/100))

	q.Base = Round(q.Base)
	q.HighSeason = Round(q.HighSeason)
	q.MultiPetDiscount = Round(q.MultiPetDiscount)
	q.VIPDiscount = Round(q.VIPDiscount)
	q.EmployeeDiscount = Round(q.EmployeeDiscount)
	q.Services = Round(q.Services)
	return q
}

// ForReservation prices a stored reservation. Hotel stays are charged per
// night. A grooming appointment is one unit of the size price on its date
// plus its hairdressing lines; the price document has no separate grooming base.
func ForReservation(cfg *models.PricingConfig, r *models.Reservation, season SeasonChecker) Quote {
	in := Input{
		Pets:     r.Pets(),
		Client:   r.Client,
		Services: r.AdditionalServices,
	}
	switch {
	case r.IsHotel():
		in.Nights = NightsOf(r.CheckInDate, r.CheckOutDate)
	case r.IsGrooming():
		in.Nights = []string{r.GroomingAppointment.Date}
	}
	return Compute(cfg, in, season)
}

// NightsOf lists the nights of a stay, check-out excluded.
func NightsOf(checkIn, checkOut string) []string {
	in, err := models.ParseDate(checkIn)
	if err != nil {
		return nil
	}
	out, err := models.ParseDate(checkOut)
	if err != nil {
		return nil
	}
	var nights []string
	for d := in; d.Before(out); d = d.AddDate(0, 0, 1) {
		nights = append(nights, models.DateKey(d))
	}
	return nights
}

func multiPetPercent(cfg *models.PricingConfig, pets int) float64 {
	switch {
	case pets >= 3:
		return cfg.Discounts.ThreePets
	case pets == 2:
		return cfg.Discounts.TwoPets
	}
	return 0
}

func serviceLines(cfg *models.PricingConfig, svc models.AdditionalService) []Line {
	p := cfg.Services
	switch v := svc.(type) {
	case models.DriverService:
		lines := []Line{{Label: p.Driver.Name, Amount: p.Driver.Price}}
		if v.IsOutOfHours {
			lines = append(lines, Line{Label: p.DriverOutOfHours.Name, Amount: p.DriverOutOfHours.Price})
		}
		return lines
	case models.SpecialFoodService:
		return []Line{{Label: p.SpecialFood.Name, Amount: p.SpecialFood.Price}}
	case models.MedicationService:
		if v.Frequency == models.MedicationMultiple {
			return []Line{{Label: p.MedicationMultiple.Name, Amount: p.MedicationMultiple.Price}}
		}
		return []Line{{Label: p.MedicationOnce.Name, Amount: p.MedicationOnce.Price}}
	case models.SpecialCareService:
		return []Line{{Label: p.SpecialCare.Name, Amount: p.SpecialCare.Price}}
	case models.HairdressingService:
		lines := make([]Line, 0, len(v.Services))
		for _, h := range v.Services {
			if sp, ok := p.Hairdressing[h]; ok {
				lines = append(lines, Line{Label: sp.Name, Amount: sp.Price})
			}
		}
		return lines
	}
	return nil
}

// Round rounds half away from zero at two decimals. The small epsilon absorbs
// binary representation error such as 1.005 being stored as 1.00499...
func Round(v float64) float64 {
	if v < 0 {
		return -Round(-v)
	}
	return math.Floor(v*100+0.5+1e-7) / 100
}
