package models

// SizePrices holds the nightly base price per size band.
type SizePrices struct {
	Small  float64 `json:"pequeño" validate:"gte=0"`
	Medium float64 `json:"mediano" validate:"gte=0"`
	Large  float64 `json:"grande" validate:"gte=0"`
}

// For returns the base price of size. Unknown sizes price as large.
func (p SizePrices) For(size Size) float64 {
	switch size {
	case SizeSmall:
		return p.Small
	case SizeMedium:
		return p.Medium
	default:
		return p.Large
	}
}

// Discounts are percentages in [0, 100].
type Discounts struct {
	VIP       float64 `json:"vip" validate:"gte=0,lte=100"`
	Employee  float64 `json:"employee" validate:"gte=0,lte=100"`
	TwoPets   float64 `json:"twoPets" validate:"gte=0,lte=100"`
	ThreePets float64 `json:"threePets" validate:"gte=0,lte=100"`
}

type ServicePrice struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

type ServicePrices struct {
	Driver             ServicePrice                             `json:"driver"`
	DriverOutOfHours   ServicePrice                             `json:"driverOutOfHours"`
	SpecialFood        ServicePrice                             `json:"specialFood"`
	MedicationOnce     ServicePrice                             `json:"medicationOnce"`
	MedicationMultiple ServicePrice                             `json:"medicationMultiple"`
	SpecialCare        ServicePrice                             `json:"specialCare"`
	Hairdressing       map[HairdressingServiceType]ServicePrice `json:"hairdressing" validate:"dive"`
}

// PricingConfig is the mutable price document kept under configs/hotel_pricing.
type PricingConfig struct {
	SizePrices         SizePrices    `json:"sizePrices"`
	HighSeasonIncrease float64       `json:"highSeasonIncrease" validate:"gte=0"`
	IVA                float64       `json:"iva" validate:"gte=0,lte=100"`
	Discounts          Discounts     `json:"discounts"`
	Services           ServicePrices `json:"additionalServices"`
}

// DefaultPricingConfig returns the prices a fresh installation starts with.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		SizePrices:         SizePrices{Small: 25, Medium: 30, Large: 35},
		HighSeasonIncrease: 5,
		IVA:                21,
		Discounts: Discounts{
			VIP:       10,
			Employee:  15,
			TwoPets:   8,
			ThreePets: 12,
		},
		Services: ServicePrices{
			Driver:             ServicePrice{Name: "Transporte", Price: 15},
			DriverOutOfHours:   ServicePrice{Name: "Transporte fuera de horario", Price: 10},
			SpecialFood:        ServicePrice{Name: "Comida especial", Price: 5},
			MedicationOnce:     ServicePrice{Name: "Medicación (una vez al día)", Price: 3},
			MedicationMultiple: ServicePrice{Name: "Medicación (varias veces al día)", Price: 6},
			SpecialCare:        ServicePrice{Name: "Curas", Price: 8},
			Hairdressing: map[HairdressingServiceType]ServicePrice{
				HairBath:        {Name: "Baño", Price: 20},
				HairCut:         {Name: "Corte", Price: 25},
				HairNailTrim:    {Name: "Corte de uñas", Price: 8},
				HairEarCleaning: {Name: "Limpieza de oídos", Price: 6},
				HairDeshedding:  {Name: "Deslanado", Price: 18},
				HairBrushing:    {Name: "Cepillado", Price: 10},
			},
		},
	}
}

// Clone returns a deep copy.
func (c PricingConfig) Clone() PricingConfig {
	out := c
	if c.Services.Hairdressing != nil {
		out.Services.Hairdressing = make(map[HairdressingServiceType]ServicePrice, len(c.Services.Hairdressing))
		for k, v := range c.Services.Hairdressing {
			out.Services.Hairdressing[k] = v
		}
	}
	return out
}
