package models

// Size is the weight band used for pricing.
type Size string

const (
	SizeSmall  Size = "pequeño"
	SizeMedium Size = "mediano"
	SizeLarge  Size = "grande"
)

const (
	smallMaxWeight  = 10.0
	mediumMaxWeight = 20.0
)

// SizeFromWeight maps a weight in kg to its size band.
func SizeFromWeight(weight float64) Size {
	switch {
	case weight <= smallMaxWeight:
		return SizeSmall
	case weight <= mediumMaxWeight:
		return SizeMedium
	default:
		return SizeLarge
	}
}

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

type Pet struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Breed      string  `json:"breed"`
	Size       Size    `json:"size"`
	Weight     float64 `json:"weight"`
	Sex        Sex     `json:"sex,omitempty"`
	IsNeutered *bool   `json:"isNeutered,omitempty"`
	Allergies  string  `json:"allergies,omitempty"`
	Warnings   string  `json:"warnings,omitempty"`
}

// Normalize recomputes Size from Weight so the two never disagree.
func (p *Pet) Normalize() {
	p.Size = SizeFromWeight(p.Weight)
}
