package export

import (
	"sort"
	"strings"

	"pethotel/internal/models"
)

// Header is the fixed column order of the daily-needs sheet.
var Header = []string{"Habitación", "Mascota", "Medicación", "Curas", "Alimentación", "Alergias", "Advertencias"}

// Row is one pet staying in the hotel on the export date.
type Row struct {
	Room        string `json:"room"`
	Pet         string `json:"pet"`
	Medication  string `json:"medication"`
	Care        string `json:"care"`
	Feeding     string `json:"feeding"`
	Allergies   string `json:"allergies"`
	Warnings    string `json:"warnings"`
	roomNumber  int
	reservation int
}

func (r Row) Fields() []string {
	return []string{r.Room, r.Pet, r.Medication, r.Care, r.Feeding, r.Allergies, r.Warnings}
}

var medicationLabels = map[models.MedicationFrequency]string{
	models.MedicationOnce:     "Una vez al día",
	models.MedicationMultiple: "Varias veces al día",
}

var foodLabels = map[models.FoodType]string{
	models.FoodRefrigerated: "Refrigerada",
	models.FoodFrozen:       "Congelada",
}

// BuildRows lists one row per pet of the stays active on date, ordered by
// room number. Pets of one stay keep their order.
func BuildRows(rs models.Reservations, date string) []Row {
	rows := []Row{}
	for i, r := range rs.ActiveOn(date) {
		n, _ := models.ParseRoomNumber(r.RoomNumber)
		for idx, pet := range r.HotelStay.Pets {
			rows = append(rows, Row{
				Room:        r.RoomNumber,
				Pet:         pet.Name,
				Medication:  medication(r.AdditionalServices, idx),
				Care:        care(r.AdditionalServices, idx),
				Feeding:     feeding(r.AdditionalServices, idx),
				Allergies:   join(pet.Allergies, r.Client.Allergies),
				Warnings:    join(pet.Warnings, r.Client.Warnings),
				roomNumber:  n,
				reservation: i,
			})
		}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].roomNumber != rows[b].roomNumber {
			return rows[a].roomNumber < rows[b].roomNumber
		}
		return rows[a].reservation < rows[b].reservation
	})
	return rows
}

func medication(s models.AdditionalServices, pet int) string {
	m, ok := s.Medication(pet)
	if !ok {
		return ""
	}
	return join(medicationLabels[m.Frequency], m.Comment)
}

func care(s models.AdditionalServices, pet int) string {
	c, ok := s.SpecialCare(pet)
	if !ok {
		return ""
	}
	if c.Comment == "" {
		return "Sí"
	}
	return c.Comment
}

func feeding(s models.AdditionalServices, pet int) string {
	f, ok := s.SpecialFood(pet)
	if !ok {
		return ""
	}
	return foodLabels[f.FoodType]
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ". ")
}
