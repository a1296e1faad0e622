package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ServiceType discriminates additional services.
type ServiceType string

const (
	ServiceDriver       ServiceType = "driver"
	ServiceSpecialFood  ServiceType = "special_food"
	ServiceMedication   ServiceType = "medication"
	ServiceSpecialCare  ServiceType = "special_care"
	ServiceHairdressing ServiceType = "hairdressing"
)

// noPet is the pet index of reservation-wide services.
const noPet = -1

// ErrInvalidService is returned for malformed additional services.
var ErrInvalidService = errors.New("invalid additional service")

// ServiceKey identifies the slot an additional service occupies. At most one
// service per key may exist in a list.
type ServiceKey struct {
	Type     ServiceType
	PetIndex int
}

// DriverKey is the key of the reservation-wide transport service.
func DriverKey() ServiceKey {
	return ServiceKey{Type: ServiceDriver, PetIndex: noPet}
}

// PetServiceKey is the key of a per-pet service.
func PetServiceKey(t ServiceType, petIndex int) ServiceKey {
	return ServiceKey{Type: t, PetIndex: petIndex}
}

// AdditionalService is implemented by the five service variants only.
type AdditionalService interface {
	ServiceType() ServiceType
	Key() ServiceKey
	isAdditionalService()
}

type DriverServiceType string

const (
	DriverPickup  DriverServiceType = "pickup"
	DriverDropoff DriverServiceType = "dropoff"
	DriverBoth    DriverServiceType = "both"
)

type DriverService struct {
	Mode         DriverServiceType `json:"serviceType"`
	PickupTime   string            `json:"pickupTime,omitempty"`
	DropoffTime  string            `json:"dropoffTime,omitempty"`
	IsOutOfHours bool              `json:"isOutOfHours,omitempty"`
	Locality     string            `json:"locality,omitempty"`
}

type FoodType string

const (
	FoodRefrigerated FoodType = "refrigerated"
	FoodFrozen       FoodType = "frozen"
)

type SpecialFoodService struct {
	PetIndex int      `json:"petIndex"`
	FoodType FoodType `json:"foodType"`
}

type MedicationFrequency string

const (
	MedicationOnce     MedicationFrequency = "once"
	MedicationMultiple MedicationFrequency = "multiple"
)

type MedicationService struct {
	PetIndex  int                 `json:"petIndex"`
	Comment   string              `json:"comment,omitempty"`
	Frequency MedicationFrequency `json:"frequency"`
}

type SpecialCareService struct {
	PetIndex int    `json:"petIndex"`
	Comment  string `json:"comment,omitempty"`
}

type HairdressingServiceType string

const (
	HairBath        HairdressingServiceType = "bath"
	HairCut         HairdressingServiceType = "haircut"
	HairNailTrim    HairdressingServiceType = "nail_trim"
	HairEarCleaning HairdressingServiceType = "ear_cleaning"
	HairDeshedding  HairdressingServiceType = "deshedding"
	HairBrushing    HairdressingServiceType = "brushing"
)

// HairdressingServiceTypes lists the known hairdressing sub-services.
func HairdressingServiceTypes() []HairdressingServiceType {
	return []HairdressingServiceType{HairBath, HairCut, HairNailTrim, HairEarCleaning, HairDeshedding, HairBrushing}
}

type HairdressingService struct {
	PetIndex int                       `json:"petIndex"`
	Services []HairdressingServiceType `json:"services"`
}

func (DriverService) ServiceType() ServiceType       { return ServiceDriver }
func (SpecialFoodService) ServiceType() ServiceType  { return ServiceSpecialFood }
func (MedicationService) ServiceType() ServiceType   { return ServiceMedication }
func (SpecialCareService) ServiceType() ServiceType  { return ServiceSpecialCare }
func (HairdressingService) ServiceType() ServiceType { return ServiceHairdressing }

func (DriverService) Key() ServiceKey         { return DriverKey() }
func (s SpecialFoodService) Key() ServiceKey  { return PetServiceKey(ServiceSpecialFood, s.PetIndex) }
func (s MedicationService) Key() ServiceKey   { return PetServiceKey(ServiceMedication, s.PetIndex) }
func (s SpecialCareService) Key() ServiceKey  { return PetServiceKey(ServiceSpecialCare, s.PetIndex) }
func (s HairdressingService) Key() ServiceKey { return PetServiceKey(ServiceHairdressing, s.PetIndex) }

func (DriverService) isAdditionalService()       {}
func (SpecialFoodService) isAdditionalService()  {}
func (MedicationService) isAdditionalService()   {}
func (SpecialCareService) isAdditionalService()  {}
func (HairdressingService) isAdditionalService() {}

// AdditionalServices is the ordered list attached to a reservation.
// All mutating helpers return a new slice and never modify the receiver.
type AdditionalServices []AdditionalService

// Upsert removes any entry with the same key as svc and appends svc.
func (s AdditionalServices) Upsert(svc AdditionalService) AdditionalServices {
	key := svc.Key()
	out := make(AdditionalServices, 0, len(s)+1)
	for _, existing := range s {
		if existing.Key() != key {
			out = append(out, existing)
		}
	}
	return append(out, svc)
}

// Remove deletes every entry matching key.
func (s AdditionalServices) Remove(key ServiceKey) AdditionalServices {
	out := make(AdditionalServices, 0, len(s))
	for _, existing := range s {
		if existing.Key() != key {
			out = append(out, existing)
		}
	}
	return out
}

// Find returns the entry for key.
func (s AdditionalServices) Find(key ServiceKey) (AdditionalService, bool) {
	for _, existing := range s {
		if existing.Key() == key {
			return existing, true
		}
	}
	return nil, false
}

// Normalize collapses duplicate keys, keeping the last occurrence.
func (s AdditionalServices) Normalize() AdditionalServices {
	var out AdditionalServices
	for _, svc := range s {
		out = out.Upsert(svc)
	}
	return out
}

// ForPet returns the per-pet services attached to petIndex.
func (s AdditionalServices) ForPet(petIndex int) AdditionalServices {
	var out AdditionalServices
	for _, svc := range s {
		if svc.Key().PetIndex == petIndex && svc.ServiceType() != ServiceDriver {
			out = append(out, svc)
		}
	}
	return out
}

func (s AdditionalServices) UpsertDriver(d DriverService) AdditionalServices {
	return s.Upsert(d)
}

func (s AdditionalServices) RemoveDriver() AdditionalServices {
	return s.Remove(DriverKey())
}

func (s AdditionalServices) Driver() (DriverService, bool) {
	svc, ok := s.Find(DriverKey())
	if !ok {
		return DriverService{}, false
	}
	d, ok := svc.(DriverService)
	return d, ok
}

func (s AdditionalServices) SpecialFood(petIndex int) (SpecialFoodService, bool) {
	svc, ok := s.Find(PetServiceKey(ServiceSpecialFood, petIndex))
	if !ok {
		return SpecialFoodService{}, false
	}
	f, ok := svc.(SpecialFoodService)
	return f, ok
}

func (s AdditionalServices) Medication(petIndex int) (MedicationService, bool) {
	svc, ok := s.Find(PetServiceKey(ServiceMedication, petIndex))
	if !ok {
		return MedicationService{}, false
	}
	m, ok := svc.(MedicationService)
	return m, ok
}

func (s AdditionalServices) SpecialCare(petIndex int) (SpecialCareService, bool) {
	svc, ok := s.Find(PetServiceKey(ServiceSpecialCare, petIndex))
	if !ok {
		return SpecialCareService{}, false
	}
	c, ok := svc.(SpecialCareService)
	return c, ok
}

func (s AdditionalServices) Hairdressing(petIndex int) (HairdressingService, bool) {
	svc, ok := s.Find(PetServiceKey(ServiceHairdressing, petIndex))
	if !ok {
		return HairdressingService{}, false
	}
	h, ok := svc.(HairdressingService)
	return h, ok
}

// Validate checks every entry against petCount and the one-per-key invariant.
func (s AdditionalServices) Validate(petCount int) error {
	seen := make(map[ServiceKey]bool, len(s))
	for _, svc := range s {
		if err := validateService(svc, petCount); err != nil {
			return err
		}
		key := svc.Key()
		if seen[key] {
			return fmt.Errorf("%w: duplicate %s for pet %d", ErrInvalidService, key.Type, key.PetIndex)
		}
		seen[key] = true
	}
	return nil
}

func validateService(svc AdditionalService, petCount int) error {
	if svc == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidService)
	}
	if idx := svc.Key().PetIndex; svc.ServiceType() != ServiceDriver && (idx < 0 || idx >= petCount) {
		return fmt.Errorf("%w: %s pet index %d out of range", ErrInvalidService, svc.ServiceType(), idx)
	}

	switch v := svc.(type) {
	case DriverService:
		switch v.Mode {
		case DriverPickup, DriverDropoff, DriverBoth:
		default:
			return fmt.Errorf("%w: unknown driver service type %q", ErrInvalidService, v.Mode)
		}
	case SpecialFoodService:
		if v.FoodType != FoodRefrigerated && v.FoodType != FoodFrozen {
			return fmt.Errorf("%w: unknown food type %q", ErrInvalidService, v.FoodType)
		}
	case MedicationService:
		if v.Frequency != MedicationOnce && v.Frequency != MedicationMultiple {
			return fmt.Errorf("%w: unknown medication frequency %q", ErrInvalidService, v.Frequency)
		}
	case HairdressingService:
		if len(v.Services) == 0 {
			return fmt.Errorf("%w: hairdressing without services", ErrInvalidService)
		}
		for _, h := range v.Services {
			if !isHairdressingType(h) {
				return fmt.Errorf("%w: unknown hairdressing service %q", ErrInvalidService, h)
			}
		}
	}
	return nil
}

func isHairdressingType(h HairdressingServiceType) bool {
	for _, known := range HairdressingServiceTypes() {
		if h == known {
			return true
		}
	}
	return false
}

// JSON encoding: each entry is a flat object tagged by "type".

func (s DriverService) MarshalJSON() ([]byte, error) {
	type plain DriverService
	return json.Marshal(struct {
		Type ServiceType `json:"type"`
		plain
	}{ServiceDriver, plain(s)})
}

func (s SpecialFoodService) MarshalJSON() ([]byte, error) {
	type plain SpecialFoodService
	return json.Marshal(struct {
		Type ServiceType `json:"type"`
		plain
	}{ServiceSpecialFood, plain(s)})
}

func (s MedicationService) MarshalJSON() ([]byte, error) {
	type plain MedicationService
	return json.Marshal(struct {
		Type ServiceType `json:"type"`
		plain
	}{ServiceMedication, plain(s)})
}

func (s SpecialCareService) MarshalJSON() ([]byte, error) {
	type plain SpecialCareService
	return json.Marshal(struct {
		Type ServiceType `json:"type"`
		plain
	}{ServiceSpecialCare, plain(s)})
}

func (s HairdressingService) MarshalJSON() ([]byte, error) {
	type plain HairdressingService
	return json.Marshal(struct {
		Type ServiceType `json:"type"`
		plain
	}{ServiceHairdressing, plain(s)})
}

func (s *AdditionalServices) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(AdditionalServices, 0, len(raws))
	for _, raw := range raws {
		svc, err := decodeService(raw)
		if err != nil {
			return err
		}
		out = append(out, svc)
	}
	*s = out
	return nil
}

func decodeService(raw json.RawMessage) (AdditionalService, error) {
	var head struct {
		Type ServiceType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case ServiceDriver:
		var v DriverService
		err := json.Unmarshal(raw, &v)
		return v, err
	case ServiceSpecialFood:
		var v SpecialFoodService
		err := json.Unmarshal(raw, &v)
		return v, err
	case ServiceMedication:
		var v MedicationService
		err := json.Unmarshal(raw, &v)
		return v, err
	case ServiceSpecialCare:
		var v SpecialCareService
		err := json.Unmarshal(raw, &v)
		return v, err
	case ServiceHairdressing:
		var v HairdressingService
		err := json.Unmarshal(raw, &v)
		return v, err
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidService, head.Type)
	}
}
