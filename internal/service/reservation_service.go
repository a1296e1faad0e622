package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pethotel/internal/availability"
	"pethotel/internal/domain"
	"pethotel/internal/events"
	"pethotel/internal/logging"
	"pethotel/internal/metrics"
	"pethotel/internal/models"
	"pethotel/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrUnavailable  = errors.New("date not available")
	ErrRoomConflict = errors.New("room already booked")
)

// Filter narrows List. Zero fields do not filter.
type Filter struct {
	Date    string
	Status  models.Status
	Type    models.ReservationType
	RoomMin int
	RoomMax int
	Hotel   int
}

type ReservationService struct {
	repo     domain.ReservationRepository
	grooming *availability.Grooming
	hotel    *availability.Hotel
	prices   *PricingService
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewReservationService(
	repo domain.ReservationRepository,
	grooming *availability.Grooming,
	hotel *availability.Hotel,
	prices *PricingService,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		repo:     repo,
		grooming: grooming,
		hotel:    hotel,
		prices:   prices,
		eventBus: eventBus,
		logger:   logging.Component(logger, "reservations"),
		now:      time.Now,
	}
}

func (s *ReservationService) today() string {
	return models.DateKey(s.now())
}

// prepare normalises r and checks everything that does not depend on other
// reservations.
func (s *ReservationService) prepare(r *models.Reservation) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return asValidation(err)
	}
	phone, err := NormalizePhone("client.phone", r.Client.Phone)
	if err != nil {
		return err
	}
	r.Client.Phone = phone

	if r.IsHotel() {
		n, _ := models.ParseRoomNumber(r.RoomNumber)
		if s.hotel != nil && !s.hotel.HasRoom(n) {
			return NewValidationError("roomNumber", "unknown room "+r.RoomNumber)
		}
		r.RoomNumber = models.RoomName(n)
	}
	return nil
}

// Add assigns an id to r, checks it against the stored reservations and
// stores it. Status defaults to pending.
func (s *ReservationService) Add(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	r.ID = uuid.NewString()
	if r.Status == "" {
		r.Status = models.StatusPending
	}
	if err := s.prepare(r); err != nil {
		return nil, err
	}

	err := s.repo.CreateReservationWithLock(ctx, r, func(overlapping models.Reservations) error {
		return s.checkAvailability(overlapping, r)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncReservationCreated(string(r.Type))
	s.logger.Info().Str("reservation_id", r.ID).Str("type", string(r.Type)).Str("date", r.StartDate()).Msg("Reservation created")
	s.publishEvent(events.EventReservationCreated, r, "")
	return r, nil
}

func (s *ReservationService) checkAvailability(existing models.Reservations, r *models.Reservation) error {
	switch {
	case r.IsGrooming():
		ok, reason, err := s.grooming.SlotFree(existing, r.GroomingAppointment.Date, r.GroomingAppointment.Time)
		if err != nil {
			return asValidation(err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnavailable, reason)
		}
	case r.IsHotel():
		if conflicts := availability.Conflicts(existing, r); len(conflicts) > 0 {
			return fmt.Errorf("%w: %s overlaps reservation %s", ErrRoomConflict, r.RoomNumber, conflicts[0].ID)
		}
	}
	return nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

// List returns the stored reservations in insertion order, narrowed by f.
func (s *ReservationService) List(ctx context.Context, f Filter) (models.Reservations, error) {
	rs, err := s.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	if f.Date != "" {
		rs = rs.ByDate(f.Date)
	}
	if f.Status != "" {
		rs = rs.ByStatus(f.Status)
	}
	if f.Type != "" {
		rs = rs.ByType(f.Type)
	}
	if f.RoomMin > 0 || f.RoomMax > 0 {
		max := f.RoomMax
		if max == 0 {
			max = int(^uint(0) >> 1)
		}
		rs = rs.ByRoomRange(f.RoomMin, max)
	}
	if f.Hotel > 0 {
		rs = rs.ByHotel(f.Hotel)
	}
	return rs, nil
}

// Active returns the stays occupying date (today when empty), sorted by check-out.
func (s *ReservationService) Active(ctx context.Context, date string) (models.Reservations, error) {
	if date == "" {
		date = s.today()
	}
	rs, err := s.repo.ListReservationsInRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	return rs.ActiveOn(date), nil
}

func (s *ReservationService) CheckIns(ctx context.Context, date string) (models.Reservations, error) {
	if date == "" {
		date = s.today()
	}
	rs, err := s.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return rs.CheckInsOn(date), nil
}

func (s *ReservationService) CheckOuts(ctx context.Context, date string) (models.Reservations, error) {
	if date == "" {
		date = s.today()
	}
	rs, err := s.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return rs.CheckOutsOn(date), nil
}

// UpdateStatus moves the reservation to status if version is still current.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, version int64, status models.Status) (*models.Reservation, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", "unknown status "+string(status))
	}
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := r.Status

	if err := s.repo.UpdateReservationStatusWithVersion(ctx, id, version, status); err != nil {
		return nil, err
	}
	r.Status = status
	r.Version = version + 1

	s.publishEvent(events.EventReservationStatusChanged, r, previous)
	return r, nil
}

// UpdateServices replaces the additional services. Duplicate keys collapse
// to the last entry.
func (s *ReservationService) UpdateServices(ctx context.Context, id string, version int64, services models.AdditionalServices) (*models.Reservation, error) {
	return s.update(ctx, id, version, func(r *models.Reservation) error {
		services = services.Normalize()
		if err := services.Validate(len(r.Pets())); err != nil {
			return asValidation(err)
		}
		r.AdditionalServices = services
		return nil
	})
}

// SetGroomingResult records the charged price and the photos of a salon visit.
func (s *ReservationService) SetGroomingResult(ctx context.Context, id string, version int64, finalPrice *float64, beforePhoto, afterPhoto string) (*models.Reservation, error) {
	return s.update(ctx, id, version, func(r *models.Reservation) error {
		if !r.IsGrooming() {
			return NewValidationError("type", "not a grooming appointment")
		}
		if finalPrice != nil && *finalPrice < 0 {
			return NewValidationError("finalPrice", "must be at least 0")
		}
		r.GroomingAppointment.FinalPrice = finalPrice
		r.GroomingAppointment.BeforePhoto = beforePhoto
		r.GroomingAppointment.AfterPhoto = afterPhoto
		return nil
	})
}

func (s *ReservationService) update(ctx context.Context, id string, version int64, mutate func(r *models.Reservation) error) (*models.Reservation, error) {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Version = version
	if err := mutate(r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, asValidation(err)
	}
	if err := s.repo.UpdateReservationWithVersion(ctx, r); err != nil {
		return nil, err
	}
	s.publishEvent(events.EventReservationUpdated, r, "")
	return r, nil
}

// Quote prices a stored reservation with the current prices.
func (s *ReservationService) Quote(ctx context.Context, id string) (pricing.Quote, error) {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.prices.QuoteReservation(r), nil
}

// QuoteDraft prices a reservation that has not been stored.
func (s *ReservationService) QuoteDraft(r *models.Reservation) (pricing.Quote, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return pricing.Quote{}, asValidation(err)
	}
	return s.prices.QuoteReservation(r), nil
}

// GroomingAvailability computes n days of salon availability from from.
func (s *ReservationService) GroomingAvailability(ctx context.Context, from string, n int) ([]availability.GroomingDay, error) {
	if n <= 0 {
		n = 1
	}
	start, err := models.ParseDate(from)
	if err != nil {
		return nil, NewValidationError("from", "invalid date")
	}
	to := models.DateKey(start.AddDate(0, 0, n-1))
	rs, err := s.repo.ListReservationsInRange(ctx, models.DateKey(start), to)
	if err != nil {
		return nil, err
	}
	return s.grooming.Range(rs, models.DateKey(start), n)
}

// GroomingDay computes availability and the slot map of one date.
func (s *ReservationService) GroomingDay(ctx context.Context, date string) (availability.GroomingDay, error) {
	days, err := s.GroomingAvailability(ctx, date, 1)
	if err != nil {
		return availability.GroomingDay{}, err
	}
	return days[0], nil
}

type HotelAvailability struct {
	Hotel     int      `json:"hotel"`
	CheckIn   string   `json:"checkIn"`
	CheckOut  string   `json:"checkOut"`
	FreeRooms []string `json:"freeRooms"`
	Occupied  int      `json:"occupied"`
	Total     int      `json:"total"`
}

// HotelAvailability lists the rooms of hotel free for the whole stay and the
// occupancy on the check-in night.
func (s *ReservationService) HotelAvailability(ctx context.Context, hotel int, checkIn, checkOut string) (*HotelAvailability, error) {
	if _, err := models.ParseDate(checkIn); err != nil {
		return nil, NewValidationError("check_in", "invalid date")
	}
	if _, err := models.ParseDate(checkOut); err != nil {
		return nil, NewValidationError("check_out", "invalid date")
	}
	if checkOut <= checkIn {
		return nil, NewValidationError("check_out", "must be after check_in")
	}
	rs, err := s.repo.ListReservationsInRange(ctx, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	free, err := s.hotel.FreeRooms(rs, hotel, checkIn, checkOut)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"hotel": err.Error()}}
	}
	occupied, total := s.hotel.Occupancy(rs, hotel, checkIn)
	return &HotelAvailability{
		Hotel:     hotel,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		FreeRooms: free,
		Occupied:  occupied,
		Total:     total,
	}, nil
}

func (s *ReservationService) publishEvent(eventType string, r *models.Reservation, previous models.Status) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID:  r.ID,
		Type:           string(r.Type),
		Status:         string(r.Status),
		PreviousStatus: string(previous),
		StartDate:      r.StartDate(),
		ClientName:     r.Client.Name,
		Version:        r.Version,
	}
	if r.IsHotel() {
		payload.RoomNumber = r.RoomNumber
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("reservation_id", r.ID).Msg("publish event error")
	}
}

// asValidation turns model validation failures into a *ValidationError.
func asValidation(err error) error {
	if errors.Is(err, models.ErrInvalidReservation) || errors.Is(err, models.ErrInvalidService) {
		return NewValidationError("reservation", err.Error())
	}
	return err
}
