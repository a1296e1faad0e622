package service

import (
	"context"
	"encoding/json"

	"pethotel/internal/documents"
	"pethotel/internal/domain"
	"pethotel/internal/events"
	"pethotel/internal/logging"
	"pethotel/internal/models"
	"pethotel/internal/pricing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PricingService owns the price document snapshot.
type PricingService struct {
	doc      *configDocument[models.PricingConfig]
	validate *validator.Validate
	season   pricing.SeasonChecker
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewPricingService(docs *documents.Service, season pricing.SeasonChecker, eventBus domain.EventPublisher, logger *zerolog.Logger) *PricingService {
	s := &PricingService{
		validate: newValidator(),
		season:   season,
		eventBus: eventBus,
		logger:   logging.Component(logger, "pricing"),
	}
	s.doc = newConfigDocument(models.PricingDocument, docs, s.decode, s.logger)
	return s
}

func (s *PricingService) decode(data []byte) (models.PricingConfig, error) {
	var cfg models.PricingConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, validateStruct(s.validate, cfg)
}

// Load reads the price document, seeding the defaults on first start.
func (s *PricingService) Load(ctx context.Context) error {
	return s.doc.load(ctx, models.DefaultPricingConfig())
}

// Snapshot returns a copy of the current prices or nil before Load.
func (s *PricingService) Snapshot() *models.PricingConfig {
	cfg, ok := s.doc.get()
	if !ok {
		return nil
	}
	clone := cfg.Clone()
	return &clone
}

// Update validates cfg, applies it at once and schedules its persistence.
func (s *PricingService) Update(ctx context.Context, cfg models.PricingConfig) (*documents.Pending, error) {
	if err := validateStruct(s.validate, cfg); err != nil {
		return nil, err
	}
	pending, err := s.doc.store(ctx, cfg.Clone())
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventPricingUpdated, cfg); err != nil {
			s.logger.Error().Err(err).Msg("publish event error")
		}
	}
	return pending, nil
}

// Quote prices an ad-hoc input against the current snapshot.
func (s *PricingService) Quote(in pricing.Input) pricing.Quote {
	return pricing.Compute(s.Snapshot(), in, s.season)
}

// QuoteReservation prices r against the current snapshot.
func (s *PricingService) QuoteReservation(r *models.Reservation) pricing.Quote {
	return pricing.ForReservation(s.Snapshot(), r, s.season)
}

func (s *PricingService) Close() {
	s.doc.close()
}
