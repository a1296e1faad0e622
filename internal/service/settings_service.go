package service

import (
	"context"
	"encoding/json"

	"pethotel/internal/documents"
	"pethotel/internal/domain"
	"pethotel/internal/events"
	"pethotel/internal/logging"
	"pethotel/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SettingsService owns configs/global_configs: the salon phone number and
// the employee list.
type SettingsService struct {
	doc      *configDocument[models.GlobalConfig]
	validate *validator.Validate
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewSettingsService(docs *documents.Service, eventBus domain.EventPublisher, logger *zerolog.Logger) *SettingsService {
	s := &SettingsService{
		validate: newValidator(),
		eventBus: eventBus,
		logger:   logging.Component(logger, "settings"),
	}
	s.doc = newConfigDocument(models.GlobalConfigDocument, docs, s.decode, s.logger)
	return s
}

func (s *SettingsService) decode(data []byte) (models.GlobalConfig, error) {
	var g models.GlobalConfig
	if err := json.Unmarshal(data, &g); err != nil {
		return g, err
	}
	if _, err := NormalizePhone("phoneNumber", g.PhoneNumber); err != nil {
		return g, err
	}
	return g, validateStruct(s.validate, g)
}

func (s *SettingsService) Load(ctx context.Context) error {
	return s.doc.load(ctx, models.GlobalConfig{Employees: []models.Employee{}})
}

// Get returns the current settings; zero before Load.
func (s *SettingsService) Get() models.GlobalConfig {
	g, _ := s.doc.get()
	out := g
	out.Employees = append([]models.Employee(nil), g.Employees...)
	return out
}

// Update normalises the phone number to E.164, validates g and stores it.
func (s *SettingsService) Update(ctx context.Context, g models.GlobalConfig) (*documents.Pending, error) {
	phone, err := NormalizePhone("phoneNumber", g.PhoneNumber)
	if err != nil {
		return nil, err
	}
	g.PhoneNumber = phone
	if g.Employees == nil {
		g.Employees = []models.Employee{}
	}
	if err := validateStruct(s.validate, g); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(g.Employees))
	for _, e := range g.Employees {
		if seen[e.ID] {
			return nil, NewValidationError("employees", "duplicate employee id "+e.ID)
		}
		seen[e.ID] = true
	}

	pending, err := s.doc.store(ctx, g)
	if err != nil {
		return nil, err
	}
	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventSettingsUpdated, g); err != nil {
			s.logger.Error().Err(err).Msg("publish event error")
		}
	}
	return pending, nil
}

func (s *SettingsService) Close() {
	s.doc.close()
}
