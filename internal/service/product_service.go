package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pethotel/internal/database"
	"pethotel/internal/domain"
	"pethotel/internal/events"
	"pethotel/internal/logging"
	"pethotel/internal/metrics"
	"pethotel/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductService is the shop ledger: categories, products and sales.
type ProductService struct {
	repo     domain.ProductRepository
	validate *validator.Validate
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewProductService(repo domain.ProductRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: newValidator(),
		eventBus: eventBus,
		logger:   logging.Component(logger, "products"),
	}
}

func (s *ProductService) CreateCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := validateStruct(s.validate, c); err != nil {
		return err
	}
	return s.repo.CreateCategory(ctx, c)
}

func (s *ProductService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *ProductService) CreateProduct(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := validateStruct(s.validate, p); err != nil {
		return err
	}
	return s.repo.CreateProduct(ctx, p)
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.repo.ListProducts(ctx)
}

// RecordSale prices the items from the catalogue, takes them out of stock
// and stores the sale. Running out of stock is a validation error.
func (s *ProductService) RecordSale(ctx context.Context, sale *models.Sale) error {
	if err := validateStruct(s.validate, sale); err != nil {
		return err
	}
	sale.ID = uuid.NewString()

	err := s.repo.RecordSale(ctx, sale)
	switch {
	case errors.Is(err, database.ErrInsufficientStock), errors.Is(err, database.ErrNotFound):
		return &ValidationError{Fields: map[string]string{"items": err.Error()}}
	case err != nil:
		return fmt.Errorf("failed to record sale: %w", err)
	}

	metrics.AddSale(sale.Total)
	s.logger.Info().Str("sale_id", sale.ID).Float64("total", sale.Total).Msg("Sale recorded")
	if s.eventBus != nil {
		payload := events.SaleEventPayload{
			SaleID:        sale.ID,
			Total:         sale.Total,
			PaymentMethod: string(sale.PaymentMethod),
			Items:         len(sale.Items),
		}
		if err := s.eventBus.PublishJSON(events.EventSaleRecorded, payload); err != nil {
			s.logger.Error().Err(err).Str("sale_id", sale.ID).Msg("publish event error")
		}
	}
	return nil
}

func (s *ProductService) ListSales(ctx context.Context) ([]*models.Sale, error) {
	return s.repo.ListSales(ctx)
}
