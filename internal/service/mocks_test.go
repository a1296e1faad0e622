package service

import (
	"context"
	"testing"
	"time"

	"pethotel/internal/documents"
	"pethotel/internal/models"
	"pethotel/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

// CreateReservationWithLock hands the configured overlapping list to check,
// like the real store does inside its transaction.
func (m *mockRepo) CreateReservationWithLock(ctx context.Context, r *models.Reservation, check func(models.Reservations) error) error {
	args := m.Called(ctx, r)
	if existing, ok := args.Get(0).(models.Reservations); ok && check != nil {
		if err := check(existing); err != nil {
			return err
		}
	}
	return args.Error(1)
}
func (m *mockRepo) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) ListReservations(ctx context.Context) (models.Reservations, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Reservations), args.Error(1)
}
func (m *mockRepo) ListReservationsInRange(ctx context.Context, from, to string) (models.Reservations, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Reservations), args.Error(1)
}
func (m *mockRepo) UpdateReservationStatusWithVersion(ctx context.Context, id string, version int64, status models.Status) error {
	return m.Called(ctx, id, version, status).Error(0)
}
func (m *mockRepo) UpdateReservationWithVersion(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockProductRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}
func (m *mockProductRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProductRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *mockProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}
func (m *mockProductRepo) RecordSale(ctx context.Context, s *models.Sale) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockProductRepo) ListSales(ctx context.Context) ([]*models.Sale, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Sale), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func newTestDocuments(t *testing.T, store *repository.MemoryDocumentStore) *documents.Service {
	t.Helper()
	logger := zerolog.Nop()
	w := documents.NewWriter(store, documents.WriterOptions{Debounce: 10 * time.Millisecond}, &logger)
	svc := documents.NewService(store, w, &logger)
	t.Cleanup(func() {
		require.NoError(t, svc.Close(context.Background()))
	})
	return svc
}
