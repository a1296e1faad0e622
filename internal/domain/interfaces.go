package domain

import (
	"context"

	"pethotel/internal/models"
)

type ReservationRepository interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	// CreateReservationWithLock runs check against the stored reservations that
	// overlap r and inserts r only if check returns nil, atomically.
	CreateReservationWithLock(ctx context.Context, r *models.Reservation, check func(overlapping models.Reservations) error) error
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservations(ctx context.Context) (models.Reservations, error)
	ListReservationsInRange(ctx context.Context, from, to string) (models.Reservations, error)
	UpdateReservationStatusWithVersion(ctx context.Context, id string, version int64, status models.Status) error
	UpdateReservationWithVersion(ctx context.Context, r *models.Reservation) error
}

type ProductRepository interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	RecordSale(ctx context.Context, s *models.Sale) error
	ListSales(ctx context.Context) ([]*models.Sale, error)
}

// DocumentStore persists whole JSON documents. Get returns nil, nil for a
// missing document.
type DocumentStore interface {
	GetDocument(ctx context.Context, key models.DocumentKey) ([]byte, error)
	SetDocument(ctx context.Context, key models.DocumentKey, data []byte) error
}

// DocumentWatcher is implemented by stores that can report writes made by
// other processes.
type DocumentWatcher interface {
	WatchDocument(ctx context.Context, key models.DocumentKey, fn func(data []byte)) (cancel func(), err error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
