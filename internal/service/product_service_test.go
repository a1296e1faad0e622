package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pethotel/internal/database"
	"pethotel/internal/events"
	"pethotel/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProducts(repo *mockProductRepo, bus *mockPublisher) *ProductService {
	logger := zerolog.Nop()
	if bus == nil {
		return NewProductService(repo, nil, &logger)
	}
	return NewProductService(repo, bus, &logger)
}

func TestProductService_CreateProduct(t *testing.T) {
	repo := new(mockProductRepo)
	s := newTestProducts(repo, nil)
	ctx := context.Background()

	err := s.CreateProduct(ctx, &models.Product{Name: "  ", CategoryID: 0, Price: -1})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Contains(t, verr.Fields, "categoryId")
	assert.Contains(t, verr.Fields, "price")

	repo.On("CreateProduct", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Pienso"
	})).Return(nil).Once()
	require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: " Pienso ", CategoryID: 1, Price: 12.5, Stock: 3}))

	err = s.CreateCategory(ctx, &models.Category{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)

	repo.AssertExpectations(t)
}

func TestProductService_RecordSale(t *testing.T) {
	ctx := context.Background()
	sale := func() *models.Sale {
		return &models.Sale{
			Items:         []models.SaleItem{{ProductID: 1, Quantity: 2}},
			PaymentMethod: models.PaymentCard,
		}
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(mockProductRepo)
		bus := new(mockPublisher)
		s := newTestProducts(repo, bus)

		repo.On("RecordSale", ctx, mock.AnythingOfType("*models.Sale")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Sale).Total = 25
		}).Return(nil).Once()
		bus.On("PublishJSON", events.EventSaleRecorded, mock.MatchedBy(func(p events.SaleEventPayload) bool {
			return p.Total == 25 && p.PaymentMethod == "card" && p.Items == 1
		})).Return(nil).Once()

		in := sale()
		require.NoError(t, s.RecordSale(ctx, in))
		assert.NotEmpty(t, in.ID)

		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("Invalid", func(t *testing.T) {
		repo := new(mockProductRepo)
		s := newTestProducts(repo, nil)

		err := s.RecordSale(ctx, &models.Sale{PaymentMethod: "bitcoin"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "items")
		assert.Contains(t, verr.Fields, "paymentMethod")
		repo.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
	})

	t.Run("OutOfStock", func(t *testing.T) {
		repo := new(mockProductRepo)
		s := newTestProducts(repo, nil)
		repo.On("RecordSale", ctx, mock.Anything).
			Return(fmt.Errorf("product 1: %w", database.ErrInsufficientStock)).Once()

		err := s.RecordSale(ctx, sale())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields["items"], "insufficient stock")
	})

	t.Run("StoreError", func(t *testing.T) {
		repo := new(mockProductRepo)
		s := newTestProducts(repo, nil)
		repo.On("RecordSale", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		err := s.RecordSale(ctx, sale())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "disk full")
	})
}
