package service

import (
	"context"
	"testing"

	"pethotel/internal/events"
	"pethotel/internal/models"
	"pethotel/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettingsService(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	bus := new(mockPublisher)
	logger := zerolog.Nop()
	s := NewSettingsService(newTestDocuments(t, store), bus, &logger)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Get().Employees)

	t.Run("NormalisesPhone", func(t *testing.T) {
		bus.On("PublishJSON", events.EventSettingsUpdated, mock.Anything).Return(nil).Once()
		pending, err := s.Update(ctx, models.GlobalConfig{
			PhoneNumber: "612 34 56 78",
			Employees:   []models.Employee{{ID: "e1", Name: "Marta", Role: "peluquera"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "+34612345678", s.Get().PhoneNumber)

		require.NoError(t, pending.Wait(ctx))
		data, err := store.GetDocument(ctx, models.GlobalConfigDocument)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"+34612345678"`)

		e, ok := s.Get().Employee("e1")
		assert.True(t, ok)
		assert.Equal(t, "Marta", e.Name)
	})

	t.Run("InvalidPhone", func(t *testing.T) {
		_, err := s.Update(ctx, models.GlobalConfig{PhoneNumber: "12"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "phoneNumber")
	})

	t.Run("InvalidEmployee", func(t *testing.T) {
		_, err := s.Update(ctx, models.GlobalConfig{Employees: []models.Employee{{ID: "e2"}}})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "employees[0].name")
	})

	t.Run("DuplicateEmployee", func(t *testing.T) {
		_, err := s.Update(ctx, models.GlobalConfig{Employees: []models.Employee{{ID: "e", Name: "a"}, {ID: "e", Name: "b"}}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("GuardsDocumentWrites", func(t *testing.T) {
		_, err := s.doc.docs.Set(ctx, models.GlobalConfigDocument, []byte(`{"phoneNumber":"12","employees":[]}`))
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "+34612345678", s.Get().PhoneNumber)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		g := s.Get()
		g.Employees[0].Name = "changed"
		assert.Equal(t, "Marta", s.Get().Employees[0].Name)
	})

	bus.AssertExpectations(t)
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("phone", "")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = NormalizePhone("phone", "+44 20 7946 0958")
	require.NoError(t, err)
	assert.Equal(t, "+442079460958", got)

	_, err = NormalizePhone("phone", "not a phone")
	assert.ErrorIs(t, err, ErrValidation)
}
