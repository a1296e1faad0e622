package service

import (
	"errors"
	"testing"

	"pethotel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"price": "must be greater than 0", "name": "is required"}}
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: name: is required; price: must be greater than 0", err.Error())
}

func TestValidateStruct(t *testing.T) {
	v := newValidator()

	require.NoError(t, validateStruct(v, models.Product{Name: "Pienso", CategoryID: 1, Price: 3}))

	err := validateStruct(v, models.Product{Price: -1, Stock: -2})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"name":       "is required",
		"categoryId": "must be greater than 0",
		"price":      "must be greater than 0",
		"stock":      "must be at least 0",
	}, verr.Fields)

	err = validateStruct(v, models.Sale{PaymentMethod: "bitcoin", Items: []models.SaleItem{{ProductID: 1}}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be one of: cash card transfer", verr.Fields["paymentMethod"])
	assert.Equal(t, "must be greater than 0", verr.Fields["items[0].quantity"])
}
