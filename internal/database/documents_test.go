package database

import (
	"context"
	"testing"

	"pethotel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	data, err := db.GetDocument(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, db.SetDocument(ctx, models.PricingDocument, []byte(`{"iva":21}`)))
	require.NoError(t, db.SetDocument(ctx, models.PricingDocument, []byte(`{"iva":10}`)))

	data, err = db.GetDocument(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"iva":10}`, string(data))

	other, err := db.GetDocument(ctx, models.GlobalConfigDocument)
	require.NoError(t, err)
	assert.Nil(t, other)
}
