package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

func TestMemoryCatalogSearchSupplies(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()
	catalog.AddSupply(models.Supply{Name: "Organic Fertilizer", Price: 450, Unit: "bag", SupplierName: "Green Inputs"})
	catalog.AddSupply(models.Supply{Name: "Tomato Seeds", Price: 120, Unit: "packet", SupplierName: "SeedCo"})
	for i := 0; i < 7; i++ {
		catalog.AddSupply(models.Supply{Name: fmt.Sprintf("Seed Tray %d", i), Price: 30, SupplierName: "FarmTools"})
	}

	got, err := catalog.SearchSupplies(ctx, "FERTIL")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Organic Fertilizer", got[0].Name)

	got, err = catalog.SearchSupplies(ctx, "seed")
	require.NoError(t, err)
	assert.Len(t, got, ChatResultLimit)
	assert.Equal(t, "Tomato Seeds", got[0].Name)

	got, err = catalog.SearchSupplies(ctx, "tractor")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryCatalogAvailableProducts(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()
	catalog.AddProfile(models.Profile{UserID: "farmer-1", DisplayName: "Ravi"})

	require.NoError(t, catalog.InsertProduct(ctx, &models.Product{FarmerID: "farmer-1", Name: "Tomatoes", QuantityAvailable: 50, PricePerUnit: 2.5}))
	require.NoError(t, catalog.InsertProduct(ctx, &models.Product{FarmerID: "farmer-2", Name: "Onions", QuantityAvailable: 0, PricePerUnit: 1}))
	require.NoError(t, catalog.InsertProduct(ctx, &models.Product{FarmerID: "farmer-2", Name: "Rice", QuantityAvailable: 10, PricePerUnit: 1, Status: models.ProductStatusSoldOut}))

	got, err := catalog.SearchAvailableProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tomatoes", got[0].Name)
	assert.Equal(t, "Ravi", got[0].FarmerName())
	assert.Equal(t, models.DefaultUnit, got[0].Unit)

	one, err := catalog.GetProduct(ctx, got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Tomatoes", one.Name)

	_, err = catalog.GetProduct(ctx, "missing")
	var ce *CatalogError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindNotFound, ce.Kind)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryCatalogInsertRejectsIncompleteProduct(t *testing.T) {
	catalog := NewMemoryCatalog()

	err := catalog.InsertProduct(context.Background(), &models.Product{Name: "No owner"})

	var ce *CatalogError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindConstraint, ce.Kind)
	assert.Empty(t, catalog.Products())
}

func TestMemoryCatalogInsertFillsDefaults(t *testing.T) {
	catalog := NewMemoryCatalog()
	p := &models.Product{FarmerID: "f", Name: "Mangoes", QuantityAvailable: 3, PricePerUnit: 4}

	require.NoError(t, catalog.InsertProduct(context.Background(), p))

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.ProductStatusAvailable, p.Status)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Len(t, catalog.Products(), 1)
}
