package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Deal{}))
	return db
}

func TestResolveCounterpartByProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	c := &Catalog{DB: db}

	require.NoError(t, db.Create(&models.User{ID: "seller1", Role: models.RoleSeller, Email: "s@example.com"}).Error)
	require.NoError(t, db.Create(&models.Product{ID: "prod1", Name: "HDPE Injection Grade", SellerID: "seller1"}).Error)

	cp, err := c.ResolveCounterpartByProduct(context.Background(), "prod1", "buyer1")
	require.NoError(t, err)
	assert.Equal(t, "seller1", cp.CounterpartID)
	assert.Equal(t, "product", cp.ContextType)
	assert.Equal(t, "HDPE Injection Grade", cp.ContextName)

	// Sellers do not converse with themselves about their own listing
	_, err = c.ResolveCounterpartByProduct(context.Background(), "prod1", "seller1")
	assert.Error(t, err)

	_, err = c.ResolveCounterpartByProduct(context.Background(), "missing", "buyer1")
	assert.Error(t, err)
}

func TestResolveCounterpartByDeal(t *testing.T) {
	db := setupCatalogTestDB(t)
	c := &Catalog{DB: db}

	require.NoError(t, db.Create(&models.Product{ID: "prod1", Name: "PP Copolymer", SellerID: "seller1"}).Error)
	require.NoError(t, db.Create(&models.Deal{ID: "deal1", ProductID: "prod1", BuyerID: "buyer1", SellerID: "seller1"}).Error)

	cp, err := c.ResolveCounterpartByDeal(context.Background(), "deal1", "buyer1")
	require.NoError(t, err)
	assert.Equal(t, "seller1", cp.CounterpartID)

	cp, err = c.ResolveCounterpartByDeal(context.Background(), "deal1", "seller1")
	require.NoError(t, err)
	assert.Equal(t, "buyer1", cp.CounterpartID)

	_, err = c.ResolveCounterpartByDeal(context.Background(), "deal1", "mallory")
	assert.Error(t, err)
}
