package seeds

import (
	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedProducts creates demo listings tied to the seeded sellers.
func SeedProducts(db *gorm.DB) error {
	products := []models.Product{
		{ID: "seed_product_1", Name: "HDPE Injection Grade", Grade: "HD 5218EA", CASNumber: "9002-88-4", SellerID: "seed_seller_1"},
		{ID: "seed_product_2", Name: "LLDPE Film Grade", Grade: "LL 1018FA", CASNumber: "9002-88-4", SellerID: "seed_seller_1"},
		{ID: "seed_product_3", Name: "Polypropylene Copolymer", Grade: "PP 440G", CASNumber: "9003-07-0", SellerID: "seed_seller_2"},
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
		return err
	}
	logger.Info().Int("count", len(products)).Msg("Seeded products")
	return nil
}
