package seeds

import (
	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedUsers creates demo buyer/seller accounts for local development.
func SeedUsers(db *gorm.DB) error {
	users := []models.User{
		{ID: "seed_buyer_1", Name: "Anil Kumar", Email: "buyer1@example.com", Company: "Brightpack Industries", Role: models.RoleBuyer},
		{ID: "seed_buyer_2", Name: "Fatima Noor", Email: "buyer2@example.com", Company: "Gulf Polymers Trading", Role: models.RoleBuyer},
		{ID: "seed_seller_1", Name: "Rajesh Menon", Email: "seller1@example.com", Company: "Kerala Resins Ltd", Role: models.RoleSeller},
		{ID: "seed_seller_2", Name: "Chen Wei", Email: "seller2@example.com", Company: "Eastlake Petrochem", Role: models.RoleSeller},
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&users).Error; err != nil {
		return err
	}
	logger.Info().Int("count", len(users)).Msg("Seeded users")
	return nil
}
