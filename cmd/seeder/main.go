package main

import (
	"os"

	"github.com/shabeebkaip/polymerhub-backend/internal/config"
	"github.com/shabeebkaip/polymerhub-backend/internal/database"
	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/internal/seeds"
	"github.com/shabeebkaip/polymerhub-backend/pkg/logger"
)

func main() {
	config.LoadConfig()
	logger.Init(os.Getenv("GO_ENV"))

	database.Connect()

	if err := database.DB.AutoMigrate(&models.User{}, &models.Product{}, &models.Deal{}, &models.Message{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate tables")
	}

	if err := seeds.SeedUsers(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed users")
	}
	if err := seeds.SeedProducts(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed products")
	}

	logger.Info().Msg("Seeding complete")
}
