package database

import (
	"LinkBio-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs automatic migrations for all domain models. Order matters
// because of foreign keys: profiles before links, links before events.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	models := []interface{}{
		&domain.Account{},
		&domain.LoginToken{},
		&domain.Profile{},
		&domain.Link{},
		&domain.PageView{},
		&domain.LinkClick{},
	}

	for _, model := range models {
		modelName := fmt.Sprintf("%T", model)
		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
		log.Debug("model migrated", zap.String("model", modelName))
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData creates a demo profile with a few links so a fresh install has
// something to render. Skipped when any profile already exists.
func SeedData(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&domain.Profile{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count profiles: %w", err)
	}
	if count > 0 {
		log.Info("profiles already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	displayName := "Demo Profile"
	bio := "A sample link-in-bio page created by the seeder."
	profile := domain.Profile{
		ID:          "00000000-0000-0000-0000-000000000001",
		Username:    "demo",
		DisplayName: &displayName,
		Bio:         &bio,
		Theme:       "default",
	}

	if err := db.Create(&profile).Error; err != nil {
		return fmt.Errorf("failed to seed demo profile: %w", err)
	}

	icon := "lucide:link"
	links := []domain.Link{
		{ProfileID: profile.ID, Title: "Website", URL: "https://example.com", Icon: &icon, Position: 1},
		{ProfileID: profile.ID, Title: "Blog", URL: "https://example.com/blog", Icon: &icon, Position: 2},
	}
	if err := db.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to seed demo links: %w", err)
	}

	log.Info("database seeding completed", zap.String("username", profile.Username), zap.Int("links", len(links)))
	return nil
}
