package db

import (
	"fmt"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Tag{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeTag{},
		&model.RecipeIngredient{},
		&model.Favorite{},
		&model.ShoppingCartItem{},
		&model.Subscription{},
		&model.RevokedToken{},
	}
}

// Migrate runs database migrations and seeds the catalogs
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := Seed(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed fills the tag and ingredient catalogs when they are empty
func Seed(db *gorm.DB) error {
	if err := seedTags(db); err != nil {
		logger.Error("Failed to seed tags", err)
		return err
	}
	if err := seedIngredients(db); err != nil {
		logger.Error("Failed to seed ingredients", err)
		return err
	}
	return nil
}

func seedTags(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Tag{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Tags already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	tags := []model.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
		{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
		{Name: "Dessert", Color: "#F4A8C0", Slug: "dessert"},
		{Name: "Vegetarian", Color: "#2E8B57", Slug: "vegetarian"},
	}

	validate := validator.New()
	for _, tag := range tags {
		if err := validate.Struct(tag); err != nil {
			return fmt.Errorf("invalid seed tag %q: %w", tag.Slug, err)
		}
	}

	if err := db.Create(&tags).Error; err != nil {
		return err
	}

	logger.Info("Tags seeded successfully", map[string]interface{}{
		"total_records": len(tags),
	})
	return nil
}

func seedIngredients(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Ingredient{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Ingredients already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	ingredients := []model.Ingredient{
		{Name: "eggs", MeasurementUnit: "pcs"},
		{Name: "milk", MeasurementUnit: "ml"},
		{Name: "butter", MeasurementUnit: "g"},
		{Name: "wheat flour", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
		{Name: "black pepper", MeasurementUnit: "pinch"},
		{Name: "olive oil", MeasurementUnit: "tbsp"},
		{Name: "garlic", MeasurementUnit: "clove"},
		{Name: "onion", MeasurementUnit: "pcs"},
		{Name: "tomato", MeasurementUnit: "pcs"},
		{Name: "potato", MeasurementUnit: "g"},
		{Name: "chicken breast", MeasurementUnit: "g"},
		{Name: "rice", MeasurementUnit: "g"},
		{Name: "water", MeasurementUnit: "ml"},
	}

	if err := db.CreateInBatches(&ingredients, 100).Error; err != nil {
		return err
	}

	logger.Info("Ingredients seeded successfully", map[string]interface{}{
		"total_records": len(ingredients),
	})
	return nil
}
