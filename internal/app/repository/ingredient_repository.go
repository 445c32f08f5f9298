package repository

import (
	"strings"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type IngredientRepository interface {
	Search(namePrefix string) ([]model.Ingredient, error)
	FindByID(id uint) (*model.Ingredient, error)
	FindByIDs(ids []uint) ([]model.Ingredient, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// Search returns ingredients whose name starts with namePrefix, ignoring case
func (r *ingredientRepository) Search(namePrefix string) ([]model.Ingredient, error) {
	logger.Debug("Searching ingredients in database", map[string]interface{}{
		"name": namePrefix,
	})

	query := r.db.Model(&model.Ingredient{})
	if namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(namePrefix))+"%")
	}

	var ingredients []model.Ingredient
	if err := query.Order("name ASC, measurement_unit ASC").Find(&ingredients).Error; err != nil {
		logger.Error("Failed to search ingredients in database", err, map[string]interface{}{
			"name": namePrefix,
		})
		return nil, err
	}

	logger.Debug("Ingredients found in database", map[string]interface{}{
		"name":  namePrefix,
		"count": len(ingredients),
	})
	return ingredients, nil
}

func (r *ingredientRepository) FindByID(id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.First(&ingredient, id).Error; err != nil {
		logger.Error("Failed to find ingredient by ID in database", err, map[string]interface{}{
			"ingredient_id": id,
		})
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindByIDs(ids []uint) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		logger.Error("Failed to find ingredients by IDs in database", err, map[string]interface{}{
			"ingredient_ids": ids,
		})
		return nil, err
	}
	return ingredients, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
