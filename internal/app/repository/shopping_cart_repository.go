package repository

import (
	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShoppingCartRepository interface {
	Create(item *model.ShoppingCartItem) error
	Exists(userID, recipeID uint) (bool, error)
	RecipeIDsIn(userID uint, recipeIDs []uint) (map[uint]bool, error)
	CountByUser(userID uint) (int64, error)
	AggregateIngredients(userID uint) ([]model.ShoppingListLine, error)
	Delete(userID, recipeID uint) error
}

type shoppingCartRepository struct {
	db *gorm.DB
}

func NewShoppingCartRepository(db *gorm.DB) ShoppingCartRepository {
	return &shoppingCartRepository{db: db}
}

func (r *shoppingCartRepository) Create(item *model.ShoppingCartItem) error {
	logger.Debug("Creating shopping cart item in database", map[string]interface{}{
		"user_id":   item.UserID,
		"recipe_id": item.RecipeID,
	})

	if err := r.db.Omit("User", "Recipe").Create(item).Error; err != nil {
		logger.Error("Failed to create shopping cart item in database", err, map[string]interface{}{
			"user_id":   item.UserID,
			"recipe_id": item.RecipeID,
		})
		return err
	}

	logger.Debug("Shopping cart item created in database", map[string]interface{}{
		"cart_item_id": item.ID,
	})
	return nil
}

func (r *shoppingCartRepository) Exists(userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ShoppingCartItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check shopping cart item in database", err, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return false, err
	}
	return count > 0, nil
}

// RecipeIDsIn returns which of recipeIDs are in the user's cart
func (r *shoppingCartRepository) RecipeIDsIn(userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}

	var ids []uint
	err := r.db.Model(&model.ShoppingCartItem{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		logger.Error("Failed to load shopping cart recipe IDs from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *shoppingCartRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ShoppingCartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		logger.Error("Failed to count shopping cart items in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

// AggregateIngredients sums ingredient amounts over every recipe in the
// user's cart, one row per (name, unit), ordered by name. Names are compared
// case-insensitively and returned lower-cased.
func (r *shoppingCartRepository) AggregateIngredients(userID uint) ([]model.ShoppingListLine, error) {
	logger.Debug("Aggregating shopping cart ingredients in database", map[string]interface{}{
		"user_id": userID,
	})

	var lines []model.ShoppingListLine
	err := r.db.Table("shopping_cart_items").
		Select("LOWER(ingredients.name) AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Group("LOWER(ingredients.name), ingredients.measurement_unit").
		Order("LOWER(ingredients.name) ASC, ingredients.measurement_unit ASC").
		Scan(&lines).Error
	if err != nil {
		logger.Error("Failed to aggregate shopping cart ingredients in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Shopping cart ingredients aggregated", map[string]interface{}{
		"user_id": userID,
		"lines":   len(lines),
	})
	return lines, nil
}

// Delete removes a cart entry. gorm.ErrRecordNotFound means there was none.
func (r *shoppingCartRepository) Delete(userID, recipeID uint) error {
	logger.Debug("Deleting shopping cart item from database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})

	result := r.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&model.ShoppingCartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete shopping cart item from database", result.Error, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Shopping cart item deleted from database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return nil
}
