package repository

import (
	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(favorite *model.Favorite) error
	Exists(userID, recipeID uint) (bool, error)
	RecipeIDsIn(userID uint, recipeIDs []uint) (map[uint]bool, error)
	Delete(userID, recipeID uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(favorite *model.Favorite) error {
	logger.Debug("Creating favorite in database", map[string]interface{}{
		"user_id":   favorite.UserID,
		"recipe_id": favorite.RecipeID,
	})

	if err := r.db.Omit("User", "Recipe").Create(favorite).Error; err != nil {
		logger.Error("Failed to create favorite in database", err, map[string]interface{}{
			"user_id":   favorite.UserID,
			"recipe_id": favorite.RecipeID,
		})
		return err
	}

	logger.Debug("Favorite created in database", map[string]interface{}{
		"favorite_id": favorite.ID,
	})
	return nil
}

func (r *favoriteRepository) Exists(userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check favorite in database", err, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return false, err
	}
	return count > 0, nil
}

// RecipeIDsIn returns which of recipeIDs the user has favorited
func (r *favoriteRepository) RecipeIDsIn(userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}

	var ids []uint
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		logger.Error("Failed to load favorite recipe IDs from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// Delete removes a favorite. gorm.ErrRecordNotFound means there was none.
func (r *favoriteRepository) Delete(userID, recipeID uint) error {
	logger.Debug("Deleting favorite from database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})

	result := r.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete favorite from database", result.Error, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Favorite deleted from database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return nil
}
