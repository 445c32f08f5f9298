package service

import (
	"errors"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrFavoriteAlreadyExists = errors.New("recipe already in favorites")
	ErrFavoriteNotFound      = errors.New("recipe is not in favorites")
)

type FavoriteService interface {
	Add(principal model.Principal, recipeID uint) (*model.RecipeShortView, error)
	Remove(principal model.Principal, recipeID uint) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	recipeRepo   repository.RecipeRepository
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	recipeRepo repository.RecipeRepository,
) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		recipeRepo:   recipeRepo,
	}
}

func (s *favoriteService) Add(principal model.Principal, recipeID uint) (*model.RecipeShortView, error) {
	if principal.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	logger.Info("Adding recipe to favorites", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})

	recipe, err := s.recipeRepo.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to favorites: recipe not found", map[string]interface{}{
				"user_id":   principal.UserID,
				"recipe_id": recipeID,
			})
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	exists, err := s.favoriteRepo.Exists(principal.UserID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Recipe already in favorites", map[string]interface{}{
			"user_id":   principal.UserID,
			"recipe_id": recipeID,
		})
		return nil, ErrFavoriteAlreadyExists
	}

	// The unique index is the real guard; a concurrent insert lands here
	if err := s.favoriteRepo.Create(&model.Favorite{UserID: principal.UserID, RecipeID: recipeID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFavoriteAlreadyExists
		}
		logger.Error("Failed to add recipe to favorites", err, map[string]interface{}{
			"user_id":   principal.UserID,
			"recipe_id": recipeID,
		})
		return nil, err
	}

	logger.Info("Recipe added to favorites successfully", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})
	view := model.NewRecipeShortView(recipe)
	return &view, nil
}

func (s *favoriteService) Remove(principal model.Principal, recipeID uint) error {
	if principal.IsAnonymous() {
		return ErrUnauthenticated
	}

	logger.Info("Removing recipe from favorites", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})

	if err := s.favoriteRepo.Delete(principal.UserID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Favorite not found", map[string]interface{}{
				"user_id":   principal.UserID,
				"recipe_id": recipeID,
			})
			return ErrFavoriteNotFound
		}
		return err
	}

	logger.Info("Recipe removed from favorites successfully", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})
	return nil
}
