package service

import (
	"errors"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrShoppingCartItemAlreadyExists = errors.New("recipe already in shopping cart")
	ErrShoppingCartItemNotFound      = errors.New("recipe is not in shopping cart")
)

type ShoppingCartService interface {
	Add(principal model.Principal, recipeID uint) (*model.RecipeShortView, error)
	Remove(principal model.Principal, recipeID uint) error
}

type shoppingCartService struct {
	cartRepo   repository.ShoppingCartRepository
	recipeRepo repository.RecipeRepository
}

func NewShoppingCartService(
	cartRepo repository.ShoppingCartRepository,
	recipeRepo repository.RecipeRepository,
) ShoppingCartService {
	return &shoppingCartService{
		cartRepo:   cartRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *shoppingCartService) Add(principal model.Principal, recipeID uint) (*model.RecipeShortView, error) {
	if principal.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	logger.Info("Adding recipe to shopping cart", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})

	recipe, err := s.recipeRepo.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to shopping cart: recipe not found", map[string]interface{}{
				"user_id":   principal.UserID,
				"recipe_id": recipeID,
			})
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	exists, err := s.cartRepo.Exists(principal.UserID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Recipe already in shopping cart", map[string]interface{}{
			"user_id":   principal.UserID,
			"recipe_id": recipeID,
		})
		return nil, ErrShoppingCartItemAlreadyExists
	}

	// The unique index is the real guard; a concurrent insert lands here
	if err := s.cartRepo.Create(&model.ShoppingCartItem{UserID: principal.UserID, RecipeID: recipeID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrShoppingCartItemAlreadyExists
		}
		logger.Error("Failed to add recipe to shopping cart", err, map[string]interface{}{
			"user_id":   principal.UserID,
			"recipe_id": recipeID,
		})
		return nil, err
	}

	logger.Info("Recipe added to shopping cart successfully", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})
	view := model.NewRecipeShortView(recipe)
	return &view, nil
}

func (s *shoppingCartService) Remove(principal model.Principal, recipeID uint) error {
	if principal.IsAnonymous() {
		return ErrUnauthenticated
	}

	logger.Info("Removing recipe from shopping cart", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})

	if err := s.cartRepo.Delete(principal.UserID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Shopping cart item not found", map[string]interface{}{
				"user_id":   principal.UserID,
				"recipe_id": recipeID,
			})
			return ErrShoppingCartItemNotFound
		}
		return err
	}

	logger.Info("Recipe removed from shopping cart successfully", map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})
	return nil
}
