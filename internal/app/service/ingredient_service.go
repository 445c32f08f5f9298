package service

import (
	"errors"
	"strings"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"gorm.io/gorm"
)

type IngredientService interface {
	SearchIngredients(namePrefix string) ([]model.Ingredient, error)
	GetIngredient(id uint) (*model.Ingredient, error)
}

type ingredientService struct {
	ingredientRepo repository.IngredientRepository
}

func NewIngredientService(ingredientRepo repository.IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepo: ingredientRepo}
}

// SearchIngredients matches a case-insensitive name prefix. An empty prefix lists everything.
func (s *ingredientService) SearchIngredients(namePrefix string) ([]model.Ingredient, error) {
	return s.ingredientRepo.Search(strings.TrimSpace(namePrefix))
}

func (s *ingredientService) GetIngredient(id uint) (*model.Ingredient, error) {
	ingredient, err := s.ingredientRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ingredient, nil
}
