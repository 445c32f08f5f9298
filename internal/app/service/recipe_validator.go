package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/util"
)

const (
	minRecipeNameLength = 3
	maxRecipeNameLength = 100
	minCookingTime      = 1
	minIngredientAmount = 1
)

const (
	msgRequired  = "This field is required"
	msgNameTaken = "A recipe with this name already exists"
)

// validatedRecipe is a RecipeWriteCommand that passed validation. Nil
// slices and pointers are fields that were not supplied.
type validatedRecipe struct {
	name        *string
	text        *string
	cookingTime *int
	image       *util.DecodedImage
	tagIDs      []uint
	lines       []model.RecipeIngredient
}

// RecipeValidator checks a RecipeWriteCommand field by field in a fixed
// order (name, tags, ingredients, cooking_time, text, image) and reports
// only the first violated rule.
type RecipeValidator struct {
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
}

func NewRecipeValidator(
	recipeRepo repository.RecipeRepository,
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
) *RecipeValidator {
	return &RecipeValidator{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
	}
}

// Validate checks cmd. With partial set only supplied fields are checked;
// otherwise every field except image is required. recipeID excludes the
// recipe being updated from the name uniqueness check.
func (v *RecipeValidator) Validate(cmd *model.RecipeWriteCommand, partial bool, recipeID uint) (*validatedRecipe, error) {
	out := &validatedRecipe{}

	if cmd.Name != nil || !partial {
		name, err := v.validateName(cmd.Name, recipeID)
		if err != nil {
			return nil, err
		}
		out.name = &name
	}

	if cmd.Tags != nil || !partial {
		tagIDs, err := v.validateTags(cmd.Tags)
		if err != nil {
			return nil, err
		}
		out.tagIDs = tagIDs
	}

	if cmd.Ingredients != nil || !partial {
		lines, err := v.validateIngredients(cmd.Ingredients)
		if err != nil {
			return nil, err
		}
		out.lines = lines
	}

	if cmd.CookingTime != nil || !partial {
		if cmd.CookingTime == nil {
			return nil, newValidationError("cooking_time", msgRequired)
		}
		if *cmd.CookingTime < minCookingTime {
			return nil, newValidationError("cooking_time", "Cooking time must be at least 1 minute")
		}
		out.cookingTime = cmd.CookingTime
	}

	if cmd.Text != nil || !partial {
		if cmd.Text == nil || strings.TrimSpace(*cmd.Text) == "" {
			return nil, newValidationError("text", msgRequired)
		}
		out.text = cmd.Text
	}

	if cmd.Image != nil && *cmd.Image != "" {
		img, err := util.DecodeDataURI(*cmd.Image)
		if err != nil {
			return nil, newValidationError("image", "Upload a valid image as a base64 data URI")
		}
		out.image = img
	}

	return out, nil
}

func (v *RecipeValidator) validateName(name *string, recipeID uint) (string, error) {
	if name == nil {
		return "", newValidationError("name", msgRequired)
	}

	trimmed := strings.TrimSpace(*name)
	length := utf8.RuneCountInString(trimmed)
	if length < minRecipeNameLength {
		return "", newValidationError("name", "Recipe name must contain at least 3 characters")
	}
	if length > maxRecipeNameLength {
		return "", newValidationError("name", "Recipe name must contain at most 100 characters")
	}

	exists, err := v.recipeRepo.ExistsByName(trimmed, recipeID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", newValidationError("name", msgNameTaken)
	}
	return trimmed, nil
}

func (v *RecipeValidator) validateTags(tagIDs []uint) ([]uint, error) {
	if len(tagIDs) == 0 {
		return nil, newValidationError("tags", "At least one tag must be selected")
	}

	seen := make(map[uint]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			return nil, newValidationError("tags", fmt.Sprintf("Tag with id=%d is repeated", id))
		}
		seen[id] = true
	}

	found, err := v.tagRepo.FindByIDs(tagIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(tagIDs) {
		existing := make(map[uint]bool, len(found))
		for _, tag := range found {
			existing[tag.ID] = true
		}
		for _, id := range tagIDs {
			if !existing[id] {
				return nil, newValidationError("tags", fmt.Sprintf("Tag with id=%d does not exist", id))
			}
		}
	}

	return tagIDs, nil
}

func (v *RecipeValidator) validateIngredients(items []model.IngredientAmount) ([]model.RecipeIngredient, error) {
	if items == nil {
		return nil, newValidationError("ingredients", msgRequired)
	}
	if len(items) == 0 {
		return nil, newValidationError("ingredients", "At least one ingredient must be added")
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	found, err := v.ingredientRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	existing := make(map[uint]bool, len(found))
	for _, ingredient := range found {
		existing[ingredient.ID] = true
	}
	for _, item := range items {
		if !existing[item.ID] {
			return nil, newValidationError("ingredients", fmt.Sprintf("Ingredient with id=%d does not exist", item.ID))
		}
	}

	for _, item := range items {
		if item.Amount < minIngredientAmount {
			return nil, newValidationError("ingredients", "Ingredient amount must be at least 1")
		}
	}

	seen := make(map[uint]bool, len(items))
	lines := make([]model.RecipeIngredient, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return nil, newValidationError("ingredients", fmt.Sprintf("Ingredient with id=%d is repeated", item.ID))
		}
		seen[item.ID] = true
		lines = append(lines, model.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
	}

	return lines, nil
}
