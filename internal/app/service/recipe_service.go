package service

import (
	"context"
	"errors"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

// RecipeListQuery holds the list filters of GET /api/recipes
type RecipeListQuery struct {
	Page             util.Page
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService interface {
	Create(ctx context.Context, principal model.Principal, cmd *model.RecipeWriteCommand) (*model.RecipeReadView, error)
	Update(ctx context.Context, principal model.Principal, recipeID uint, cmd *model.RecipeWriteCommand, partial bool) (*model.RecipeReadView, error)
	Get(principal model.Principal, recipeID uint) (*model.RecipeReadView, error)
	List(principal model.Principal, query RecipeListQuery) ([]model.RecipeReadView, int64, error)
	Delete(ctx context.Context, principal model.Principal, recipeID uint) error
}

type recipeService struct {
	recipeRepo       repository.RecipeRepository
	favoriteRepo     repository.FavoriteRepository
	cartRepo         repository.ShoppingCartRepository
	subscriptionRepo repository.SubscriptionRepository
	validator        *RecipeValidator
	images           ImageService
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	favoriteRepo repository.FavoriteRepository,
	cartRepo repository.ShoppingCartRepository,
	subscriptionRepo repository.SubscriptionRepository,
	validator *RecipeValidator,
	images ImageService,
) RecipeService {
	return &recipeService{
		recipeRepo:       recipeRepo,
		favoriteRepo:     favoriteRepo,
		cartRepo:         cartRepo,
		subscriptionRepo: subscriptionRepo,
		validator:        validator,
		images:           images,
	}
}

func (s *recipeService) Create(ctx context.Context, principal model.Principal, cmd *model.RecipeWriteCommand) (*model.RecipeReadView, error) {
	if principal.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	logger.Info("Creating recipe", map[string]interface{}{
		"author_id": principal.UserID,
	})

	valid, err := s.validator.Validate(cmd, false, 0)
	if err != nil {
		logRecipeValidation(principal, 0, err)
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    principal.UserID,
		Name:        *valid.name,
		Text:        *valid.text,
		CookingTime: *valid.cookingTime,
	}

	if valid.image != nil {
		if recipe.Image, err = s.images.SaveRecipeImage(ctx, valid.image); err != nil {
			return nil, err
		}
	}

	if err := s.recipeRepo.Create(recipe, valid.tagIDs, valid.lines); err != nil {
		s.images.Remove(ctx, recipe.Image)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("name", msgNameTaken)
		}
		logger.Error("Failed to create recipe", err, map[string]interface{}{
			"author_id": principal.UserID,
		})
		return nil, err
	}

	logger.Info("Recipe created successfully", map[string]interface{}{
		"recipe_id": recipe.ID,
		"author_id": principal.UserID,
	})
	return s.Get(principal, recipe.ID)
}

func (s *recipeService) Update(ctx context.Context, principal model.Principal, recipeID uint, cmd *model.RecipeWriteCommand, partial bool) (*model.RecipeReadView, error) {
	if principal.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	logger.Info("Updating recipe", map[string]interface{}{
		"recipe_id": recipeID,
		"user_id":   principal.UserID,
		"partial":   partial,
	})

	recipe, err := s.findRecipe(recipeID)
	if err != nil {
		return nil, err
	}

	if !principal.IsAuthor(recipe.AuthorID) {
		logger.Warn("Recipe update rejected: not the author", map[string]interface{}{
			"recipe_id": recipeID,
			"author_id": recipe.AuthorID,
			"user_id":   principal.UserID,
		})
		return nil, ErrForbidden
	}

	valid, err := s.validator.Validate(cmd, partial, recipeID)
	if err != nil {
		logRecipeValidation(principal, recipeID, err)
		return nil, err
	}

	previousImage := recipe.Image
	if valid.name != nil {
		recipe.Name = *valid.name
	}
	if valid.text != nil {
		recipe.Text = *valid.text
	}
	if valid.cookingTime != nil {
		recipe.CookingTime = *valid.cookingTime
	}
	if valid.image != nil {
		if recipe.Image, err = s.images.SaveRecipeImage(ctx, valid.image); err != nil {
			return nil, err
		}
	}

	if err := s.recipeRepo.Update(recipe, valid.tagIDs, valid.lines); err != nil {
		if recipe.Image != previousImage {
			s.images.Remove(ctx, recipe.Image)
		}
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, newValidationError("name", msgNameTaken)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRecipeNotFound
		}
		logger.Error("Failed to update recipe", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return nil, err
	}

	if recipe.Image != previousImage {
		s.images.Remove(ctx, previousImage)
	}

	logger.Info("Recipe updated successfully", map[string]interface{}{
		"recipe_id": recipeID,
	})
	return s.Get(principal, recipeID)
}

func (s *recipeService) Get(principal model.Principal, recipeID uint) (*model.RecipeReadView, error) {
	recipe, err := s.findRecipe(recipeID)
	if err != nil {
		return nil, err
	}

	views, err := s.toReadViews(principal, []model.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *recipeService) List(principal model.Principal, query RecipeListQuery) ([]model.RecipeReadView, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: query.AuthorID,
		TagSlugs: query.TagSlugs,
		Offset:   query.Page.Offset(),
		Limit:    query.Page.Limit,
	}
	// Viewer-relative filters are ignored for anonymous viewers
	if !principal.IsAnonymous() {
		if query.IsFavorited {
			filter.FavoritedBy = principal.UserID
		}
		if query.IsInShoppingCart {
			filter.InShoppingCartOf = principal.UserID
		}
	}

	recipes, total, err := s.recipeRepo.List(filter)
	if err != nil {
		logger.Error("Failed to list recipes", err)
		return nil, 0, err
	}

	views, err := s.toReadViews(principal, recipes)
	if err != nil {
		return nil, 0, err
	}

	logger.Debug("Recipes listed", map[string]interface{}{
		"count": len(views),
		"total": total,
	})
	return views, total, nil
}

func (s *recipeService) Delete(ctx context.Context, principal model.Principal, recipeID uint) error {
	if principal.IsAnonymous() {
		return ErrUnauthenticated
	}

	recipe, err := s.findRecipe(recipeID)
	if err != nil {
		return err
	}

	if !principal.IsAuthor(recipe.AuthorID) {
		logger.Warn("Recipe delete rejected: not the author", map[string]interface{}{
			"recipe_id": recipeID,
			"user_id":   principal.UserID,
		})
		return ErrForbidden
	}

	if err := s.recipeRepo.Delete(recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		logger.Error("Failed to delete recipe", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return err
	}
	s.images.Remove(ctx, recipe.Image)

	logger.Info("Recipe deleted successfully", map[string]interface{}{
		"recipe_id": recipeID,
		"user_id":   principal.UserID,
	})
	return nil
}

func (s *recipeService) findRecipe(recipeID uint) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// toReadViews maps recipes to read views with the viewer's flags, loading
// each relation once for the whole batch
func (s *recipeService) toReadViews(principal model.Principal, recipes []model.Recipe) ([]model.RecipeReadView, error) {
	views := make([]model.RecipeReadView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.favoriteRepo.RecipeIDsIn(principal.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cartRepo.RecipeIDsIn(principal.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptionRepo.AuthorIDsIn(principal.UserID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range recipes {
		r := &recipes[i]
		views = append(views, model.NewRecipeReadView(r, model.RecipeViewerFlags{
			IsFavorited:        favorited[r.ID],
			IsInShoppingCart:   inCart[r.ID],
			IsSubscribedAuthor: subscribed[r.AuthorID],
		}))
	}
	return views, nil
}

func logRecipeValidation(principal model.Principal, recipeID uint, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		logger.Warn("Recipe validation failed", map[string]interface{}{
			"user_id":   principal.UserID,
			"recipe_id": recipeID,
			"field":     verr.Field,
			"reason":    verr.Message,
		})
		return
	}
	logger.Error("Recipe validation could not complete", err, map[string]interface{}{
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})
}
