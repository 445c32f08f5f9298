package controller

import (
	"net/http"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// recipeMembership is the add/remove pair shared by favorites and the shopping cart
type recipeMembership interface {
	Add(principal model.Principal, recipeID uint) (*model.RecipeShortView, error)
	Remove(principal model.Principal, recipeID uint) error
}

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

// AddFavorite POST /api/recipes/:id/favorite
func (ctrl *FavoriteController) AddFavorite(c *gin.Context) {
	addMembership(c, ctrl.favoriteService, "add favorite")
}

// RemoveFavorite DELETE /api/recipes/:id/favorite
func (ctrl *FavoriteController) RemoveFavorite(c *gin.Context) {
	removeMembership(c, ctrl.favoriteService, "remove favorite")
}

type ShoppingCartController struct {
	cartService service.ShoppingCartService
}

func NewShoppingCartController(cartService service.ShoppingCartService) *ShoppingCartController {
	return &ShoppingCartController{cartService: cartService}
}

// AddToCart POST /api/recipes/:id/shopping_cart
func (ctrl *ShoppingCartController) AddToCart(c *gin.Context) {
	addMembership(c, ctrl.cartService, "add to shopping cart")
}

// RemoveFromCart DELETE /api/recipes/:id/shopping_cart
func (ctrl *ShoppingCartController) RemoveFromCart(c *gin.Context) {
	removeMembership(c, ctrl.cartService, "remove from shopping cart")
}

func addMembership(c *gin.Context, membership recipeMembership, action string) {
	log := middleware.GetLoggerFromContext(c)

	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	recipe, err := membership.Add(principal, recipeID)
	if err != nil {
		respondServiceError(c, err, action)
		return
	}

	log.Info("Recipe membership added", map[string]interface{}{
		"action":    action,
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})
	c.JSON(http.StatusCreated, recipe)
}

func removeMembership(c *gin.Context, membership recipeMembership, action string) {
	log := middleware.GetLoggerFromContext(c)

	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := membership.Remove(principal, recipeID); err != nil {
		respondServiceError(c, err, action)
		return
	}

	log.Info("Recipe membership removed", map[string]interface{}{
		"action":    action,
		"user_id":   principal.UserID,
		"recipe_id": recipeID,
	})
	c.Status(http.StatusNoContent)
}
