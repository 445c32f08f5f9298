package controller

import (
	"net/http"

	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/gin-gonic/gin"
)

type IngredientController struct {
	ingredientService service.IngredientService
}

func NewIngredientController(ingredientService service.IngredientService) *IngredientController {
	return &IngredientController{ingredientService: ingredientService}
}

// ListIngredients searches by name prefix, unpaginated
// GET /api/ingredients?name=
func (ctrl *IngredientController) ListIngredients(c *gin.Context) {
	ingredients, err := ctrl.ingredientService.SearchIngredients(c.Query("name"))
	if err != nil {
		respondServiceError(c, err, "search ingredients")
		return
	}

	c.JSON(http.StatusOK, ingredients)
}

// GetIngredient GET /api/ingredients/:id
func (ctrl *IngredientController) GetIngredient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ingredient, err := ctrl.ingredientService.GetIngredient(id)
	if err != nil {
		respondServiceError(c, err, "get ingredient")
		return
	}

	c.JSON(http.StatusOK, ingredient)
}
