package controller

import (
	"net/http"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type RecipeController struct {
	recipeService service.RecipeService
	collector     *metrics.Collector
	pageSize      int
}

// NewRecipeController creates the recipe handlers. collector may be nil.
func NewRecipeController(recipeService service.RecipeService, collector *metrics.Collector, pageSize int) *RecipeController {
	return &RecipeController{
		recipeService: recipeService,
		collector:     collector,
		pageSize:      pageSize,
	}
}

// ListRecipes returns one page of recipes, newest first
// GET /api/recipes?page=&limit=&author=&tags=&is_favorited=&is_in_shopping_cart=
func (ctrl *RecipeController) ListRecipes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := service.RecipeListQuery{
		Page:             util.ParsePage(c.Query("page"), c.Query("limit"), ctrl.pageSize),
		AuthorID:         uint(parseLimitQuery(c, "author")),
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      c.Query("is_favorited") == "1",
		IsInShoppingCart: c.Query("is_in_shopping_cart") == "1",
	}

	recipes, total, err := ctrl.recipeService.List(middleware.GetPrincipal(c), query)
	if err != nil {
		respondServiceError(c, err, "list recipes")
		return
	}

	log.Debug("Recipes listed", map[string]interface{}{
		"count": len(recipes),
		"total": total,
	})
	c.JSON(http.StatusOK, newPagedResult(c, query.Page, total, recipes))
}

// GetRecipe returns one recipe
// GET /api/recipes/:id
func (ctrl *RecipeController) GetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := ctrl.recipeService.Get(middleware.GetPrincipal(c), id)
	if err != nil {
		respondServiceError(c, err, "get recipe")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe creates a recipe with its ingredients and tags
// POST /api/recipes
func (ctrl *RecipeController) CreateRecipe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var cmd model.RecipeWriteCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		log.Warn("Invalid recipe payload", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	recipe, err := ctrl.recipeService.Create(c.Request.Context(), middleware.GetPrincipal(c), &cmd)
	if err != nil {
		respondServiceError(c, err, "create recipe")
		return
	}

	ctrl.recordWrite("create")
	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe replaces a recipe; every field except image is required
// PUT /api/recipes/:id
func (ctrl *RecipeController) UpdateRecipe(c *gin.Context) {
	ctrl.update(c, false)
}

// PatchRecipe changes only the supplied fields
// PATCH /api/recipes/:id
func (ctrl *RecipeController) PatchRecipe(c *gin.Context) {
	ctrl.update(c, true)
}

func (ctrl *RecipeController) update(c *gin.Context, partial bool) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var cmd model.RecipeWriteCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		log.Warn("Invalid recipe payload", map[string]interface{}{
			"recipe_id": id,
			"error":     err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	recipe, err := ctrl.recipeService.Update(c.Request.Context(), middleware.GetPrincipal(c), id, &cmd, partial)
	if err != nil {
		respondServiceError(c, err, "update recipe")
		return
	}

	ctrl.recordWrite("update")
	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe removes a recipe
// DELETE /api/recipes/:id
func (ctrl *RecipeController) DeleteRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.recipeService.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondServiceError(c, err, "delete recipe")
		return
	}

	ctrl.recordWrite("delete")
	c.Status(http.StatusNoContent)
}

func (ctrl *RecipeController) recordWrite(operation string) {
	if ctrl.collector != nil {
		ctrl.collector.RecordRecipeWrite(operation)
	}
}
