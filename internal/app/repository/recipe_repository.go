package repository

import (
	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows recipe listings. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string // any of
	FavoritedBy      uint
	InShoppingCartOf uint
	Offset           int
	Limit            int
}

type RecipeRepository interface {
	Create(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error
	Update(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error
	FindByID(id uint) (*model.Recipe, error)
	ExistsByName(name string, excludeID uint) (bool, error)
	List(filter RecipeFilter) ([]model.Recipe, int64, error)
	FindByAuthor(authorID uint, limit int) ([]model.Recipe, error)
	CountByAuthor(authorID uint) (int64, error)
	Delete(id uint) error
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("TagLinks", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_tags.tag_id ASC")
		}).
		Preload("TagLinks.Tag").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient")
}

// Create inserts the recipe row, its tag links and its ingredient lines in
// one transaction. Nothing is persisted if any insert fails.
func (r *recipeRepository) Create(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error {
	logger.Debug("Creating recipe in database", map[string]interface{}{
		"author_id":   recipe.AuthorID,
		"name":        recipe.Name,
		"tags":        len(tagIDs),
		"ingredients": len(lines),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := replaceTagLinks(tx, recipe.ID, tagIDs); err != nil {
			return err
		}
		return replaceIngredientLines(tx, recipe.ID, lines)
	})
	if err != nil {
		logger.Error("Failed to create recipe in database", err, map[string]interface{}{
			"author_id": recipe.AuthorID,
			"name":      recipe.Name,
		})
		return err
	}

	logger.Debug("Recipe created in database", map[string]interface{}{
		"recipe_id": recipe.ID,
		"author_id": recipe.AuthorID,
	})
	return nil
}

// Update writes the scalar columns of recipe and, when non-nil, replaces
// the whole tag set and the whole ingredient line set in one transaction.
func (r *recipeRepository) Update(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error {
	logger.Debug("Updating recipe in database", map[string]interface{}{
		"recipe_id":           recipe.ID,
		"replace_tags":        tagIDs != nil,
		"replace_ingredients": lines != nil,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Recipe{ID: recipe.ID}).
			Select("name", "text", "cooking_time", "image").
			Updates(map[string]interface{}{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
				"image":        recipe.Image,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if tagIDs != nil {
			if err := replaceTagLinks(tx, recipe.ID, tagIDs); err != nil {
				return err
			}
		}
		if lines != nil {
			if err := replaceIngredientLines(tx, recipe.ID, lines); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to update recipe in database", err, map[string]interface{}{
			"recipe_id": recipe.ID,
		})
		return err
	}

	logger.Debug("Recipe updated in database", map[string]interface{}{
		"recipe_id": recipe.ID,
	})
	return nil
}

func replaceTagLinks(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]model.RecipeTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, model.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	return tx.Omit(clause.Associations).Create(&links).Error
}

func replaceIngredientLines(tx *gorm.DB, recipeID uint, lines []model.RecipeIngredient) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	rows := make([]model.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, model.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (r *recipeRepository) FindByID(id uint) (*model.Recipe, error) {
	logger.Debug("Finding recipe by ID in database", map[string]interface{}{
		"recipe_id": id,
	})

	var recipe model.Recipe
	if err := r.preloadRecipe(r.db).First(&recipe, id).Error; err != nil {
		logger.Error("Failed to find recipe by ID in database", err, map[string]interface{}{
			"recipe_id": id,
		})
		return nil, err
	}

	logger.Debug("Recipe found by ID in database", map[string]interface{}{
		"recipe_id":   recipe.ID,
		"tags":        len(recipe.TagLinks),
		"ingredients": len(recipe.Ingredients),
	})
	return &recipe, nil
}

// ExistsByName reports whether another recipe (not excludeID) uses name
func (r *recipeRepository) ExistsByName(name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.Recipe{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check recipe name in database", err, map[string]interface{}{
			"name": name,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) filtered(filter RecipeFilter) *gorm.DB {
	query := r.db.Model(&model.Recipe{})

	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.FavoritedBy != 0 {
		favorited := r.db.Model(&model.Favorite{}).
			Select("recipe_id").
			Where("user_id = ?", filter.FavoritedBy)
		query = query.Where("recipes.id IN (?)", favorited)
	}
	if filter.InShoppingCartOf != 0 {
		inCart := r.db.Model(&model.ShoppingCartItem{}).
			Select("recipe_id").
			Where("user_id = ?", filter.InShoppingCartOf)
		query = query.Where("recipes.id IN (?)", inCart)
	}
	return query
}

// List returns one page of recipes, newest first, and the filtered total
func (r *recipeRepository) List(filter RecipeFilter) ([]model.Recipe, int64, error) {
	logger.Debug("Listing recipes in database", map[string]interface{}{
		"author_id":           filter.AuthorID,
		"tags":                filter.TagSlugs,
		"favorited_by":        filter.FavoritedBy,
		"in_shopping_cart_of": filter.InShoppingCartOf,
		"offset":              filter.Offset,
		"limit":               filter.Limit,
	})

	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count recipes in database", err)
		return nil, 0, err
	}

	var recipes []model.Recipe
	query := r.preloadRecipe(r.filtered(filter)).
		Order("recipes.pub_date DESC").
		Order("recipes.id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		logger.Error("Failed to list recipes in database", err)
		return nil, 0, err
	}

	logger.Debug("Recipes listed from database", map[string]interface{}{
		"count": len(recipes),
		"total": total,
	})
	return recipes, total, nil
}

// FindByAuthor returns the newest recipes of an author. limit <= 0 returns all.
func (r *recipeRepository) FindByAuthor(authorID uint, limit int) ([]model.Recipe, error) {
	query := r.db.Where("author_id = ?", authorID).
		Order("pub_date DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		logger.Error("Failed to find recipes by author in database", err, map[string]interface{}{
			"author_id": authorID,
		})
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthor(authorID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		logger.Error("Failed to count recipes by author in database", err, map[string]interface{}{
			"author_id": authorID,
		})
		return 0, err
	}
	return count, nil
}

// Delete removes a recipe with its lines, tag links and memberships
func (r *recipeRepository) Delete(id uint) error {
	logger.Debug("Deleting recipe from database", map[string]interface{}{
		"recipe_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&model.RecipeTag{},
			&model.RecipeIngredient{},
			&model.Favorite{},
			&model.ShoppingCartItem{},
		}
		for _, child := range children {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&model.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete recipe from database", err, map[string]interface{}{
			"recipe_id": id,
		})
		return err
	}

	logger.Debug("Recipe deleted from database", map[string]interface{}{
		"recipe_id": id,
	})
	return nil
}
