package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecipeRepository_CreateAndFind(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	recipe := createRecipe(t, repo, f.alice.ID, "Omelette",
		[]uint{f.breakfast.ID, f.lunch.ID},
		line(f.eggs.ID, 2), line(f.milk.ID, 5))
	assert.NotZero(t, recipe.ID)
	assert.False(t, recipe.PubDate.IsZero())

	found, err := repo.FindByID(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", found.Name)
	assert.Equal(t, "alice", found.Author.Username)

	var tagSlugs []string
	for _, tag := range found.Tags() {
		tagSlugs = append(tagSlugs, tag.Slug)
	}
	assert.ElementsMatch(t, []string{"breakfast", "lunch"}, tagSlugs)

	amounts := map[string]int{}
	for _, l := range found.Ingredients {
		amounts[l.Ingredient.Name] = l.Amount
	}
	assert.Equal(t, map[string]int{"eggs": 2, "milk": 5}, amounts)
}

func TestRecipeRepository_Create_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		tagIDs []uint
		lines  []model.RecipeIngredient
	}{
		{
			name:   "Unknown ingredient",
			tagIDs: []uint{1},
			lines:  []model.RecipeIngredient{line(1, 2), line(9999, 1)},
		},
		{
			name:   "Unknown tag",
			tagIDs: []uint{1, 9999},
			lines:  []model.RecipeIngredient{line(1, 2)},
		},
		{
			name:   "Duplicate ingredient",
			tagIDs: []uint{1},
			lines:  []model.RecipeIngredient{line(1, 2), line(1, 3)},
		},
		{
			name:   "Zero amount",
			tagIDs: []uint{1},
			lines:  []model.RecipeIngredient{line(1, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB, f := setupRepositoryTest(t)
			repo := NewRecipeRepository(testDB)

			recipe := &model.Recipe{AuthorID: f.alice.ID, Name: "Broken", Text: "x", CookingTime: 5}
			err := repo.Create(recipe, tt.tagIDs, tt.lines)
			assert.Error(t, err)

			assert.Zero(t, countRows(t, testDB, "recipes"))
			assert.Zero(t, countRows(t, testDB, "recipe_ingredients"))
			assert.Zero(t, countRows(t, testDB, "recipe_tags"))
		})
	}
}

func TestRecipeRepository_Create_DuplicateName(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	createRecipe(t, repo, f.alice.ID, "Pancakes", []uint{f.breakfast.ID}, line(f.milk.ID, 100))

	dup := &model.Recipe{AuthorID: f.bob.ID, Name: "Pancakes", Text: "x", CookingTime: 5}
	err := repo.Create(dup, []uint{f.breakfast.ID}, []model.RecipeIngredient{line(f.eggs.ID, 1)})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, int64(1), countRows(t, testDB, "recipes"))
}

func TestRecipeRepository_Update_ReplacesCollections(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	recipe := createRecipe(t, repo, f.alice.ID, "Omelette",
		[]uint{f.breakfast.ID},
		line(f.eggs.ID, 2), line(f.milk.ID, 5))

	recipe.Name = "Salted omelette"
	recipe.CookingTime = 12
	err := repo.Update(recipe, []uint{f.lunch.ID}, []model.RecipeIngredient{line(f.saltGrams.ID, 3)})
	require.NoError(t, err)

	found, err := repo.FindByID(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salted omelette", found.Name)
	assert.Equal(t, 12, found.CookingTime)
	require.Len(t, found.TagLinks, 1)
	assert.Equal(t, f.lunch.ID, found.TagLinks[0].TagID)
	require.Len(t, found.Ingredients, 1)
	assert.Equal(t, f.saltGrams.ID, found.Ingredients[0].IngredientID)
	assert.Equal(t, 3, found.Ingredients[0].Amount)
	assert.Equal(t, int64(1), countRows(t, testDB, "recipe_ingredients"))
}

func TestRecipeRepository_Update_KeepsUnsuppliedCollections(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	recipe := createRecipe(t, repo, f.alice.ID, "Omelette",
		[]uint{f.breakfast.ID, f.lunch.ID},
		line(f.eggs.ID, 2))

	recipe.Text = "Whisk harder"
	require.NoError(t, repo.Update(recipe, nil, nil))

	found, err := repo.FindByID(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Whisk harder", found.Text)
	assert.Len(t, found.TagLinks, 2)
	assert.Len(t, found.Ingredients, 1)
}

func TestRecipeRepository_Update_NotFound(t *testing.T) {
	testDB, _ := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	err := repo.Update(&model.Recipe{ID: 404, Name: "Ghost", Text: "x", CookingTime: 1}, nil, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecipeRepository_ExistsByName(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	recipe := createRecipe(t, repo, f.alice.ID, "Borscht", []uint{f.lunch.ID}, line(f.saltGrams.ID, 4))

	exists, err := repo.ExistsByName("Borscht", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName("Borscht", recipe.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRecipeRepository_List(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	first := createRecipe(t, repo, f.alice.ID, "Porridge", []uint{f.breakfast.ID}, line(f.milk.ID, 200))
	second := createRecipe(t, repo, f.bob.ID, "Soup", []uint{f.lunch.ID}, line(f.saltGrams.ID, 5))
	third := createRecipe(t, repo, f.alice.ID, "Scrambled eggs", []uint{f.breakfast.ID, f.lunch.ID}, line(f.eggs.ID, 3))

	// Spread publication dates so ordering does not depend on insert timing
	base := time.Now().Add(-time.Hour)
	for i, r := range []*model.Recipe{first, second, third} {
		require.NoError(t, testDB.Model(&model.Recipe{}).Where("id = ?", r.ID).
			Update("pub_date", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	require.NoError(t, testDB.Create(&model.Favorite{UserID: f.bob.ID, RecipeID: first.ID}).Error)
	require.NoError(t, testDB.Create(&model.ShoppingCartItem{UserID: f.bob.ID, RecipeID: third.ID}).Error)

	ids := func(recipes []model.Recipe) []uint {
		out := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name      string
		filter    RecipeFilter
		wantIDs   []uint
		wantTotal int64
	}{
		{name: "All newest first", filter: RecipeFilter{Limit: 10}, wantIDs: []uint{third.ID, second.ID, first.ID}, wantTotal: 3},
		{name: "Paged", filter: RecipeFilter{Offset: 1, Limit: 1}, wantIDs: []uint{second.ID}, wantTotal: 3},
		{name: "By author", filter: RecipeFilter{AuthorID: f.alice.ID, Limit: 10}, wantIDs: []uint{third.ID, first.ID}, wantTotal: 2},
		{name: "By tag", filter: RecipeFilter{TagSlugs: []string{"lunch"}, Limit: 10}, wantIDs: []uint{third.ID, second.ID}, wantTotal: 2},
		{name: "Any of tags", filter: RecipeFilter{TagSlugs: []string{"lunch", "breakfast"}, Limit: 10}, wantIDs: []uint{third.ID, second.ID, first.ID}, wantTotal: 3},
		{name: "Favorited", filter: RecipeFilter{FavoritedBy: f.bob.ID, Limit: 10}, wantIDs: []uint{first.ID}, wantTotal: 1},
		{name: "In cart", filter: RecipeFilter{InShoppingCartOf: f.bob.ID, Limit: 10}, wantIDs: []uint{third.ID}, wantTotal: 1},
		{name: "Unknown tag", filter: RecipeFilter{TagSlugs: []string{"dessert"}, Limit: 10}, wantIDs: []uint{}, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, total, err := repo.List(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantIDs, ids(recipes))
		})
	}
}

func TestRecipeRepository_FindByAuthor(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	createRecipe(t, repo, f.alice.ID, "Toast", []uint{f.breakfast.ID}, line(f.eggs.ID, 1))
	createRecipe(t, repo, f.alice.ID, "French toast", []uint{f.breakfast.ID}, line(f.eggs.ID, 2))
	createRecipe(t, repo, f.bob.ID, "Stew", []uint{f.lunch.ID}, line(f.saltGrams.ID, 1))

	limited, err := repo.FindByAuthor(f.alice.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	all, err := repo.FindByAuthor(f.alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := repo.CountByAuthor(f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRecipeRepository_Delete(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewRecipeRepository(testDB)

	recipe := createRecipe(t, repo, f.alice.ID, "Omelette", []uint{f.breakfast.ID}, line(f.eggs.ID, 2))
	require.NoError(t, testDB.Create(&model.Favorite{UserID: f.bob.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, testDB.Create(&model.ShoppingCartItem{UserID: f.bob.ID, RecipeID: recipe.ID}).Error)

	require.NoError(t, repo.Delete(recipe.ID))

	for _, table := range []string{"recipes", "recipe_tags", "recipe_ingredients", "favorites", "shopping_cart_items"} {
		assert.Zero(t, countRows(t, testDB, table), table)
	}

	err := repo.Delete(recipe.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
