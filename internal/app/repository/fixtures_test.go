package repository

import (
	"testing"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixtures struct {
	alice       *model.User
	bob         *model.User
	breakfast   *model.Tag
	lunch       *model.Tag
	eggs        *model.Ingredient
	milk        *model.Ingredient
	saltGrams   *model.Ingredient
	saltPinches *model.Ingredient
}

func setupRepositoryTest(t *testing.T) (*gorm.DB, *fixtures) {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	f := &fixtures{
		alice:       &model.User{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "Smith", PasswordHash: "hash", Role: model.RoleUser},
		bob:         &model.User{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "Jones", PasswordHash: "hash", Role: model.RoleUser},
		breakfast:   &model.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		lunch:       &model.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
		eggs:        &model.Ingredient{Name: "eggs", MeasurementUnit: "pcs"},
		milk:        &model.Ingredient{Name: "milk", MeasurementUnit: "ml"},
		saltGrams:   &model.Ingredient{Name: "salt", MeasurementUnit: "g"},
		saltPinches: &model.Ingredient{Name: "salt", MeasurementUnit: "pinch"},
	}
	for _, row := range []interface{}{f.alice, f.bob, f.breakfast, f.lunch, f.eggs, f.milk, f.saltGrams, f.saltPinches} {
		require.NoError(t, testDB.Create(row).Error)
	}
	return testDB, f
}

// createRecipe persists a recipe through the repository with the given lines
func createRecipe(t *testing.T, repo RecipeRepository, authorID uint, name string, tagIDs []uint, lines ...model.RecipeIngredient) *model.Recipe {
	t.Helper()

	recipe := &model.Recipe{AuthorID: authorID, Name: name, Text: "Cook it", CookingTime: 10}
	require.NoError(t, repo.Create(recipe, tagIDs, lines))
	return recipe
}

func line(ingredientID uint, amount int) model.RecipeIngredient {
	return model.RecipeIngredient{IngredientID: ingredientID, Amount: amount}
}

func countRows(t *testing.T, testDB *gorm.DB, table string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, testDB.Table(table).Count(&count).Error)
	return count
}
