package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 1x1 transparent PNG
const pixelPNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// memoryStorage is an in-memory storage.ImageStorage
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "/media/" + key
	s.objects[url] = data
	return url, nil
}

func (s *memoryStorage) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, url)
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *memoryStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type serviceFixture struct {
	db      *gorm.DB
	storage *memoryStorage

	recipes       RecipeService
	favorites     FavoriteService
	carts         ShoppingCartService
	subscriptions SubscriptionService
	shoppingList  ShoppingListService
	auth          AuthService

	alice *model.User
	bob   *model.User

	breakfast model.Tag
	lunch     model.Tag

	eggs        model.Ingredient
	milk        model.Ingredient
	saltGrams   model.Ingredient
	saltPinches model.Ingredient
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.Seed(testDB))

	userRepo := repository.NewUserRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	ingredientRepo := repository.NewIngredientRepository(testDB)
	recipeRepo := repository.NewRecipeRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	cartRepo := repository.NewShoppingCartRepository(testDB)
	subscriptionRepo := repository.NewSubscriptionRepository(testDB)
	tokenStore := NewDBTokenStore(repository.NewRevokedTokenRepository(testDB))

	mem := newMemoryStorage()
	f := &serviceFixture{
		db:      testDB,
		storage: mem,
		recipes: NewRecipeService(
			recipeRepo, favoriteRepo, cartRepo, subscriptionRepo,
			NewRecipeValidator(recipeRepo, tagRepo, ingredientRepo),
			NewImageService(mem),
		),
		favorites:     NewFavoriteService(favoriteRepo, recipeRepo),
		carts:         NewShoppingCartService(cartRepo, recipeRepo),
		subscriptions: NewSubscriptionService(subscriptionRepo, userRepo, recipeRepo),
		shoppingList:  NewShoppingListService(cartRepo),
		auth:          NewAuthService(userRepo, subscriptionRepo, tokenStore, "test-jwt-secret", 15*time.Minute, 24*time.Hour),
	}

	f.alice = &model.User{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "Smith", PasswordHash: "hash", Role: model.RoleUser}
	f.bob = &model.User{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "Jones", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, testDB.Create(f.alice).Error)
	require.NoError(t, testDB.Create(f.bob).Error)

	require.NoError(t, testDB.Where("slug = ?", "breakfast").First(&f.breakfast).Error)
	require.NoError(t, testDB.Where("slug = ?", "lunch").First(&f.lunch).Error)
	require.NoError(t, testDB.Where("name = ? AND measurement_unit = ?", "eggs", "pcs").First(&f.eggs).Error)
	require.NoError(t, testDB.Where("name = ? AND measurement_unit = ?", "milk", "ml").First(&f.milk).Error)
	require.NoError(t, testDB.Where("name = ? AND measurement_unit = ?", "salt", "g").First(&f.saltGrams).Error)
	require.NoError(t, testDB.Where("name = ? AND measurement_unit = ?", "salt", "pinch").First(&f.saltPinches).Error)

	return f
}

func as(u *model.User) model.Principal {
	return model.Principal{UserID: u.ID, Role: u.Role}
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func amount(ingredient model.Ingredient, n int) model.IngredientAmount {
	return model.IngredientAmount{ID: ingredient.ID, Amount: n}
}

// omelette is a complete, valid create command
func (f *serviceFixture) omelette() *model.RecipeWriteCommand {
	return &model.RecipeWriteCommand{
		Name:        strPtr("Omelette"),
		Text:        strPtr("Beat the eggs with milk and fry."),
		CookingTime: intPtr(10),
		Tags:        []uint{f.breakfast.ID},
		Ingredients: []model.IngredientAmount{amount(f.eggs, 3), amount(f.milk, 50)},
	}
}

func (f *serviceFixture) createRecipe(t *testing.T, author *model.User, name string, lines ...model.IngredientAmount) *model.RecipeReadView {
	t.Helper()
	cmd := f.omelette()
	cmd.Name = strPtr(name)
	if len(lines) > 0 {
		cmd.Ingredients = lines
	}
	view, err := f.recipes.Create(context.Background(), as(author), cmd)
	require.NoError(t, err)
	return view
}

func (f *serviceFixture) countRows(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

func lines(text string) []string {
	return strings.Split(text, "\n")
}
