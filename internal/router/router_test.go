package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foodgram/foodgram-backend/config"
	"github.com/foodgram/foodgram-backend/internal/app/controller"
	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/db"
	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Sup3rSecret!"

type apiFixture struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine

	breakfast model.Tag
	eggs      model.Ingredient
	milk      model.Ingredient
}

func setupAPITest(t *testing.T) *apiFixture {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.Seed(testDB))
	require.NoError(t, controller.RegisterValidators())

	cfg := &config.Config{
		Server:    config.ServerConfig{GinMode: gin.TestMode},
		JWT:       config.JWTConfig{Secret: "router-test-secret", AccessTokenExpiry: 15 * time.Minute, RefreshTokenExpiry: time.Hour},
		Media:     config.MediaConfig{Root: t.TempDir(), URL: "/media"},
		RateLimit: config.RateLimitConfig{AuthPerMinute: 1000},
		API:       config.APIConfig{PageSize: 6},
	}

	userRepo := repository.NewUserRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	ingredientRepo := repository.NewIngredientRepository(testDB)
	recipeRepo := repository.NewRecipeRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	cartRepo := repository.NewShoppingCartRepository(testDB)
	subscriptionRepo := repository.NewSubscriptionRepository(testDB)
	tokenStore := service.NewDBTokenStore(repository.NewRevokedTokenRepository(testDB))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	authService := service.NewAuthService(userRepo, subscriptionRepo, tokenStore, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	recipeService := service.NewRecipeService(
		recipeRepo, favoriteRepo, cartRepo, subscriptionRepo,
		service.NewRecipeValidator(recipeRepo, tagRepo, ingredientRepo),
		service.NewImageService(storage.NewLocalStorage(cfg.Media.Root, cfg.Media.URL)),
	)

	controllers := Controllers{
		Users:         controller.NewUserController(authService, cfg.API.PageSize),
		Recipes:       controller.NewRecipeController(recipeService, collector, cfg.API.PageSize),
		Favorites:     controller.NewFavoriteController(service.NewFavoriteService(favoriteRepo, recipeRepo)),
		ShoppingCart:  controller.NewShoppingCartController(service.NewShoppingCartService(cartRepo, recipeRepo)),
		ShoppingList:  controller.NewShoppingListController(service.NewShoppingListService(cartRepo), collector),
		Subscriptions: controller.NewSubscriptionController(service.NewSubscriptionService(subscriptionRepo, userRepo, recipeRepo), cfg.API.PageSize),
		Tags:          controller.NewTagController(service.NewTagService(tagRepo)),
		Ingredients:   controller.NewIngredientController(service.NewIngredientService(ingredientRepo)),
	}

	r := NewRouter(
		controllers,
		middleware.NewAuthMiddleware(cfg.JWT.Secret, tokenStore),
		middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, collector),
		collector,
		registry,
		cfg,
	)

	f := &apiFixture{t: t, db: testDB, engine: r.Setup()}
	require.NoError(t, testDB.Where("slug = ?", "breakfast").First(&f.breakfast).Error)
	require.NoError(t, testDB.Where("name = ? AND measurement_unit = ?", "eggs", "pcs").First(&f.eggs).Error)
	require.NoError(t, testDB.Where("name = ? AND measurement_unit = ?", "milk", "ml").First(&f.milk).Error)
	return f
}

func (f *apiFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signUp registers a user and returns the id and an access token
func (f *apiFixture) signUp(username string) (uint, string) {
	f.t.Helper()

	email := username + "@example.com"
	w := f.do(http.MethodPost, "/api/users", "", gin.H{
		"email":      email,
		"username":   username,
		"first_name": strings.ToUpper(username[:1]) + username[1:],
		"last_name":  "Tester",
		"password":   testPassword,
	})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	id := uint(decode(f.t, w)["id"].(float64))

	w = f.do(http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	return id, decode(f.t, w)["auth_token"].(string)
}

func (f *apiFixture) omelette() gin.H {
	return gin.H{
		"name":         "Omelette",
		"text":         "Whisk and fry.",
		"cooking_time": 10,
		"tags":         []uint{f.breakfast.ID},
		"ingredients": []gin.H{
			{"id": f.eggs.ID, "amount": 3},
			{"id": f.milk.ID, "amount": 50},
		},
	}
}

func TestRouter_Health(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_Catalogs(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tags []model.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	assert.Len(t, tags, 5)

	w = f.do(http.MethodGet, "/api/ingredients?name=SAL", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []model.Ingredient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 2)
	for _, ingredient := range ingredients {
		assert.Equal(t, "salt", ingredient.Name)
	}

	w = f.do(http.MethodGet, "/api/tags/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/ingredients/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RegisterValidation(t *testing.T) {
	f := setupAPITest(t)
	f.signUp("alice")

	tests := []struct {
		name  string
		body  gin.H
		field string
	}{
		{
			name:  "missing email",
			body:  gin.H{"username": "bob", "first_name": "Bob", "last_name": "Jones", "password": testPassword},
			field: "email",
		},
		{
			name:  "reserved username",
			body:  gin.H{"email": "me@example.com", "username": "me", "first_name": "Me", "last_name": "Me", "password": testPassword},
			field: "username",
		},
		{
			name:  "username with spaces",
			body:  gin.H{"email": "bob@example.com", "username": "bob jones", "first_name": "Bob", "last_name": "Jones", "password": testPassword},
			field: "username",
		},
		{
			name:  "numeric password",
			body:  gin.H{"email": "bob@example.com", "username": "bob", "first_name": "Bob", "last_name": "Jones", "password": "1234567890"},
			field: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/users", "", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			fields, ok := decode(t, w)["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, fields, tt.field)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/users", "", gin.H{
			"email": "ALICE@example.com", "username": "alice2", "first_name": "A", "last_name": "B", "password": testPassword,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRouter_MeAndLogout(t *testing.T) {
	f := setupAPITest(t)
	aliceID, token := f.signUp("alice")

	w := f.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, float64(aliceID), me["id"])
	assert.Equal(t, false, me["is_subscribed"])

	w = f.do(http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RecipeLifecycle(t *testing.T) {
	f := setupAPITest(t)
	_, alice := f.signUp("alice")
	_, bob := f.signUp("bob")

	w := f.do(http.MethodPost, "/api/recipes", "", f.omelette())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/recipes", alice, f.omelette())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	recipeID := uint(created["id"].(float64))
	assert.Equal(t, "Omelette", created["name"])
	assert.Len(t, created["ingredients"], 2)
	assert.Len(t, created["tags"], 1)
	assert.Equal(t, "alice", created["author"].(map[string]interface{})["username"])

	path := fmt.Sprintf("/api/recipes/%d", recipeID)

	t.Run("anonymous read", func(t *testing.T) {
		w := f.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["is_favorited"])
		assert.Equal(t, false, body["is_in_shopping_cart"])
	})

	t.Run("non-author cannot change", func(t *testing.T) {
		w := f.do(http.MethodPatch, path, bob, gin.H{"name": "Stolen"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = f.do(http.MethodDelete, path, bob, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("anonymous change of missing recipe is unauthorized", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/api/recipes/9999", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = f.do(http.MethodDelete, "/api/recipes/9999", bob, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("author patch", func(t *testing.T) {
		w := f.do(http.MethodPatch, path, alice, gin.H{"cooking_time": 12})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, float64(12), body["cooking_time"])
		assert.Equal(t, "Omelette", body["name"])
	})

	t.Run("put requires every field", func(t *testing.T) {
		w := f.do(http.MethodPut, path, alice, gin.H{"name": "Omelette"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := decode(t, w)["fields"].(map[string]interface{})
		assert.Contains(t, fields, "tags")
	})

	t.Run("duplicate ingredient rejected", func(t *testing.T) {
		body := f.omelette()
		body["name"] = "Double eggs"
		body["ingredients"] = []gin.H{
			{"id": f.eggs.ID, "amount": 1},
			{"id": f.eggs.ID, "amount": 2},
		}
		w := f.do(http.MethodPost, "/api/recipes", alice, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["fields"], "ingredients")
	})

	t.Run("author delete", func(t *testing.T) {
		w := f.do(http.MethodDelete, path, alice, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = f.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_RecipeWrongFieldTypes(t *testing.T) {
	f := setupAPITest(t)
	_, alice := f.signUp("alice")

	tests := []struct {
		name  string
		patch gin.H
		field string
	}{
		{"cooking time as text", gin.H{"cooking_time": "ten"}, "cooking_time"},
		{"negative ingredient id", gin.H{"ingredients": []gin.H{{"id": -1, "amount": 3}}}, "ingredients"},
		{"tag id as text", gin.H{"tags": []string{"breakfast"}}, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := f.omelette()
			for k, v := range tt.patch {
				body[k] = v
			}

			w := f.do(http.MethodPost, "/api/recipes", alice, body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode(t, w)
			assert.Equal(t, "VALIDATION_INVALID_INPUT", resp["error"])
			assert.Contains(t, resp["fields"], tt.field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRouter_RecipeListPaging(t *testing.T) {
	f := setupAPITest(t)
	_, alice := f.signUp("alice")

	for i := 0; i < 3; i++ {
		body := f.omelette()
		body["name"] = fmt.Sprintf("Omelette %d", i)
		w := f.do(http.MethodPost, "/api/recipes", alice, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := f.do(http.MethodGet, "/api/recipes?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(3), page["count"])
	assert.Len(t, page["results"], 2)
	assert.Nil(t, page["previous"])
	require.NotNil(t, page["next"])
	assert.Contains(t, page["next"], "page=2")
	assert.Equal(t, "Omelette 2", page["results"].([]interface{})[0].(map[string]interface{})["name"])

	w = f.do(http.MethodGet, "/api/recipes?limit=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	assert.Len(t, page["results"], 1)
	assert.Nil(t, page["next"])
	assert.NotNil(t, page["previous"])

	w = f.do(http.MethodGet, "/api/recipes?tags=lunch", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	assert.Equal(t, float64(0), page["count"])
	assert.Equal(t, []interface{}{}, page["results"])
}

func TestRouter_FavoritesAndShoppingList(t *testing.T) {
	f := setupAPITest(t)
	_, alice := f.signUp("alice")
	_, bob := f.signUp("bob")

	w := f.do(http.MethodPost, "/api/recipes", alice, f.omelette())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipeID := uint(decode(t, w)["id"].(float64))

	favorite := fmt.Sprintf("/api/recipes/%d/favorite", recipeID)
	cart := fmt.Sprintf("/api/recipes/%d/shopping_cart", recipeID)

	w = f.do(http.MethodPost, favorite, bob, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	short := decode(t, w)
	assert.Equal(t, "Omelette", short["name"])
	assert.Equal(t, float64(10), short["cooking_time"])

	w = f.do(http.MethodPost, favorite, bob, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodGet, "/api/recipes?is_favorited=1", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = f.do(http.MethodDelete, favorite, bob, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(http.MethodDelete, favorite, bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SHOPPING_CART_EMPTY", decode(t, w)["error"])

	w = f.do(http.MethodPost, cart, bob, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", recipeID), bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_in_shopping_cart"])

	w = f.do(http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1. Eggs — 3, pcs\n2. Milk — 50, ml", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")

	w = f.do(http.MethodGet, "/api/recipes/download_shopping_cart?format=xlsx", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `foodgram_shopping_list_downloads_total{format="txt"} 1`)
	assert.Contains(t, w.Body.String(), `foodgram_recipe_writes_total{operation="create"} 1`)
}

func TestRouter_Subscriptions(t *testing.T) {
	f := setupAPITest(t)
	aliceID, alice := f.signUp("alice")
	_, bob := f.signUp("bob")

	for i := 0; i < 3; i++ {
		body := f.omelette()
		body["name"] = fmt.Sprintf("Omelette %d", i)
		w := f.do(http.MethodPost, "/api/recipes", alice, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	subscribe := fmt.Sprintf("/api/users/%d/subscribe", aliceID)

	w := f.do(http.MethodPost, subscribe, alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, subscribe+"?recipes_limit=2", bob, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	author := decode(t, w)
	assert.Equal(t, true, author["is_subscribed"])
	assert.Equal(t, float64(3), author["recipes_count"])
	assert.Len(t, author["recipes"], 2)

	w = f.do(http.MethodPost, subscribe, bob, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_subscribed"])

	w = f.do(http.MethodGet, "/api/users/subscriptions", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(1), page["count"])

	w = f.do(http.MethodDelete, subscribe, bob, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(http.MethodDelete, subscribe, bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/users/9999/subscribe", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSMiddleware_AllowAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(corsMiddleware([]string{"*"}))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://foodgram.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
