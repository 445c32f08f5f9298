package model

import (
	"time"
)

// IngredientAmount is one requested ingredient line of a recipe write
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteCommand is the nested write payload for creating or updating a
// recipe. A nil field means "not supplied".
type RecipeWriteCommand struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Image       *string            `json:"image"` // base64 data URI
	Tags        []uint             `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// UserView is the public representation of a user
type UserView struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func NewUserView(u *User, isSubscribed bool) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

type IngredientAmountView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeViewerFlags are the relations between the viewer and a recipe.
// All are false for anonymous viewers.
type RecipeViewerFlags struct {
	IsFavorited        bool
	IsInShoppingCart   bool
	IsSubscribedAuthor bool
}

// RecipeReadView is the materialized recipe returned to clients
type RecipeReadView struct {
	ID               uint                   `json:"id"`
	Tags             []Tag                  `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []IngredientAmountView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	PubDate          time.Time              `json:"pub_date"`
}

// NewRecipeReadView maps a persisted recipe (with Author, TagLinks.Tag and
// Ingredients.Ingredient loaded) to its read view.
func NewRecipeReadView(recipe *Recipe, flags RecipeViewerFlags) RecipeReadView {
	ingredients := make([]IngredientAmountView, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		ingredients = append(ingredients, IngredientAmountView{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return RecipeReadView{
		ID:               recipe.ID,
		Tags:             recipe.Tags(),
		Author:           NewUserView(&recipe.Author, flags.IsSubscribedAuthor),
		Ingredients:      ingredients,
		IsFavorited:      flags.IsFavorited,
		IsInShoppingCart: flags.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		PubDate:          recipe.PubDate,
	}
}

// RecipeShortView is returned by favorite and shopping cart endpoints and
// embedded in subscription listings
type RecipeShortView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewRecipeShortView(recipe *Recipe) RecipeShortView {
	return RecipeShortView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// AuthorView is a followed author with a preview of their recipes
type AuthorView struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// PagedResult is the page envelope of list endpoints
type PagedResult[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
