package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/service"
	apperrors "github.com/foodgram/foodgram-backend/internal/errors"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// parseIDParam reads a positive numeric path parameter. On failure it
// responds with 400 and returns false.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": c.Param(name),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseLimitQuery reads an optional non-negative integer query value. 0 means unset.
func parseLimitQuery(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// requestURL is the absolute URL of the current request, used for page links
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}

func newPagedResult[T any](c *gin.Context, page util.Page, count int64, results []T) model.PagedResult[T] {
	next, previous := util.PageLinks(requestURL(c), page, count)
	if results == nil {
		results = []T{}
	}
	return model.PagedResult[T]{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  results,
	}
}

// respondBindingError renders a request body that failed to bind
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = bindingMessage(fe)
		}
		apperrors.RespondWithValidationError(c, fields)
		return
	}

	// A value of the wrong JSON type is reported against its top-level field,
	// e.g. "ingredients" for ingredients[0].id
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field, _, _ := strings.Cut(typeErr.Field, ".")
		apperrors.RespondWithValidationError(c, map[string]string{
			field: "Incorrect type, expected " + typeErr.Type.String() + " but got " + typeErr.Value,
		})
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Malformed request body")
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "username":
		return "Enter a valid username: letters, digits and @/./+/-/_ only, and not \"me\""
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters"
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters"
	}
	return "Invalid value"
}

// respondServiceError maps a service error to its HTTP response
func respondServiceError(c *gin.Context, err error, action string) {
	log := middleware.GetLoggerFromContext(c)

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		apperrors.RespondWithValidationError(c, map[string]string{verr.Field: verr.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		apperrors.Unauthorized(c, "")
	case errors.Is(err, util.ErrExpiredToken):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Token has expired")
	case errors.Is(err, util.ErrInvalidToken):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid token")
	case errors.Is(err, service.ErrTokenRevoked):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "Token has been revoked")
	case errors.Is(err, service.ErrForbidden):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzAuthorOnly, "Only the author can change this recipe")

	case errors.Is(err, service.ErrRecipeNotFound):
		apperrors.NotFound(c, apperrors.RecipeNotFound, "Recipe not found")
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
	case errors.Is(err, service.ErrTagNotFound):
		apperrors.NotFound(c, apperrors.TagNotFound, "Tag not found")
	case errors.Is(err, service.ErrIngredientNotFound):
		apperrors.NotFound(c, apperrors.IngredientNotFound, "Ingredient not found")

	case errors.Is(err, service.ErrFavoriteAlreadyExists):
		apperrors.Conflict(c, apperrors.FavoriteAlreadyExists, "Recipe is already in favorites")
	case errors.Is(err, service.ErrFavoriteNotFound):
		apperrors.BadRequest(c, apperrors.FavoriteNotFound, "Recipe is not in favorites")
	case errors.Is(err, service.ErrShoppingCartItemAlreadyExists):
		apperrors.Conflict(c, apperrors.ShoppingCartAlreadyExists, "Recipe is already in the shopping cart")
	case errors.Is(err, service.ErrShoppingCartItemNotFound):
		apperrors.BadRequest(c, apperrors.ShoppingCartNotFound, "Recipe is not in the shopping cart")
	case errors.Is(err, service.ErrEmptyShoppingCart):
		apperrors.BadRequest(c, apperrors.ShoppingCartEmpty, "Your shopping cart is empty, add some recipes first")
	case errors.Is(err, service.ErrAlreadySubscribed):
		apperrors.Conflict(c, apperrors.SubscriptionAlreadyExists, "You are already subscribed to this author")
	case errors.Is(err, service.ErrNotSubscribed):
		apperrors.BadRequest(c, apperrors.SubscriptionNotFound, "You are not subscribed to this author")
	case errors.Is(err, service.ErrSelfSubscription):
		apperrors.BadRequest(c, apperrors.SubscriptionSelf, "You cannot subscribe to yourself")

	case errors.Is(err, service.ErrEmailAlreadyExists):
		apperrors.BadRequest(c, apperrors.AuthEmailAlreadyExists, "A user with this email already exists")
	case errors.Is(err, service.ErrUsernameAlreadyExists):
		apperrors.BadRequest(c, apperrors.AuthUsernameExists, "A user with this username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		apperrors.BadRequest(c, apperrors.AuthInvalidCredentials, "Unable to log in with provided credentials")
	case errors.Is(err, service.ErrInvalidCurrentPassword):
		apperrors.BadRequest(c, apperrors.AuthPasswordMismatch, "Current password is incorrect")
	case errors.Is(err, service.ErrSamePassword):
		apperrors.BadRequest(c, apperrors.AuthPasswordUnchanged, "New password must differ from the current one")

	default:
		log.Error("Failed to "+action, err)
		info := apperrors.ParseError(err, action)
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	log.Debug("Request rejected", map[string]interface{}{
		"action": action,
		"reason": err.Error(),
	})
}
