package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code and message pair derived from an error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps persistence errors to a user facing code and message
// without exposing driver details. context names the operation, e.g.
// "create recipe".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Internal server error",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower, context)
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower)
	}

	if errors.Is(err, gorm.ErrCheckConstraintViolated) || strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "Input value is out of the allowed range",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalUpstreamUnavailable,
			Message: "An upstream service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string, context string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "A user with that email already exists"}
	case strings.Contains(errLower, "username"):
		return ErrorInfo{Code: AuthUsernameExists, Message: "A user with that username already exists"}
	case strings.Contains(errLower, "recipes.name") || strings.Contains(errLower, "idx_recipes_name"):
		return ErrorInfo{Code: RecipeNameExists, Message: "A recipe with this name already exists"}
	case strings.Contains(errLower, "favorite"):
		return ErrorInfo{Code: FavoriteAlreadyExists, Message: "Recipe is already in favorites"}
	case strings.Contains(errLower, "cart"):
		return ErrorInfo{Code: ShoppingCartAlreadyExists, Message: "Recipe is already in the shopping cart"}
	case strings.Contains(errLower, "subscription"):
		return ErrorInfo{Code: SubscriptionAlreadyExists, Message: "You are already subscribed to this author"}
	}

	if strings.Contains(strings.ToLower(context), "recipe") {
		return ErrorInfo{Code: RecipeNameExists, Message: "A recipe with this name already exists"}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The record is referenced by other data and cannot be deleted",
		}
	}
	if strings.Contains(errLower, "ingredient") {
		return ErrorInfo{Code: IngredientNotFound, Message: "Ingredient does not exist"}
	}
	if strings.Contains(errLower, "tag") {
		return ErrorInfo{Code: TagNotFound, Message: "Tag does not exist"}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "author_id") {
		return ErrorInfo{Code: UserNotFound, Message: "User does not exist"}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Referenced record does not exist",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "recipe"):
		return "Recipe not found"
	case strings.Contains(contextLower, "user") || strings.Contains(contextLower, "author"):
		return "User not found"
	case strings.Contains(contextLower, "ingredient"):
		return "Ingredient not found"
	case strings.Contains(contextLower, "tag"):
		return "Tag not found"
	}
	return "Not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete, please try again later"
	}
	return "Internal server error, please try again later"
}

// ParseAndRespond parses err and writes it with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
