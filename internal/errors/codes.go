package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthPasswordMismatch   = "AUTH_PASSWORD_MISMATCH"
	AuthPasswordUnchanged  = "AUTH_PASSWORD_UNCHANGED"
	AuthPasswordWeak       = "AUTH_PASSWORD_WEAK"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden  = "AUTHZ_FORBIDDEN"
	AuthzAuthorOnly = "AUTHZ_AUTHOR_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Recipes (RECIPE_) ====================
	RecipeNotFound   = "RECIPE_NOT_FOUND"
	RecipeNameExists = "RECIPE_NAME_EXISTS"

	// ==================== Catalogs ====================
	TagNotFound        = "TAG_NOT_FOUND"
	IngredientNotFound = "INGREDIENT_NOT_FOUND"
	UserNotFound       = "USER_NOT_FOUND"

	// ==================== Memberships ====================
	FavoriteAlreadyExists     = "FAVORITE_ALREADY_EXISTS"
	FavoriteNotFound          = "FAVORITE_NOT_FOUND"
	ShoppingCartAlreadyExists = "SHOPPING_CART_ALREADY_EXISTS"
	ShoppingCartNotFound      = "SHOPPING_CART_NOT_FOUND"
	ShoppingCartEmpty         = "SHOPPING_CART_EMPTY"
	SubscriptionAlreadyExists = "SUBSCRIPTION_ALREADY_EXISTS"
	SubscriptionNotFound      = "SUBSCRIPTION_NOT_FOUND"
	SubscriptionSelf          = "SUBSCRIPTION_SELF"

	// ==================== Rate limiting ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError         = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError       = "INTERNAL_DATABASE_ERROR"
	InternalUpstreamUnavailable = "INTERNAL_UPSTREAM_UNAVAILABLE"
)
