package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/errors"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated request
const (
	PrincipalKey   = "principal"
	AccessTokenKey = "access_token"
)

// RevocationChecker reports whether a token (by util.HashToken) was revoked
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	revocations RevocationChecker
}

func NewAuthMiddleware(jwtSecret string, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		revocations: revocations,
	}
}

// Authenticate requires a valid, unrevoked access token
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			log.Warn("Missing or malformed authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case stderrors.Is(err, util.ErrExpiredToken):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token has expired")
			case stderrors.Is(err, errTokenRevoked):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
			case stderrors.Is(err, util.ErrInvalidToken):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
			default:
				errors.InternalError(c, "")
			}
			return
		}

		setPrincipal(c, claims, token)
		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate sets the principal when a usable token is present and
// otherwise continues as an anonymous request
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Debug("Token rejected - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setPrincipal(c, claims, token)
		c.Next()
	}
}

var errTokenRevoked = stderrors.New("token has been revoked")

func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.JWTClaims, error) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeAccess {
		return nil, util.ErrInvalidToken
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(c.Request.Context(), util.HashToken(token))
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

// bearerToken reads "Authorization: Bearer <token>". The "Token <token>"
// scheme is accepted too.
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 {
		return "", false
	}
	if parts[0] != "Bearer" && parts[0] != "Token" {
		return "", false
	}
	return parts[1], true
}

func setPrincipal(c *gin.Context, claims *util.JWTClaims, token string) {
	c.Set(PrincipalKey, model.Principal{
		UserID: claims.UserID,
		Role:   model.UserRole(claims.Role),
	})
	c.Set(AccessTokenKey, token)
}

// GetPrincipal returns the acting user. Requests without one are anonymous.
func GetPrincipal(c *gin.Context) model.Principal {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(model.Principal); ok {
			return p
		}
	}
	return model.Principal{}
}

// GetAccessToken returns the raw token Authenticate accepted
func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}
