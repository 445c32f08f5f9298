package controller

import (
	"net/http"

	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	authService service.AuthService
	pageSize    int
}

func NewUserController(authService service.AuthService, pageSize int) *UserController {
	return &UserController{
		authService: authService,
		pageSize:    pageSize,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Register creates an account
// POST /api/users
func (ctrl *UserController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	user, err := ctrl.authService.Register(service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "register user")
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

// Login issues a token pair
// POST /api/auth/token/login
func (ctrl *UserController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "log in")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Refresh exchanges a refresh token for a new pair
// POST /api/auth/token/refresh
func (ctrl *UserController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	tokens, err := ctrl.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err, "refresh token")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Logout revokes the presented access token
// POST /api/auth/token/logout
func (ctrl *UserController) Logout(c *gin.Context) {
	if err := ctrl.authService.Logout(c.Request.Context(), middleware.GetAccessToken(c)); err != nil {
		respondServiceError(c, err, "log out")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers returns one page of users
// GET /api/users?page=&limit=
func (ctrl *UserController) ListUsers(c *gin.Context) {
	page := util.ParsePage(c.Query("page"), c.Query("limit"), ctrl.pageSize)

	users, total, err := ctrl.authService.ListUsers(middleware.GetPrincipal(c), page)
	if err != nil {
		respondServiceError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, newPagedResult(c, page, total, users))
}

// GetUser returns a user profile
// GET /api/users/:id
func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUser(middleware.GetPrincipal(c), id)
	if err != nil {
		respondServiceError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Me returns the current user
// GET /api/users/me
func (ctrl *UserController) Me(c *gin.Context) {
	user, err := ctrl.authService.Me(middleware.GetPrincipal(c))
	if err != nil {
		respondServiceError(c, err, "get current user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// SetPassword changes the current user's password
// POST /api/users/set_password
func (ctrl *UserController) SetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := ctrl.authService.SetPassword(principal, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err, "set password")
		return
	}

	log.Info("Password changed", map[string]interface{}{
		"user_id": principal.UserID,
	})
	c.Status(http.StatusNoContent)
}
