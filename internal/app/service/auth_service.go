package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists     = errors.New("email already exists")
	ErrUsernameAlreadyExists  = errors.New("username already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
	ErrSamePassword           = errors.New("new password must differ from the current one")
	ErrTokenRevoked           = errors.New("token has been revoked")
)

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, error)
	Login(email, password string) (*util.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	SetPassword(principal model.Principal, currentPassword, newPassword string) error
	Me(principal model.Principal) (*model.UserView, error)
	GetUser(principal model.Principal, id uint) (*model.UserView, error)
	ListUsers(principal model.Principal, page util.Page) ([]model.UserView, int64, error)
}

type authService struct {
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository
	tokenStore       TokenStore
	jwtSecret        string
	accessExpiry     time.Duration
	refreshExpiry    time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	subscriptionRepo repository.SubscriptionRepository,
	tokenStore TokenStore,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		tokenStore:       tokenStore,
		jwtSecret:        jwtSecret,
		accessExpiry:     accessExpiry,
		refreshExpiry:    refreshExpiry,
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	logger.Info("Attempting user registration", map[string]interface{}{
		"email":    email,
		"username": input.Username,
	})

	if err := util.ValidatePassword(input.Password, input.Username, email); err != nil {
		logger.Warn("Registration failed: weak password", map[string]interface{}{
			"email":  email,
			"reason": err.Error(),
		})
		return nil, newValidationError("password", err.Error())
	}

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	taken, err := s.userRepo.ExistsByUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		logger.Warn("Registration failed: username already exists", map[string]interface{}{
			"username": input.Username,
		})
		return nil, ErrUsernameAlreadyExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration
			return nil, ErrEmailAlreadyExists
		}
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, nil
}

func (s *authService) Login(email, password string) (*util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return tokens, nil
}

// Refresh exchanges a refresh token for a new pair and revokes the old refresh token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeRefresh {
		return nil, util.ErrInvalidToken
	}

	tokenHash := util.HashToken(refreshToken)
	revoked, err := s.tokenStore.IsRevoked(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if revoked {
		logger.Warn("Refresh with revoked token", map[string]interface{}{
			"user_id": claims.UserID,
		})
		return nil, ErrTokenRevoked
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidToken
		}
		return nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenStore.Revoke(ctx, tokenHash, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}

	logger.Info("Tokens refreshed", map[string]interface{}{
		"user_id": user.ID,
	})
	return tokens, nil
}

// Logout revokes an access token until it expires
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := util.ValidateToken(accessToken, s.jwtSecret)
	if err != nil {
		return err
	}

	if err := s.tokenStore.Revoke(ctx, util.HashToken(accessToken), claims.ExpiresAt.Time); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) SetPassword(principal model.Principal, currentPassword, newPassword string) error {
	if principal.IsAnonymous() {
		return ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Set password failed: wrong current password", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}
	if err := util.ValidatePassword(newPassword, user.Username, user.Email); err != nil {
		return newValidationError("new_password", err.Error())
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password changed", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) Me(principal model.Principal) (*model.UserView, error) {
	if principal.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	view := model.NewUserView(user, false)
	return &view, nil
}

func (s *authService) GetUser(principal model.Principal, id uint) (*model.UserView, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	subscribed, err := s.subscriptionRepo.AuthorIDsIn(principal.UserID, []uint{user.ID})
	if err != nil {
		return nil, err
	}
	view := model.NewUserView(user, subscribed[user.ID])
	return &view, nil
}

func (s *authService) ListUsers(principal model.Principal, page util.Page) ([]model.UserView, int64, error) {
	users, total, err := s.userRepo.List(page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.subscriptionRepo.AuthorIDsIn(principal.UserID, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]model.UserView, 0, len(users))
	for i := range users {
		views = append(views, model.NewUserView(&users[i], subscribed[users[i].ID]))
	}
	return views, total, nil
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}
