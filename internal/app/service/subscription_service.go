package service

import (
	"errors"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed to this author")
	ErrNotSubscribed     = errors.New("not subscribed to this author")
)

type SubscriptionService interface {
	Subscribe(principal model.Principal, authorID uint, recipesLimit int) (*model.AuthorView, error)
	Unsubscribe(principal model.Principal, authorID uint) error
	List(principal model.Principal, page util.Page, recipesLimit int) ([]model.AuthorView, int64, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	recipeRepo       repository.RecipeRepository
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		recipeRepo:       recipeRepo,
	}
}

func (s *subscriptionService) Subscribe(principal model.Principal, authorID uint, recipesLimit int) (*model.AuthorView, error) {
	if principal.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	logger.Info("Subscribing to author", map[string]interface{}{
		"user_id":   principal.UserID,
		"author_id": authorID,
	})

	author, err := s.userRepo.FindByID(authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot subscribe: author not found", map[string]interface{}{
				"user_id":   principal.UserID,
				"author_id": authorID,
			})
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if principal.IsAuthor(authorID) {
		logger.Warn("Self subscription attempt", map[string]interface{}{
			"user_id": principal.UserID,
		})
		return nil, ErrSelfSubscription
	}

	exists, err := s.subscriptionRepo.Exists(principal.UserID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Already subscribed to author", map[string]interface{}{
			"user_id":   principal.UserID,
			"author_id": authorID,
		})
		return nil, ErrAlreadySubscribed
	}

	subscription := &model.Subscription{UserID: principal.UserID, AuthorID: authorID}
	if err := s.subscriptionRepo.Create(subscription); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		logger.Error("Failed to create subscription", err, map[string]interface{}{
			"user_id":   principal.UserID,
			"author_id": authorID,
		})
		return nil, err
	}

	logger.Info("Subscribed to author successfully", map[string]interface{}{
		"user_id":   principal.UserID,
		"author_id": authorID,
	})
	return s.authorView(author, true, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(principal model.Principal, authorID uint) error {
	if principal.IsAnonymous() {
		return ErrUnauthenticated
	}

	logger.Info("Unsubscribing from author", map[string]interface{}{
		"user_id":   principal.UserID,
		"author_id": authorID,
	})

	if _, err := s.userRepo.FindByID(authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.subscriptionRepo.Delete(principal.UserID, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Subscription not found", map[string]interface{}{
				"user_id":   principal.UserID,
				"author_id": authorID,
			})
			return ErrNotSubscribed
		}
		return err
	}

	logger.Info("Unsubscribed from author successfully", map[string]interface{}{
		"user_id":   principal.UserID,
		"author_id": authorID,
	})
	return nil
}

func (s *subscriptionService) List(principal model.Principal, page util.Page, recipesLimit int) ([]model.AuthorView, int64, error) {
	if principal.IsAnonymous() {
		return nil, 0, ErrUnauthenticated
	}

	authors, total, err := s.subscriptionRepo.ListAuthors(principal.UserID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]model.AuthorView, 0, len(authors))
	for i := range authors {
		view, err := s.authorView(&authors[i], true, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}

	logger.Debug("Subscriptions listed", map[string]interface{}{
		"user_id": principal.UserID,
		"count":   len(views),
		"total":   total,
	})
	return views, total, nil
}

// authorView loads the recipe preview of an author. recipesLimit <= 0 means all recipes.
func (s *subscriptionService) authorView(author *model.User, isSubscribed bool, recipesLimit int) (*model.AuthorView, error) {
	recipes, err := s.recipeRepo.FindByAuthor(author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipeRepo.CountByAuthor(author.ID)
	if err != nil {
		return nil, err
	}

	shorts := make([]model.RecipeShortView, 0, len(recipes))
	for i := range recipes {
		shorts = append(shorts, model.NewRecipeShortView(&recipes[i]))
	}

	return &model.AuthorView{
		UserView:     model.NewUserView(author, isSubscribed),
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}
