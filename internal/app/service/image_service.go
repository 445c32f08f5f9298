package service

import (
	"context"
	"fmt"

	"github.com/foodgram/foodgram-backend/internal/storage"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"github.com/google/uuid"
)

const recipeImageFolder = "recipes/images"

type ImageService interface {
	SaveRecipeImage(ctx context.Context, img *util.DecodedImage) (string, error)
	Remove(ctx context.Context, url string)
}

type imageService struct {
	storage storage.ImageStorage
}

func NewImageService(storage storage.ImageStorage) ImageService {
	return &imageService{storage: storage}
}

// SaveRecipeImage stores a decoded image under a random key
func (s *imageService) SaveRecipeImage(ctx context.Context, img *util.DecodedImage) (string, error) {
	key := fmt.Sprintf("%s/%s%s", recipeImageFolder, uuid.New().String(), img.Extension)

	url, err := s.storage.Save(ctx, key, img.Data, img.ContentType)
	if err != nil {
		logger.Error("Failed to store recipe image", err, map[string]interface{}{
			"key": key,
		})
		return "", err
	}

	logger.Info("Recipe image stored", map[string]interface{}{
		"key":  key,
		"size": len(img.Data),
	})
	return url, nil
}

// Remove deletes a stored image. Failures are logged, not returned.
func (s *imageService) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		logger.Warn("Failed to remove recipe image", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}
