package service

import (
	"errors"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"gorm.io/gorm"
)

type TagService interface {
	ListTags() ([]model.Tag, error)
	GetTag(id uint) (*model.Tag, error)
}

type tagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

// ListTags returns the whole tag catalog
func (s *tagService) ListTags() ([]model.Tag, error) {
	return s.tagRepo.FindAll()
}

func (s *tagService) GetTag(id uint) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}
