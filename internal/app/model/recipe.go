package model

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1" json:"cooking_time"`
	Image       string    `gorm:"type:varchar(500)" json:"image"`
	PubDate     time.Time `gorm:"not null;index;autoCreateTime" json:"pub_date"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations (loaded with Preload)
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author"`
	TagLinks    []RecipeTag        `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"ingredients"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// Tags returns the linked tags in link order
func (r *Recipe) Tags() []Tag {
	tags := make([]Tag, 0, len(r.TagLinks))
	for _, link := range r.TagLinks {
		tags = append(tags, link.Tag)
	}
	return tags
}
