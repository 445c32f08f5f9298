package model

// Tag is a recipe category from the read-only tag catalog.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"type:varchar(200);uniqueIndex;not null" json:"name" validate:"required,max=200"`
	Color string `gorm:"type:varchar(9);not null" json:"color" validate:"required,hexcolor,max=9"` // #RRGGBB or #RRGGBBAA
	Slug  string `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug" validate:"required,max=200"`
}

func (Tag) TableName() string {
	return "tags"
}

// RecipeTag links a recipe to a tag. Links are owned by the recipe and
// replaced as a set on update.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey" json:"recipe_id"`
	TagID    uint `gorm:"primaryKey;index" json:"tag_id"`
	Tag      Tag  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tag,omitempty"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
