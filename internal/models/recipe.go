package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipesTable is the name of the table created by the initial migration.
const RecipesTable = "Recipes"

// ErrRecipeAlreadyDeleted is returned when deleting a recipe that is already
// in the deleted state. Deletion is one-way.
var ErrRecipeAlreadyDeleted = errors.New("recipe already deleted")

// Recipe maps the Recipes table. Column names are PascalCase to match the
// schema owned by the migration, so gorm's naming strategy is bypassed.
type Recipe struct {
	ID               uuid.UUID  `gorm:"column:Id;type:uuid;primaryKey" json:"id"`
	Title            *string    `gorm:"column:Title" json:"title,omitempty"`
	Directions       *string    `gorm:"column:Directions" json:"directions,omitempty"`
	RecipeSourceLink *string    `gorm:"column:RecipeSourceLink" json:"recipe_source_link,omitempty"`
	Description      *string    `gorm:"column:Description" json:"description,omitempty"`
	ImageLink        *string    `gorm:"column:ImageLink" json:"image_link,omitempty"`
	Rating           *int       `gorm:"column:Rating" json:"rating,omitempty"`
	Visibility       *string    `gorm:"column:Visibility" json:"visibility,omitempty"`
	DateOfOrigin     *time.Time `gorm:"column:DateOfOrigin;type:date" json:"date_of_origin,omitempty"`
	CreatedOn        time.Time  `gorm:"column:CreatedOn;not null" json:"created_on"`
	CreatedBy        *string    `gorm:"column:CreatedBy" json:"created_by,omitempty"`
	LastModifiedOn   *time.Time `gorm:"column:LastModifiedOn" json:"last_modified_on,omitempty"`
	LastModifiedBy   *string    `gorm:"column:LastModifiedBy" json:"last_modified_by,omitempty"`
	IsDeleted        bool       `gorm:"column:IsDeleted;not null" json:"is_deleted"`
}

// TableName returns the table name for the Recipe model
func (Recipe) TableName() string {
	return RecipesTable
}

// NewRecipe returns an active recipe with a fresh identifier and creation
// audit fields set.
func NewRecipe(actor string, at time.Time) *Recipe {
	return &Recipe{
		ID:        uuid.New(),
		CreatedOn: at.UTC(),
		CreatedBy: optional(actor),
		IsDeleted: false,
	}
}

// Touch records a modification.
func (r *Recipe) Touch(actor string, at time.Time) {
	at = at.UTC()
	r.LastModifiedOn = &at
	r.LastModifiedBy = optional(actor)
}

// MarkDeleted moves the recipe from active to deleted. There is no way back.
func (r *Recipe) MarkDeleted(actor string, at time.Time) error {
	if r.IsDeleted {
		return ErrRecipeAlreadyDeleted
	}
	r.IsDeleted = true
	r.Touch(actor, at)
	return nil
}

// VisibilityValue returns the parsed visibility, if one is set and valid.
func (r *Recipe) VisibilityValue() (Visibility, bool) {
	if r.Visibility == nil {
		return "", false
	}
	v, err := ParseVisibility(*r.Visibility)
	return v, err == nil
}

// NotDeleted is a gorm scope that hides soft deleted recipes.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "IsDeleted"}, Value: false})
}

// ByID is a gorm scope selecting a single recipe by primary key.
func ByID(id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "Id"}, Value: id})
	}
}

// DateOnly truncates t to a UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
