package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipe-management/backend/internal/models"
)

// DateLayout is the wire format of DateOfOrigin.
const DateLayout = "2006-01-02"

// RecipeForCreation is the service input for a new recipe.
type RecipeForCreation struct {
	Title            *string
	Directions       *string
	RecipeSourceLink *string
	Description      *string
	ImageLink        *string
	Rating           *int
	Visibility       *string
	DateOfOrigin     *time.Time
}

// RecipeForUpdate replaces every mutable field of a recipe.
type RecipeForUpdate struct {
	Title            *string
	Directions       *string
	RecipeSourceLink *string
	Description      *string
	ImageLink        *string
	Rating           *int
	Visibility       *string
	DateOfOrigin     *time.Time
}

// RecipeForCreationDto represents the request body for creating a recipe
type RecipeForCreationDto struct {
	Title            *string `json:"title" binding:"omitempty,max=500"`
	Directions       *string `json:"directions"`
	RecipeSourceLink *string `json:"recipe_source_link" binding:"omitempty,url"`
	Description      *string `json:"description"`
	ImageLink        *string `json:"image_link" binding:"omitempty,url"`
	Rating           *int    `json:"rating"`
	Visibility       *string `json:"visibility" binding:"omitempty,visibility"`
	DateOfOrigin     *string `json:"date_of_origin" binding:"omitempty,datetime=2006-01-02"`
}

// RecipeForUpdateDto represents the request body for updating a recipe
type RecipeForUpdateDto struct {
	Title            *string `json:"title" binding:"omitempty,max=500"`
	Directions       *string `json:"directions"`
	RecipeSourceLink *string `json:"recipe_source_link" binding:"omitempty,url"`
	Description      *string `json:"description"`
	ImageLink        *string `json:"image_link" binding:"omitempty,url"`
	Rating           *int    `json:"rating"`
	Visibility       *string `json:"visibility" binding:"omitempty,visibility"`
	DateOfOrigin     *string `json:"date_of_origin" binding:"omitempty,datetime=2006-01-02"`
}

// RecipeDto is the API representation of a recipe
type RecipeDto struct {
	ID               uuid.UUID  `json:"id"`
	Title            *string    `json:"title"`
	Directions       *string    `json:"directions"`
	RecipeSourceLink *string    `json:"recipe_source_link"`
	Description      *string    `json:"description"`
	ImageLink        *string    `json:"image_link"`
	Rating           *int       `json:"rating"`
	Visibility       *string    `json:"visibility"`
	DateOfOrigin     *string    `json:"date_of_origin"`
	CreatedOn        time.Time  `json:"created_on"`
	CreatedBy        *string    `json:"created_by"`
	LastModifiedOn   *time.Time `json:"last_modified_on"`
	LastModifiedBy   *string    `json:"last_modified_by"`
}

// RecipeListResponse is the body of a paged list.
type RecipeListResponse struct {
	Recipes  []RecipeDto `json:"recipes"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int64       `json:"total"`
}

// ToDomain converts the request body into a service input.
func (d RecipeForCreationDto) ToDomain() (RecipeForCreation, error) {
	date, err := parseDate(d.DateOfOrigin)
	if err != nil {
		return RecipeForCreation{}, err
	}
	return RecipeForCreation{
		Title:            d.Title,
		Directions:       d.Directions,
		RecipeSourceLink: d.RecipeSourceLink,
		Description:      d.Description,
		ImageLink:        d.ImageLink,
		Rating:           d.Rating,
		Visibility:       canonicalVisibility(d.Visibility),
		DateOfOrigin:     date,
	}, nil
}

// ToDomain converts the request body into a service input.
func (d RecipeForUpdateDto) ToDomain() (RecipeForUpdate, error) {
	date, err := parseDate(d.DateOfOrigin)
	if err != nil {
		return RecipeForUpdate{}, err
	}
	return RecipeForUpdate{
		Title:            d.Title,
		Directions:       d.Directions,
		RecipeSourceLink: d.RecipeSourceLink,
		Description:      d.Description,
		ImageLink:        d.ImageLink,
		Rating:           d.Rating,
		Visibility:       canonicalVisibility(d.Visibility),
		DateOfOrigin:     date,
	}, nil
}

// NewRecipeDto maps the entity onto its API shape.
func NewRecipeDto(r *models.Recipe) RecipeDto {
	dto := RecipeDto{
		ID:               r.ID,
		Title:            r.Title,
		Directions:       r.Directions,
		RecipeSourceLink: r.RecipeSourceLink,
		Description:      r.Description,
		ImageLink:        r.ImageLink,
		Rating:           r.Rating,
		Visibility:       r.Visibility,
		CreatedOn:        r.CreatedOn,
		CreatedBy:        r.CreatedBy,
		LastModifiedOn:   r.LastModifiedOn,
		LastModifiedBy:   r.LastModifiedBy,
	}
	if r.DateOfOrigin != nil {
		s := r.DateOfOrigin.Format(DateLayout)
		dto.DateOfOrigin = &s
	}
	return dto
}

// NewRecipeDtos maps a slice of entities.
func NewRecipeDtos(recipes []models.Recipe) []RecipeDto {
	out := make([]RecipeDto, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewRecipeDto(&recipes[i]))
	}
	return out
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("date_of_origin: %w", err)
	}
	return &t, nil
}

// canonicalVisibility normalises casing so stored values always match
// models.ListNames exactly.
func canonicalVisibility(s *string) *string {
	if s == nil {
		return nil
	}
	v, err := models.ParseVisibility(*s)
	if err != nil {
		return s
	}
	name := v.String()
	return &name
}
