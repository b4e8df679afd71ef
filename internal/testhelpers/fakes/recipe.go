// Package fakes builds randomized, valid recipe inputs for tests.
package fakes

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/pageza/recipe-management/backend/internal/models"
	"github.com/pageza/recipe-management/backend/internal/types"
)

// Generator produces fake recipe inputs from one random source.
type Generator struct {
	f *gofakeit.Faker
}

// New returns a Generator. A zero seed picks a random one.
func New(seed uint64) *Generator {
	return &Generator{f: gofakeit.New(seed)}
}

var defaultGenerator = New(0)

// recipeFields is the field set shared by every recipe input type.
type recipeFields struct {
	Title            string
	Directions       string
	RecipeSourceLink string
	Description      string
	ImageLink        string
	Rating           int
	Visibility       string
	DateOfOrigin     time.Time
}

func (g *Generator) fields() recipeFields {
	return recipeFields{
		Title:            g.f.Dinner(),
		Directions:       g.f.Paragraph(2, 4, 12, "\n"),
		RecipeSourceLink: g.f.URL(),
		Description:      g.f.Sentence(12),
		ImageLink:        g.f.URL(),
		Rating:           g.f.IntRange(1, 5),
		Visibility:       g.f.RandomString(models.ListNames()),
		DateOfOrigin:     models.DateOnly(g.f.PastDate()),
	}
}

// RecipeForCreation returns a complete creation input.
func (g *Generator) RecipeForCreation() types.RecipeForCreation {
	rf := g.fields()
	return types.RecipeForCreation{
		Title:            &rf.Title,
		Directions:       &rf.Directions,
		RecipeSourceLink: &rf.RecipeSourceLink,
		Description:      &rf.Description,
		ImageLink:        &rf.ImageLink,
		Rating:           &rf.Rating,
		Visibility:       &rf.Visibility,
		DateOfOrigin:     &rf.DateOfOrigin,
	}
}

// RecipeForUpdate returns a complete update input.
func (g *Generator) RecipeForUpdate() types.RecipeForUpdate {
	rf := g.fields()
	return types.RecipeForUpdate{
		Title:            &rf.Title,
		Directions:       &rf.Directions,
		RecipeSourceLink: &rf.RecipeSourceLink,
		Description:      &rf.Description,
		ImageLink:        &rf.ImageLink,
		Rating:           &rf.Rating,
		Visibility:       &rf.Visibility,
		DateOfOrigin:     &rf.DateOfOrigin,
	}
}

// RecipeForCreationDto returns a complete creation request body.
func (g *Generator) RecipeForCreationDto() types.RecipeForCreationDto {
	rf := g.fields()
	date := rf.DateOfOrigin.Format(types.DateLayout)
	return types.RecipeForCreationDto{
		Title:            &rf.Title,
		Directions:       &rf.Directions,
		RecipeSourceLink: &rf.RecipeSourceLink,
		Description:      &rf.Description,
		ImageLink:        &rf.ImageLink,
		Rating:           &rf.Rating,
		Visibility:       &rf.Visibility,
		DateOfOrigin:     &date,
	}
}

// RecipeForUpdateDto returns a complete update request body.
func (g *Generator) RecipeForUpdateDto() types.RecipeForUpdateDto {
	rf := g.fields()
	date := rf.DateOfOrigin.Format(types.DateLayout)
	return types.RecipeForUpdateDto{
		Title:            &rf.Title,
		Directions:       &rf.Directions,
		RecipeSourceLink: &rf.RecipeSourceLink,
		Description:      &rf.Description,
		ImageLink:        &rf.ImageLink,
		Rating:           &rf.Rating,
		Visibility:       &rf.Visibility,
		DateOfOrigin:     &date,
	}
}

// Recipe returns an active, unsaved entity populated from a creation input.
func (g *Generator) Recipe(actor string) *models.Recipe {
	in := g.RecipeForCreation()
	r := models.NewRecipe(actor, time.Now())
	r.Title = in.Title
	r.Directions = in.Directions
	r.RecipeSourceLink = in.RecipeSourceLink
	r.Description = in.Description
	r.ImageLink = in.ImageLink
	r.Rating = in.Rating
	r.Visibility = in.Visibility
	r.DateOfOrigin = in.DateOfOrigin
	return r
}

func FakeRecipeForCreation() types.RecipeForCreation {
	return defaultGenerator.RecipeForCreation()
}

func FakeRecipeForUpdate() types.RecipeForUpdate {
	return defaultGenerator.RecipeForUpdate()
}

func FakeRecipeForCreationDto() types.RecipeForCreationDto {
	return defaultGenerator.RecipeForCreationDto()
}

func FakeRecipeForUpdateDto() types.RecipeForUpdateDto {
	return defaultGenerator.RecipeForUpdateDto()
}

func FakeRecipe(actor string) *models.Recipe {
	return defaultGenerator.Recipe(actor)
}
