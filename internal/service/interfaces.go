package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipe-management/backend/internal/models"
	"github.com/pageza/recipe-management/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, in types.RecipeForCreation) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, params ListParams) ([]models.Recipe, int64, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, in types.RecipeForUpdate) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
}

// ListParams pages and filters ListRecipes.
type ListParams struct {
	Page       int
	PageSize   int
	Visibility string
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging values into range.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}
