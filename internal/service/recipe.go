package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-management/backend/internal/actor"
	"github.com/pageza/recipe-management/backend/internal/apperrors"
	"github.com/pageza/recipe-management/backend/internal/cache"
	"github.com/pageza/recipe-management/backend/internal/logger"
	"github.com/pageza/recipe-management/backend/internal/messaging"
	"github.com/pageza/recipe-management/backend/internal/metrics"
	"github.com/pageza/recipe-management/backend/internal/models"
	"github.com/pageza/recipe-management/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db        *gorm.DB
	cache     cache.RecipeCache
	publisher messaging.Publisher
	now       func() time.Time
	log       *zap.Logger
}

// Option customises a RecipeService.
type Option func(*RecipeService)

// WithCache enables read caching for GetRecipe.
func WithCache(c cache.RecipeCache) Option {
	return func(s *RecipeService) { s.cache = c }
}

// WithPublisher sends lifecycle events after every write.
func WithPublisher(p messaging.Publisher) Option {
	return func(s *RecipeService) { s.publisher = p }
}

// WithClock overrides the time source used for audit fields.
func WithClock(now func() time.Time) Option {
	return func(s *RecipeService) { s.now = now }
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, opts ...Option) *RecipeService {
	s := &RecipeService{
		db:        db,
		cache:     cache.NewNoopCache(),
		publisher: messaging.NewNoopPublisher(),
		now:       time.Now,
		log:       logger.WithModule("recipes"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ IRecipeService = (*RecipeService)(nil)

// CreateRecipe stores a new active recipe attributed to the actor in ctx.
func (s *RecipeService) CreateRecipe(ctx context.Context, in types.RecipeForCreation) (*models.Recipe, error) {
	if err := checkVisibility(in.Visibility); err != nil {
		return nil, err
	}

	who := actor.FromContext(ctx)
	recipe := models.NewRecipe(who, s.now())
	assign(recipe, recipeInput(in))

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to create recipe")
	}

	s.publish(ctx, messaging.RecipeCreated, recipe.ID, who)
	return recipe, nil
}

// GetRecipe retrieves an active recipe by ID. Deleted recipes are not found.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	cached, err := s.cache.Get(ctx, id)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		if cached.IsDeleted {
			return nil, apperrors.ErrNotFound.WithInternal(models.ErrRecipeAlreadyDeleted)
		}
		return cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("recipe cache read failed", zap.String("recipe_id", id.String()), zap.Error(err))
	}

	recipe, err := s.load(ctx, id, models.NotDeleted)
	if err != nil {
		return nil, err
	}

	// Add leaves any entry a concurrent write stored in the meantime.
	if err := s.cache.Add(ctx, recipe); err != nil {
		s.log.Warn("recipe cache write failed", zap.String("recipe_id", id.String()), zap.Error(err))
	}
	return recipe, nil
}

// ListRecipes returns a page of active recipes, newest first, and the total
// number of matches.
func (s *RecipeService) ListRecipes(ctx context.Context, params ListParams) ([]models.Recipe, int64, error) {
	params = params.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(models.NotDeleted)
	if params.Visibility != "" {
		v, err := models.ParseVisibility(params.Visibility)
		if err != nil {
			return nil, 0, apperrors.NewBadRequest(err.Error())
		}
		query = query.Where(clause.Eq{Column: clause.Column{Name: "Visibility"}, Value: v.String()})
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count recipes")
	}

	recipes := make([]models.Recipe, 0, params.PageSize)
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "CreatedOn"}, Desc: true}).
		Limit(params.PageSize).
		Offset((params.Page - 1) * params.PageSize).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to fetch recipes")
	}
	return recipes, total, nil
}

// UpdateRecipe replaces the mutable fields of an active recipe.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, in types.RecipeForUpdate) (*models.Recipe, error) {
	if err := checkVisibility(in.Visibility); err != nil {
		return nil, err
	}

	recipe, err := s.load(ctx, id, models.NotDeleted)
	if err != nil {
		return nil, err
	}

	who := actor.FromContext(ctx)
	assign(recipe, recipeInput(in))
	recipe.Touch(who, s.now())

	result := s.db.WithContext(ctx).
		Model(recipe).
		Scopes(models.NotDeleted).
		Select("*").
		Omit("Id", "CreatedOn", "CreatedBy", "IsDeleted").
		Updates(recipe)
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "failed to update recipe")
	}
	if result.RowsAffected == 0 {
		// Deleted between the read and the write.
		return nil, apperrors.ErrNotFound
	}

	s.store(ctx, recipe)
	s.publish(ctx, messaging.RecipeUpdated, id, who)
	return recipe, nil
}

// DeleteRecipe soft deletes a recipe. Deleting twice is reported as not
// found since deleted recipes are invisible to callers.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	who := actor.FromContext(ctx)
	if err := recipe.MarkDeleted(who, s.now()); err != nil {
		return apperrors.ErrNotFound.WithInternal(err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Scopes(models.ByID(id), models.NotDeleted).
		Updates(map[string]interface{}{
			"IsDeleted":      true,
			"LastModifiedOn": recipe.LastModifiedOn,
			"LastModifiedBy": recipe.LastModifiedBy,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to delete recipe")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithInternal(models.ErrRecipeAlreadyDeleted)
	}

	// The deleted copy stays cached so a reader that loaded the row earlier
	// cannot bring the active version back.
	s.store(ctx, recipe)
	s.publish(ctx, messaging.RecipeDeleted, id, who)
	return nil
}

func (s *RecipeService) load(ctx context.Context, id uuid.UUID, scopes ...func(*gorm.DB) *gorm.DB) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Scopes(append(scopes, models.ByID(id))...).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithInternal(err)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch recipe")
	}
	return &recipe, nil
}

// store replaces the cached copy after a write. If that fails the entry is
// dropped instead.
func (s *RecipeService) store(ctx context.Context, recipe *models.Recipe) {
	err := s.cache.Set(ctx, recipe)
	if err == nil {
		return
	}
	s.log.Warn("recipe cache write failed", zap.String("recipe_id", recipe.ID.String()), zap.Error(err))
	if err := s.cache.Invalidate(ctx, recipe.ID); err != nil {
		s.log.Warn("recipe cache invalidation failed", zap.String("recipe_id", recipe.ID.String()), zap.Error(err))
	}
}

func (s *RecipeService) publish(ctx context.Context, eventType string, id uuid.UUID, who string) {
	if err := s.publisher.Publish(ctx, messaging.NewEvent(eventType, id, who)); err != nil {
		metrics.RecipeEvents.WithLabelValues(eventType, "error").Inc()
		s.log.Warn("failed to publish recipe event",
			zap.String("type", eventType),
			zap.String("recipe_id", id.String()),
			zap.Error(err),
		)
		return
	}
	metrics.RecipeEvents.WithLabelValues(eventType, "ok").Inc()
}

// recipeInput has the field layout shared by RecipeForCreation and
// RecipeForUpdate so both convert to it directly.
type recipeInput struct {
	Title            *string
	Directions       *string
	RecipeSourceLink *string
	Description      *string
	ImageLink        *string
	Rating           *int
	Visibility       *string
	DateOfOrigin     *time.Time
}

func assign(r *models.Recipe, in recipeInput) {
	r.Title = in.Title
	r.Directions = in.Directions
	r.RecipeSourceLink = in.RecipeSourceLink
	r.Description = in.Description
	r.ImageLink = in.ImageLink
	r.Rating = in.Rating
	r.Visibility = in.Visibility
	r.DateOfOrigin = nil
	if in.DateOfOrigin != nil {
		d := models.DateOnly(*in.DateOfOrigin)
		r.DateOfOrigin = &d
	}
	if v, ok := r.VisibilityValue(); ok {
		name := v.String()
		r.Visibility = &name
	}
}

func checkVisibility(v *string) error {
	if v == nil {
		return nil
	}
	if _, err := models.ParseVisibility(*v); err != nil {
		return apperrors.NewBadRequest(err.Error())
	}
	return nil
}
