package types

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-management/backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidators(v))
	return v
}

func TestCreationDtoValidation(t *testing.T) {
	v := newValidator(t)

	valid := RecipeForCreationDto{
		Title:        ptr("Shakshuka"),
		ImageLink:    ptr("https://example.com/shakshuka.jpg"),
		Visibility:   ptr("friends only"),
		DateOfOrigin: ptr("1998-04-12"),
	}
	assert.NoError(t, v.Struct(valid))
	assert.NoError(t, v.Struct(RecipeForCreationDto{}), "every field is optional")

	invalid := []RecipeForCreationDto{
		{Visibility: ptr("Secret")},
		{DateOfOrigin: ptr("12/04/1998")},
		{RecipeSourceLink: ptr("not a url")},
	}
	for _, dto := range invalid {
		assert.Error(t, v.Struct(dto))
	}
}

func TestCreationDtoToDomain(t *testing.T) {
	dto := RecipeForCreationDto{
		Title:        ptr("Bread"),
		Rating:       ptr(4),
		Visibility:   ptr("PRIVATE"),
		DateOfOrigin: ptr("2001-02-03"),
	}

	in, err := dto.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "Bread", *in.Title)
	assert.Equal(t, 4, *in.Rating)
	assert.Equal(t, "Private", *in.Visibility)
	assert.Equal(t, time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), *in.DateOfOrigin)
}

func TestUpdateDtoToDomainRejectsBadDate(t *testing.T) {
	_, err := RecipeForUpdateDto{DateOfOrigin: ptr("yesterday")}.ToDomain()
	assert.Error(t, err)
}

func TestNewRecipeDto(t *testing.T) {
	date := time.Date(1980, 6, 1, 0, 0, 0, 0, time.UTC)
	r := &models.Recipe{
		ID:           uuid.New(),
		Title:        ptr("Pho"),
		DateOfOrigin: &date,
		CreatedOn:    time.Now().UTC(),
	}

	dto := NewRecipeDto(r)
	assert.Equal(t, r.ID, dto.ID)
	require.NotNil(t, dto.DateOfOrigin)
	assert.Equal(t, "1980-06-01", *dto.DateOfOrigin)

	assert.Len(t, NewRecipeDtos([]models.Recipe{*r, *r}), 2)
	assert.NotNil(t, NewRecipeDtos(nil))
}
