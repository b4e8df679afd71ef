package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pageza/recipe-management/backend/internal/apperrors"
	"github.com/pageza/recipe-management/backend/internal/middleware"
	"github.com/pageza/recipe-management/backend/internal/service"
	"github.com/pageza/recipe-management/backend/internal/types"
)

// RegisterValidators installs the request validation tags on gin's binding
// engine. It must run before any handler binds a request body.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return types.RegisterValidators(v)
}

type RecipeHandler struct {
	recipes service.IRecipeService
}

func NewRecipeHandler(recipes service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes mounts the recipe endpoints. writeMiddleware runs in front
// of the mutating routes only.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, writeMiddleware ...gin.HandlerFunc) {
	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writeMiddleware...), handler)
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", write(h.CreateRecipe)...)
		recipes.PUT("/:id", write(h.UpdateRecipe)...)
		recipes.DELETE("/:id", write(h.DeleteRecipe)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params := service.ListParams{Visibility: c.Query("visibility")}

	var err error
	if params.Page, err = queryInt(c, "page"); err != nil {
		middleware.RespondError(c, err)
		return
	}
	if params.PageSize, err = queryInt(c, "pageSize"); err != nil {
		middleware.RespondError(c, err)
		return
	}
	params = params.Normalize()

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), params)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.RecipeListResponse{
		Recipes:  types.NewRecipeDtos(recipes),
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewRecipeDto(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeForCreationDto
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	in, err := req.ToDomain()
	if err != nil {
		middleware.RespondError(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), in)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%s", c.FullPath(), recipe.ID))
	c.JSON(http.StatusCreated, types.NewRecipeDto(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req types.RecipeForUpdateDto
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	in, err := req.ToDomain()
	if err != nil {
		middleware.RespondError(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), id, in)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewRecipeDto(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.RespondError(c, apperrors.NewBadRequest("invalid recipe id"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequest(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}
