package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-management/backend/internal/api"
	"github.com/pageza/recipe-management/backend/internal/mocks"
	"github.com/pageza/recipe-management/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSetupRouter(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	svc.On("ListRecipes", mock.Anything, mock.Anything).Return([]models.Recipe{}, int64(0), nil)

	r, err := SetupRouter(Dependencies{
		Recipes: svc,
		Checks: map[string]api.Checker{
			"database": api.CheckFunc(func(context.Context) error { return nil }),
		},
	})
	require.NoError(t, err)

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"database":"ok"}}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/recipes").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/nope").Code)

	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "recipe_management_api_latency_seconds"))
}

func TestHealthReportsFailingDependency(t *testing.T) {
	r, err := SetupRouter(Dependencies{
		Recipes: &mocks.MockRecipeService{},
		Checks: map[string]api.Checker{
			"database": api.CheckFunc(func(context.Context) error { return nil }),
			"redis":    api.CheckFunc(func(context.Context) error { return errors.New("connection refused") }),
		},
	})
	require.NoError(t, err)

	w := get(r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"database":"ok","redis":"connection refused"}}`, w.Body.String())
}
