//go:build unit

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentflow/internal/handler/api"
	"rentflow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAvailabilityQueries struct {
	result   *queries.AvailabilityResult
	err      error
	gotInput queries.CheckAvailabilityInput
}

func (f *fakeAvailabilityQueries) Check(_ context.Context, input queries.CheckAvailabilityInput) (*queries.AvailabilityResult, error) {
	f.gotInput = input
	return f.result, f.err
}

func setupAvailabilityRouter(fake *fakeAvailabilityQueries) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := api.NewAvailabilityHandler(fake)
	router.GET("/products/:id/availability", handler.CheckAvailability)
	return router
}

func TestCheckAvailability(t *testing.T) {
	productID := uuid.New()

	t.Run("success", func(t *testing.T) {
		fake := &fakeAvailabilityQueries{result: &queries.AvailabilityResult{
			ProductID:   productID,
			Requested:   2,
			Available:   3,
			Satisfiable: true,
		}}
		router := setupAvailabilityRouter(fake)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/products/"+productID.String()+"/availability?start=2026-05-10T00:00:00Z&end=2026-05-13T00:00:00Z&quantity=2", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(3), body["available"])
		assert.Equal(t, true, body["satisfiable"])

		assert.Equal(t, productID, fake.gotInput.ProductID)
		assert.Equal(t, 2, fake.gotInput.Quantity)
	})

	t.Run("attribute filters are forwarded", func(t *testing.T) {
		fake := &fakeAvailabilityQueries{result: &queries.AvailabilityResult{ProductID: productID}}
		router := setupAvailabilityRouter(fake)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/products/"+productID.String()+"/availability?start=2026-05-10T00:00:00Z&end=2026-05-13T00:00:00Z&attr.size=m&attr.color=red", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{"size": "m", "color": "red"}, fake.gotInput.Attributes)
	})

	t.Run("bad input", func(t *testing.T) {
		cases := []struct {
			name string
			path string
		}{
			{name: "bad product id", path: "/products/not-a-uuid/availability?start=2026-05-10T00:00:00Z&end=2026-05-13T00:00:00Z"},
			{name: "missing start", path: "/products/" + productID.String() + "/availability?end=2026-05-13T00:00:00Z"},
			{name: "missing end", path: "/products/" + productID.String() + "/availability?start=2026-05-10T00:00:00Z"},
			{name: "reversed window", path: "/products/" + productID.String() + "/availability?start=2026-05-13T00:00:00Z&end=2026-05-10T00:00:00Z"},
			{name: "bad quantity", path: "/products/" + productID.String() + "/availability?start=2026-05-10T00:00:00Z&end=2026-05-13T00:00:00Z&quantity=zero"},
			{name: "negative quantity", path: "/products/" + productID.String() + "/availability?start=2026-05-10T00:00:00Z&end=2026-05-13T00:00:00Z&quantity=-1"},
			{name: "bad exclude id", path: "/products/" + productID.String() + "/availability?start=2026-05-10T00:00:00Z&end=2026-05-13T00:00:00Z&excludeReservationId=nope"},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				router := setupAvailabilityRouter(&fakeAvailabilityQueries{})

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, c.path, nil))

				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		router := setupAvailabilityRouter(&fakeAvailabilityQueries{err: queries.ErrProductNotFound})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/products/"+productID.String()+"/availability?start=2026-05-10T00:00:00Z&end=2026-05-13T00:00:00Z", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
