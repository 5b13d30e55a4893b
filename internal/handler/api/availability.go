package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	resdto "rentflow/internal/handler/dto/response"
	"rentflow/internal/handler/httperr"
	"rentflow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	availability queries.AvailabilityQueries
}

func NewAvailabilityHandler(availability queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// CheckAvailability answers GET /products/:id/availability. Attribute
// filters come in as attr.<key> query parameters.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid product ID format", nil)
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "start must be an RFC3339 timestamp", nil)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "end must be an RFC3339 timestamp", nil)
		return
	}
	if !end.After(start) {
		httperr.AbortWithError(c, http.StatusBadRequest, errors.New("end must be after start"),
			httperr.CodeValidation, "end must be after start", nil)
		return
	}

	quantity := 1
	if raw := c.Query("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil || quantity < 1 {
			httperr.AbortWithError(c, http.StatusBadRequest, errors.New("quantity must be a positive integer"),
				httperr.CodeValidation, "quantity must be a positive integer", nil)
			return
		}
	}

	input := queries.CheckAvailabilityInput{
		ProductID:  productID,
		Start:      start,
		End:        end,
		Quantity:   quantity,
		Attributes: attributeFilters(c),
	}
	if raw := c.Query("excludeReservationId"); raw != "" {
		excludeID, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err,
				httperr.CodeValidation, "excludeReservationId must be a valid UUID", nil)
			return
		}
		input.ExcludeReservationID = &excludeID
	}

	result, err := h.availability.Check(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrProductNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodeProductNotFound, "Product not found", nil)
		case errors.Is(err, queries.ErrStoreNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodeStoreNotFound, "Store not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err,
				httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityResult(result))
}

func attributeFilters(c *gin.Context) map[string]string {
	var attrs map[string]string
	for key, values := range c.Request.URL.Query() {
		if len(key) <= len("attr.") || key[:len("attr.")] != "attr." || len(values) == 0 {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[key[len("attr."):]] = values[0]
	}
	return attrs
}
