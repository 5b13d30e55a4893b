package api

import (
	"errors"
	"net/http"

	"rentflow/internal/domain/reservation"
	reqdto "rentflow/internal/handler/dto/request"
	resdto "rentflow/internal/handler/dto/response"
	"rentflow/internal/handler/httperr"
	"rentflow/internal/handler/middleware"
	"rentflow/internal/usecase/commands"
	"rentflow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	engine    commands.ReservationCommands
	lifecycle commands.LifecycleCommands
	units     commands.UnitCommands
	views     queries.ReservationQueries
}

func NewReservationHandler(
	engine commands.ReservationCommands,
	lifecycle commands.LifecycleCommands,
	units commands.UnitCommands,
	views queries.ReservationQueries,
) *ReservationHandler {
	return &ReservationHandler{
		engine:    engine,
		lifecycle: lifecycle,
		units:     units,
		views:     views,
	}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"),
			httperr.CodeInternal, "Internal server error", nil)
		return
	}

	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, err.Error(), nil)
		return
	}

	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	role, _ := middleware.GetUserRole(c)

	result, err := h.engine.CreateReservation(c.Request.Context(), req.ToInput(userID, role.IsStaff()), idempotencyKey)
	if err != nil {
		respondCreateError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromCreateResult(result))
}

func respondCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrStoreNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			httperr.CodeStoreNotFound, "Store not found", nil)
	case errors.Is(err, commands.ErrUnauthorized):
		httperr.AbortWithError(c, http.StatusForbidden, err,
			httperr.CodeForbidden, "Custom items and price overrides require a staff account", nil)
	case errors.Is(err, commands.ErrProductNoLongerAvailable):
		httperr.AbortWithError(c, http.StatusConflict, err,
			httperr.CodeProductNoLongerAvailable, "Product no longer available", err.Error())
	case errors.Is(err, commands.ErrProductUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err,
			httperr.CodeProductUnavailable, "Product is not available for booking", nil)
	case errors.Is(err, commands.ErrInsufficientStock):
		httperr.AbortWithError(c, http.StatusConflict, err,
			httperr.CodeInsufficientStock, "Insufficient stock for the requested window", nil)
	case errors.Is(err, commands.ErrInvalidPeriod):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeInvalidPeriod, "Invalid rental period", nil)
	case errors.Is(err, commands.ErrBusinessHoursViolation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeBusinessHoursViolation, err.Error(), nil)
	case errors.Is(err, commands.ErrAdvanceNoticeViolation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeAdvanceNoticeViolation, err.Error(), nil)
	case errors.Is(err, commands.ErrMinRentalDuration):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeMinRentalDuration, err.Error(), nil)
	case errors.Is(err, commands.ErrMaxRentalDuration):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeMaxRentalDuration, err.Error(), nil)
	case errors.Is(err, commands.ErrDeliveryRequired):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeDeliveryRequired, "Delivery address is required", nil)
	case errors.Is(err, commands.ErrDeliveryTooFar):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeDeliveryTooFar, "Delivery address is beyond the maximum distance", nil)
	case errors.Is(err, commands.ErrDeliveryAddressInvalid):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeDeliveryInvalid, "Delivery address is invalid", nil)
	case errors.Is(err, commands.ErrDuplicateRequest):
		httperr.AbortWithError(c, http.StatusConflict, err,
			httperr.CodeDuplicateRequest, "Duplicate request with different parameters", nil)
	case errors.Is(err, commands.ErrRequestInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err,
			httperr.CodeRequestInProgress, "Request is currently being processed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			httperr.CodeInternal, "Internal server error", nil)
	}
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid reservation ID format", nil)
		return
	}

	detail, err := h.views.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodeReservationNotFound, "Reservation not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err,
				httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationDetail(detail))
}

func (h *ReservationHandler) GetUserReservations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"),
			httperr.CodeInternal, "Internal server error", nil)
		return
	}

	items, err := h.views.ListByCustomer(c.Request.Context(), userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			httperr.CodeInternal, "Internal server error", nil)
		return
	}

	responses := make([]*resdto.ReservationListResponse, len(items))
	for i, item := range items {
		responses[i] = resdto.FromReservationListItem(item)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *ReservationHandler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid reservation ID format", nil)
		return
	}

	var req reqdto.ChangeStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	err = h.lifecycle.ChangeStatus(c.Request.Context(), commands.ChangeStatusInput{
		ReservationID: id,
		To:            reservation.Status(req.Status),
		Reason:        req.Reason,
		ActorID:       &userID,
		ActorIsStaff:  role.IsStaff(),
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodeReservationNotFound, "Reservation not found", nil)
		case errors.Is(err, commands.ErrUnauthorized):
			httperr.AbortWithError(c, http.StatusForbidden, err,
				httperr.CodeForbidden, "Not allowed to perform this transition", nil)
		case errors.Is(err, reservation.ErrInvalidStatusTransition):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				httperr.CodeInvalidStatusTransition, "Invalid status transition", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err,
				httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) AssignUnits(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid reservation ID format", nil)
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid item ID format", nil)
		return
	}

	var req reqdto.AssignUnitsRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	userID, _ := middleware.GetUserID(c)

	err = h.units.AssignUnits(c.Request.Context(), commands.AssignUnitsInput{
		ReservationID: reservationID,
		ItemID:        itemID,
		UnitIDs:       req.UnitIDs,
		ActorID:       &userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodeReservationNotFound, "Reservation not found", nil)
		case errors.Is(err, commands.ErrUnitNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodeUnitNotFound, "Unit not found", nil)
		case errors.Is(err, commands.ErrUnitProductMismatch):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				httperr.CodeUnitProductMismatch, "Unit does not belong to the item's product", nil)
		case errors.Is(err, commands.ErrTooManyUnitsAssigned):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				httperr.CodeTooManyUnitsAssigned, "More units than item quantity", nil)
		case errors.Is(err, commands.ErrUnitUnavailable):
			httperr.AbortWithError(c, http.StatusConflict, err,
				httperr.CodeUnitUnavailable, "Unit is not available", nil)
		case errors.Is(err, reservation.ErrEditNotAllowed):
			httperr.AbortWithError(c, http.StatusConflict, err,
				httperr.CodeEditNotAllowed, "Reservation can no longer be edited", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err,
				httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("Idempotency-Key")
	if raw == "" {
		return uuid.Nil, errors.New("Idempotency-Key header is required")
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("Idempotency-Key must be a valid UUID")
	}
	return key, nil
}
