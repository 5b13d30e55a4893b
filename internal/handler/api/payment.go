package api

import (
	"errors"
	"net/http"

	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/reservation"
	reqdto "rentflow/internal/handler/dto/request"
	resdto "rentflow/internal/handler/dto/response"
	"rentflow/internal/handler/httperr"
	"rentflow/internal/handler/middleware"
	"rentflow/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	deposits commands.DepositCommands
	payments commands.PaymentCommands
}

func NewPaymentHandler(deposits commands.DepositCommands, payments commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{
		deposits: deposits,
		payments: payments,
	}
}

func (h *PaymentHandler) SaveCard(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}

	var req reqdto.SaveCardRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	userID, _ := middleware.GetUserID(c)

	err := h.deposits.SaveCard(c.Request.Context(), commands.SaveCardInput{
		ReservationID:    reservationID,
		CustomerRef:      req.CustomerRef,
		PaymentMethodRef: req.PaymentMethodRef,
		ActorID:          &userID,
	})
	if err != nil {
		respondDepositError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PaymentHandler) AuthorizeDeposit(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.deposits.Authorize(c.Request.Context(), reservationID, &userID); err != nil {
		respondDepositError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PaymentHandler) CaptureDeposit(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}

	var req reqdto.CaptureDepositRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	userID, _ := middleware.GetUserID(c)

	err := h.deposits.Capture(c.Request.Context(), commands.CaptureDepositInput{
		ReservationID: reservationID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		ActorID:       &userID,
	})
	if err != nil {
		respondDepositError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PaymentHandler) ReleaseDeposit(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.deposits.Release(c.Request.Context(), reservationID, &userID); err != nil {
		respondDepositError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}

	var req reqdto.RecordPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	userID, _ := middleware.GetUserID(c)

	entry, err := h.payments.Record(c.Request.Context(), commands.RecordPaymentInput{
		ReservationID: reservationID,
		Type:          payment.Type(req.Type),
		Method:        payment.Method(req.Method),
		Amount:        req.Amount,
		Reason:        req.Reason,
		ActorID:       &userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodeReservationNotFound, "Reservation not found", nil)
		case errors.Is(err, payment.ErrInvalidType),
			errors.Is(err, payment.ErrInvalidMethod),
			errors.Is(err, payment.ErrNegativeAmount):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				httperr.CodeInvalidPaymentEntry, err.Error(), nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err,
				httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromPayment(entry))
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid payment ID format", nil)
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := h.payments.Delete(c.Request.Context(), reservationID, paymentID, &userID); err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodePaymentNotFound, "Payment not found", nil)
		case errors.Is(err, payment.ErrProviderManaged):
			httperr.AbortWithError(c, http.StatusConflict, err,
				httperr.CodeProviderManaged, "Provider-managed payments cannot be deleted", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err,
				httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid payment ID format", nil)
		return
	}

	var req reqdto.RefundPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	userID, _ := middleware.GetUserID(c)

	entry, err := h.payments.Refund(c.Request.Context(), commands.RefundPaymentInput{
		ReservationID: reservationID,
		PaymentID:     paymentID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		ActorID:       &userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err,
				httperr.CodePaymentNotFound, "Payment not found", nil)
		case errors.Is(err, commands.ErrRefundExceedsRefundable):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				httperr.CodeRefundExceedsBalance, "Refund amount exceeds the refundable balance", nil)
		case errors.Is(err, payment.ErrInvalidMethod):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				httperr.CodeInvalidPaymentEntry, "Payment cannot be refunded through the provider", nil)
		case errors.Is(err, commands.ErrProviderFailure):
			httperr.AbortWithError(c, http.StatusBadGateway, err,
				httperr.CodeProviderFailure, "Payment provider call failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err,
				httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromPayment(entry))
}

func respondDepositError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			httperr.CodeReservationNotFound, "Reservation not found", nil)
	case errors.Is(err, reservation.ErrDepositNotRequired):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeDepositNotRequired, "Reservation carries no deposit", nil)
	case errors.Is(err, reservation.ErrInvalidDepositStatus):
		httperr.AbortWithError(c, http.StatusConflict, err,
			httperr.CodeInvalidDepositStatus, "Deposit is not in the required state", nil)
	case errors.Is(err, reservation.ErrNoActiveAuthorization):
		httperr.AbortWithError(c, http.StatusConflict, err,
			httperr.CodeNoActiveAuthorization, "No active deposit authorization", nil)
	case errors.Is(err, reservation.ErrReasonRequired):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeReasonRequired, "A reason is required for deposit capture", nil)
	case errors.Is(err, reservation.ErrAmountExceedsDeposit):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeAmountExceedsDeposit, "Capture amount exceeds the authorized deposit", nil)
	case errors.Is(err, reservation.ErrNegativeAmount):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			httperr.CodeInvalidAmount, "Amount must be positive", nil)
	case errors.Is(err, commands.ErrProviderFailure):
		httperr.AbortWithError(c, http.StatusBadGateway, err,
			httperr.CodeProviderFailure, "Payment provider call failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			httperr.CodeInternal, "Internal server error", nil)
	}
}

func parseReservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			httperr.CodeValidation, "Invalid reservation ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}
