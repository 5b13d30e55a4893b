package httperr

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable error codes, one per error kind of the public
// API. Clients key retry and UI logic off these, so they never change
// even when messages do.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeForbidden  = "FORBIDDEN"
	CodeInternal   = "INTERNAL_ERROR"

	CodeStoreNotFound       = "STORE_NOT_FOUND"
	CodeReservationNotFound = "RESERVATION_NOT_FOUND"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	CodeUnitNotFound        = "UNIT_NOT_FOUND"

	CodeProductUnavailable       = "PRODUCT_UNAVAILABLE"
	CodeProductNoLongerAvailable = "PRODUCT_NO_LONGER_AVAILABLE"
	CodeInsufficientStock        = "INSUFFICIENT_STOCK"

	CodeInvalidPeriod          = "INVALID_PERIOD"
	CodeBusinessHoursViolation = "BUSINESS_HOURS_VIOLATION"
	CodeAdvanceNoticeViolation = "ADVANCE_NOTICE_VIOLATION"
	CodeMinRentalDuration      = "MIN_RENTAL_DURATION_VIOLATION"
	CodeMaxRentalDuration      = "MAX_RENTAL_DURATION_VIOLATION"
	CodeDeliveryRequired       = "DELIVERY_REQUIRED"
	CodeDeliveryTooFar         = "DELIVERY_TOO_FAR"
	CodeDeliveryInvalid        = "DELIVERY_ADDRESS_INVALID"

	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeEditNotAllowed          = "EDIT_NOT_ALLOWED"

	CodeInvalidDepositStatus  = "INVALID_DEPOSIT_STATUS"
	CodeDepositNotRequired    = "DEPOSIT_NOT_REQUIRED"
	CodeNoActiveAuthorization = "NO_ACTIVE_AUTHORIZATION"
	CodeAmountExceedsDeposit  = "AMOUNT_EXCEEDS_DEPOSIT"
	CodeReasonRequired        = "REASON_REQUIRED"
	CodeInvalidAmount         = "INVALID_AMOUNT"

	CodeUnitProductMismatch  = "UNIT_PRODUCT_MISMATCH"
	CodeTooManyUnitsAssigned = "TOO_MANY_UNITS_ASSIGNED"
	CodeUnitUnavailable      = "UNIT_UNAVAILABLE"

	CodeInvalidPaymentEntry  = "INVALID_PAYMENT_ENTRY"
	CodeProviderManaged      = "PROVIDER_MANAGED_PAYMENT"
	CodeRefundExceedsBalance = "REFUND_EXCEEDS_REFUNDABLE"

	CodeDuplicateRequest  = "DUPLICATE_REQUEST"
	CodeRequestInProgress = "REQUEST_IN_PROGRESS"
	CodeProviderFailure   = "PAYMENT_PROVIDER_FAILURE"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, code, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Code = code
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
