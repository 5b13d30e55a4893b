package commands

import "rentflow/internal/pkg/errs"

// Sentinel errors for the booking core. Handlers map them to the stable
// error codes of the public API.
var (
	ErrStoreNotFound            = errs.New("store not found")
	ErrUnauthorized             = errs.New("actor may not act on this reservation")
	ErrReservationNotFound      = errs.New("reservation not found")
	ErrProductUnavailable       = errs.New("product unavailable")
	ErrInsufficientStock        = errs.New("insufficient stock")
	ErrProductNoLongerAvailable = errs.New("product no longer available")
	ErrInvalidPeriod            = errs.New("invalid rental period")
	ErrBusinessHoursViolation   = errs.New("rental window outside business hours")
	ErrAdvanceNoticeViolation   = errs.New("rental window violates advance notice")
	ErrMinRentalDuration        = errs.New("rental shorter than minimum duration")
	ErrMaxRentalDuration        = errs.New("rental longer than maximum duration")
	ErrDeliveryRequired         = errs.New("delivery address required")
	ErrDeliveryTooFar           = errs.New("delivery address beyond maximum distance")
	ErrDeliveryAddressInvalid   = errs.New("delivery address invalid")
	ErrPaymentNotFound          = errs.New("payment not found")
	ErrRefundExceedsRefundable  = errs.New("refund amount exceeds the refundable balance")
	ErrUnitNotFound             = errs.New("product unit not found")
	ErrUnitProductMismatch      = errs.New("unit does not belong to the item's product")
	ErrTooManyUnitsAssigned     = errs.New("more units assigned than item quantity")
	ErrUnitUnavailable          = errs.New("unit is not available")
	ErrDuplicateRequest         = errs.New("duplicate request with different payload")
	ErrRequestInProgress        = errs.New("request is still being processed")
	ErrProviderFailure          = errs.New("payment provider call failed")
	ErrDatabaseOperationFailed  = errs.New("database operation failed")
)
