package commands

import (
	"context"
	"time"

	"rentflow/internal/domain/availability"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/product"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra/db"
	"rentflow/internal/usecase/queries"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
)

type StoreReads interface {
	FindByID(ctx context.Context, id uuid.UUID) (*shared.StoreSnapshot, error)
}

type ProductReads interface {
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*shared.ProductSnapshot, error)
	LockForBooking(ctx context.Context, dbtx db.DBTX, ids []uuid.UUID) error
	FindUnits(ctx context.Context, dbtx db.DBTX, productID uuid.UUID) ([]product.Unit, error)
}

type AvailabilityReads interface {
	FindHolds(ctx context.Context, dbtx db.DBTX, productIDs []uuid.UUID, start, end time.Time, blocking []reservation.Status) ([]availability.Hold, error)
}

type ReservationReads interface {
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*queries.ReservationListItem, error)
}

type ReservationWrites interface {
	Create(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error
	UpdateStatus(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error
	UpdateDeposit(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error
	ReplaceItemUnits(ctx context.Context, tx db.DBTX, itemID uuid.UUID, units []reservation.ItemUnit) error
}

type ActivityWrites interface {
	Append(ctx context.Context, tx db.DBTX, activity reservation.Activity) error
}

type PaymentReads interface {
	ListByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]payment.Payment, error)
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*payment.Payment, error)
	FindAuthorizedHold(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (*payment.Payment, error)
}

type PaymentWrites interface {
	Insert(ctx context.Context, tx db.DBTX, entry *payment.Payment) error
	ResolveHold(ctx context.Context, tx db.DBTX, entry *payment.Payment) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, customerID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (inserted bool, err error)
	Get(ctx context.Context, key, customerID uuid.UUID) (*shared.IdempotencyRecord, error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, customerID uuid.UUID, responseHash string, resultReservationID uuid.UUID) error
}

// DepositAuthorization asks the provider to hold funds without charging.
type DepositAuthorization struct {
	CustomerRef      string
	PaymentMethodRef string
	AmountMinor      int64
	Currency         string
	Description      string
}

type CheckoutSession struct {
	ReservationID uuid.UUID
	AmountMinor   int64
	Currency      string
	Description   string
	SuccessURL    string
	CancelURL     string
}

// PaymentProvider is the contract with the card processor. Amounts cross
// this boundary in minor currency units only.
type PaymentProvider interface {
	CreateDepositAuthorization(ctx context.Context, auth DepositAuthorization) (intentRef string, err error)
	CaptureDeposit(ctx context.Context, intentRef string, amountMinor int64) (chargeRef string, err error)
	ReleaseDeposit(ctx context.Context, intentRef string) error
	CreateCheckoutSession(ctx context.Context, session CheckoutSession) (url string, err error)
	CreateRefund(ctx context.Context, chargeRef string, amountMinor int64) (refundRef string, err error)
	GetChargeRefundableAmount(ctx context.Context, chargeRef string) (int64, error)
}
