package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidType       = errors.New("invalid payment type")
	ErrInvalidMethod     = errors.New("invalid payment method")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrNegativeAmount    = errors.New("only adjustments may carry a negative amount")
	ErrNotAuthorizedHold = errors.New("payment is not an authorized deposit hold")
	ErrProviderManaged   = errors.New("provider-managed payments cannot be deleted")
)

type Type string

const (
	TypeRental         Type = "rental"
	TypeDeposit        Type = "deposit"
	TypeDepositReturn  Type = "deposit_return"
	TypeDamage         Type = "damage"
	TypeDepositHold    Type = "deposit_hold"
	TypeDepositCapture Type = "deposit_capture"
	TypeAdjustment     Type = "adjustment"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeRental, TypeDeposit, TypeDepositReturn, TypeDamage, TypeDepositHold, TypeDepositCapture, TypeAdjustment:
		return true
	default:
		return false
	}
}

type Method string

const (
	MethodStripe       Method = "stripe"
	MethodCash         Method = "cash"
	MethodCardManual   Method = "card_manual"
	MethodBankTransfer Method = "bank_transfer"
	MethodOther        Method = "other"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodStripe, MethodCash, MethodCardManual, MethodBankTransfer, MethodOther:
		return true
	default:
		return false
	}
}

// IsProviderManaged reports whether the row mirrors provider state. Such
// rows are never deleted, only superseded by refund rows.
func (m Method) IsProviderManaged() bool {
	return m == MethodStripe
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	default:
		return false
	}
}

// Payment is one immutable monetary movement on a reservation. The only
// permitted mutations are the hold resolution updates (authorized →
// completed on capture, authorized → cancelled on release); refunds are
// new rows referencing the original charge.
type Payment struct {
	ID                uuid.UUID
	ReservationID     uuid.UUID
	Type              Type
	Method            Method
	Status            Status
	Amount            float64
	CapturedAmount    *float64
	Reason            string
	ProviderChargeID  *string
	ProviderIntentID  *string
	RefundOfPaymentID *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func New(reservationID uuid.UUID, paymentType Type, method Method, status Status, amount float64, now time.Time) (*Payment, error) {
	if !paymentType.IsValid() {
		return nil, ErrInvalidType
	}
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if amount < 0 && paymentType != TypeAdjustment {
		return nil, ErrNegativeAmount
	}

	return &Payment{
		ID:            uuid.New(),
		ReservationID: reservationID,
		Type:          paymentType,
		Method:        method,
		Status:        status,
		Amount:        amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ResolveCaptured marks an authorized deposit_hold row completed with the
// captured amount.
func (p *Payment) ResolveCaptured(capturedAmount float64, reason string, now time.Time) error {
	if p.Type != TypeDepositHold || p.Status != StatusAuthorized {
		return ErrNotAuthorizedHold
	}
	p.Status = StatusCompleted
	p.CapturedAmount = &capturedAmount
	p.Reason = reason
	p.UpdatedAt = now
	return nil
}

// ResolveReleased marks an authorized deposit_hold row cancelled.
func (p *Payment) ResolveReleased(now time.Time) error {
	if p.Type != TypeDepositHold || p.Status != StatusAuthorized {
		return ErrNotAuthorizedHold
	}
	p.Status = StatusCancelled
	p.UpdatedAt = now
	return nil
}

// CanDelete is true only for manually entered rows; provider-managed rows
// stay forever.
func (p *Payment) CanDelete() error {
	if p.Method.IsProviderManaged() {
		return ErrProviderManaged
	}
	return nil
}
