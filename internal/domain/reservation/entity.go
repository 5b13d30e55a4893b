package reservation

import (
	"errors"
	"fmt"
	"time"

	"rentflow/internal/domain/pricing"
	"rentflow/internal/pkg/money"

	"github.com/google/uuid"
)

var (
	ErrNoItems                 = errors.New("reservation requires at least one item")
	ErrSubtotalMismatch        = errors.New("item totals do not add up to subtotal")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrEditNotAllowed          = errors.New("reservation can no longer be edited")
	ErrInvalidDepositStatus    = errors.New("invalid deposit status for this operation")
	ErrNoActiveAuthorization   = errors.New("no active deposit authorization")
	ErrAmountExceedsDeposit    = errors.New("capture amount exceeds authorized deposit")
	ErrReasonRequired          = errors.New("a reason is required for deposit capture")
	ErrDepositNotRequired      = errors.New("reservation carries no deposit")
	ErrNegativeAmount          = errors.New("amount must be positive")
)

// Item is one reservation line. Either ProductID points at a catalog
// product or IsCustomItem is set. The snapshot is copied at booking time
// and never re-joined to the live product.
type Item struct {
	ID             uuid.UUID
	ProductID      *uuid.UUID
	IsCustomItem   bool
	Quantity       int
	Duration       int
	UnitPrice      float64
	DepositPerUnit float64
	TotalPrice     float64
	Snapshot       ProductSnapshot
	Breakdown      *pricing.Breakdown
	Tax            *TaxFields
	Attributes     map[string]string
	Units          []ItemUnit
}

type Reservation struct {
	id                      uuid.UUID
	storeID                 uuid.UUID
	customerID              uuid.UUID
	number                  string
	status                  Status
	period                  Period
	items                   []Item
	subtotalAmount          float64
	depositAmount           float64
	totalAmount             float64
	tax                     *TaxFields
	customerNotes           string
	depositStatus           DepositStatus
	providerCustomerID      *string
	providerPaymentMethodID *string
	providerPaymentIntentID *string
	pickedUpAt              *time.Time
	returnedAt              *time.Time
	createdAt               time.Time
	updatedAt               time.Time
}

// NewReservation builds a fresh pending reservation. Amounts must already
// be server-computed; the constructor verifies the item totals add up.
func NewReservation(
	storeID, customerID uuid.UUID,
	number string,
	period Period,
	items []Item,
	depositAmount float64,
	taxFields *TaxFields,
	customerNotes string,
	now time.Time,
) (*Reservation, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	subtotal := 0.0
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	subtotal = money.Round2(subtotal)
	if depositAmount < 0 {
		return nil, ErrNegativeAmount
	}

	return &Reservation{
		id:             uuid.New(),
		storeID:        storeID,
		customerID:     customerID,
		number:         number,
		status:         StatusPending,
		period:         period,
		items:          items,
		subtotalAmount: subtotal,
		depositAmount:  money.Round2(depositAmount),
		totalAmount:    money.Round2(subtotal + depositAmount),
		tax:            taxFields,
		customerNotes:  customerNotes,
		depositStatus:  DepositNone,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func Reconstruct(
	id, storeID, customerID uuid.UUID,
	number string,
	status Status,
	period Period,
	items []Item,
	subtotalAmount, depositAmount, totalAmount float64,
	taxFields *TaxFields,
	customerNotes string,
	depositStatus DepositStatus,
	providerCustomerID, providerPaymentMethodID, providerPaymentIntentID *string,
	pickedUpAt, returnedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:                      id,
		storeID:                 storeID,
		customerID:              customerID,
		number:                  number,
		status:                  status,
		period:                  period,
		items:                   items,
		subtotalAmount:          subtotalAmount,
		depositAmount:           depositAmount,
		totalAmount:             totalAmount,
		tax:                     taxFields,
		customerNotes:           customerNotes,
		depositStatus:           depositStatus,
		providerCustomerID:      providerCustomerID,
		providerPaymentMethodID: providerPaymentMethodID,
		providerPaymentIntentID: providerPaymentIntentID,
		pickedUpAt:              pickedUpAt,
		returnedAt:              returnedAt,
		createdAt:               createdAt,
		updatedAt:               updatedAt,
	}
}

func (r *Reservation) ID() uuid.UUID                    { return r.id }
func (r *Reservation) StoreID() uuid.UUID               { return r.storeID }
func (r *Reservation) CustomerID() uuid.UUID            { return r.customerID }
func (r *Reservation) Number() string                   { return r.number }
func (r *Reservation) Status() Status                   { return r.status }
func (r *Reservation) Period() Period                   { return r.period }
func (r *Reservation) Items() []Item                    { return r.items }
func (r *Reservation) SubtotalAmount() float64          { return r.subtotalAmount }
func (r *Reservation) DepositAmount() float64           { return r.depositAmount }
func (r *Reservation) TotalAmount() float64             { return r.totalAmount }
func (r *Reservation) Tax() *TaxFields                  { return r.tax }
func (r *Reservation) CustomerNotes() string            { return r.customerNotes }
func (r *Reservation) DepositStatus() DepositStatus     { return r.depositStatus }
func (r *Reservation) ProviderCustomerID() *string      { return r.providerCustomerID }
func (r *Reservation) ProviderPaymentMethodID() *string { return r.providerPaymentMethodID }
func (r *Reservation) ProviderPaymentIntentID() *string { return r.providerPaymentIntentID }
func (r *Reservation) PickedUpAt() *time.Time           { return r.pickedUpAt }
func (r *Reservation) ReturnedAt() *time.Time           { return r.returnedAt }
func (r *Reservation) CreatedAt() time.Time             { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time             { return r.updatedAt }

// CreatedActivity is the activity row appended together with the insert.
func (r *Reservation) CreatedActivity(actorID *uuid.UUID, now time.Time) Activity {
	return NewActivity(r.id, ActivityCreated, actorID, fmt.Sprintf("reservation %s created", r.number), map[string]any{
		"status":   string(r.status),
		"subtotal": r.subtotalAmount,
		"deposit":  r.depositAmount,
		"total":    r.totalAmount,
	}, now)
}

// ChangeStatus moves the reservation along one legal edge and returns the
// activity row to append. Illegal edges fail before any field changes.
// Warnings (non-fatal rule findings at transition time) are recorded in
// the activity metadata.
func (r *Reservation) ChangeStatus(to Status, actorID *uuid.UUID, reason string, warnings []string, now time.Time) (Activity, error) {
	if !to.IsValid() || !r.status.CanTransitionTo(to) {
		return Activity{}, ErrInvalidStatusTransition
	}

	from := r.status
	r.status = to
	r.updatedAt = now

	switch to {
	case StatusOngoing:
		t := now
		r.pickedUpAt = &t
	case StatusCompleted:
		t := now
		r.returnedAt = &t
	}

	metadata := map[string]any{
		"from": string(from),
		"to":   string(to),
	}
	if reason != "" {
		metadata["reason"] = reason
	}
	if len(warnings) > 0 {
		metadata["warnings"] = warnings
	}

	return NewActivity(r.id, ActivityStatusChanged, actorID,
		fmt.Sprintf("status changed from %s to %s", from, to), metadata, now), nil
}

// MarkCardSaved records that the customer's payment method was stored with
// the provider. Allowed from none and as a fresh attempt after failed.
func (r *Reservation) MarkCardSaved(customerID, paymentMethodID string, actorID *uuid.UUID, now time.Time) (Activity, error) {
	if !r.depositStatus.CanTransitionTo(DepositCardSaved) {
		return Activity{}, ErrInvalidDepositStatus
	}
	r.depositStatus = DepositCardSaved
	r.providerCustomerID = &customerID
	r.providerPaymentMethodID = &paymentMethodID
	r.updatedAt = now

	return NewActivity(r.id, ActivityDepositCardSaved, actorID, "payment method saved for deposit", nil, now), nil
}

// AuthorizeDeposit records a successful provider hold. Requires a saved
// card and a positive deposit amount.
func (r *Reservation) AuthorizeDeposit(paymentIntentID string, actorID *uuid.UUID, now time.Time) (Activity, error) {
	if r.depositAmount <= 0 {
		return Activity{}, ErrDepositNotRequired
	}
	if r.depositStatus != DepositCardSaved {
		return Activity{}, ErrInvalidDepositStatus
	}
	r.depositStatus = DepositAuthorized
	r.providerPaymentIntentID = &paymentIntentID
	r.updatedAt = now

	return NewActivity(r.id, ActivityDepositAuthorized, actorID, "deposit hold authorized", map[string]any{
		"amount": r.depositAmount,
	}, now), nil
}

// CaptureDeposit captures part or all of the authorized hold. A non-empty
// human reason is mandatory and ends up on the ledger row.
func (r *Reservation) CaptureDeposit(amount float64, reason string, actorID *uuid.UUID, now time.Time) (Activity, error) {
	if r.depositStatus != DepositAuthorized {
		return Activity{}, ErrNoActiveAuthorization
	}
	if reason == "" {
		return Activity{}, ErrReasonRequired
	}
	if amount <= 0 {
		return Activity{}, ErrNegativeAmount
	}
	if amount > r.depositAmount+0.005 {
		return Activity{}, ErrAmountExceedsDeposit
	}
	r.depositStatus = DepositCaptured
	r.updatedAt = now

	return NewActivity(r.id, ActivityDepositCaptured, actorID, "deposit captured: "+reason, map[string]any{
		"amount": amount,
		"reason": reason,
	}, now), nil
}

// ReleaseDeposit cancels the hold without charging. Calling it once the
// hold is already released (or never existed) fails and mutates nothing.
func (r *Reservation) ReleaseDeposit(actorID *uuid.UUID, now time.Time) (Activity, error) {
	if r.depositStatus != DepositAuthorized {
		return Activity{}, ErrNoActiveAuthorization
	}
	r.depositStatus = DepositReleased
	r.updatedAt = now

	return NewActivity(r.id, ActivityDepositReleased, actorID, "deposit hold released", map[string]any{
		"amount": r.depositAmount,
	}, now), nil
}

// FailDeposit records a provider error. Terminal deposit states stay put.
func (r *Reservation) FailDeposit(cause string, actorID *uuid.UUID, now time.Time) (Activity, error) {
	if !r.depositStatus.CanTransitionTo(DepositFailed) {
		return Activity{}, ErrInvalidDepositStatus
	}
	r.depositStatus = DepositFailed
	r.updatedAt = now

	return NewActivity(r.id, ActivityDepositFailed, actorID, "deposit operation failed", map[string]any{
		"cause": cause,
	}, now), nil
}

// AssignUnits replaces an item's unit assignments. Only editable
// reservations accept assignments.
func (r *Reservation) AssignUnits(itemID uuid.UUID, units []ItemUnit, actorID *uuid.UUID, now time.Time) (Activity, error) {
	if !r.status.AllowsEdits() {
		return Activity{}, ErrEditNotAllowed
	}

	for i := range r.items {
		if r.items[i].ID != itemID {
			continue
		}
		r.items[i].Units = units
		r.updatedAt = now

		identifiers := make([]string, len(units))
		for j, u := range units {
			identifiers[j] = u.IdentifierSnapshot
		}
		return NewActivity(r.id, ActivityUnitsAssigned, actorID, "units assigned", map[string]any{
			"itemId":      itemID.String(),
			"identifiers": identifiers,
		}, now), nil
	}
	return Activity{}, errors.New("item not found on reservation")
}
