//go:build unit

package builder

import (
	"time"

	domreservation "rentflow/internal/domain/reservation"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	StoreID       uuid.UUID
	CustomerID    uuid.UUID
	Number        string
	Start         time.Time
	End           time.Time
	Items         []domreservation.Item
	DepositAmount float64
	Tax           *domreservation.TaxFields
	CustomerNotes string
	Status        domreservation.Status
	DepositStatus domreservation.DepositStatus
	Now           time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	itemID := uuid.New()
	productID := uuid.New()
	return &ReservationBuilder{
		StoreID:    uuid.New(),
		CustomerID: uuid.New(),
		Number:     "R-202605-ABCDEF",
		Start:      now.Add(48 * time.Hour),
		End:        now.Add(120 * time.Hour),
		Items: []domreservation.Item{
			{
				ID:             itemID,
				ProductID:      &productID,
				Quantity:       1,
				Duration:       3,
				UnitPrice:      100,
				DepositPerUnit: 50,
				TotalPrice:     300,
				Snapshot:       domreservation.ProductSnapshot{Name: "Canon EOS R6"},
			},
		},
		DepositAmount: 50,
		Status:        domreservation.StatusPending,
		DepositStatus: domreservation.DepositNone,
		Now:           now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *ReservationBuilder) BuildDomain() (*domreservation.Reservation, error) {
	period, err := domreservation.NewPeriod(b.Start, b.End)
	if err != nil {
		return nil, err
	}
	res, err := domreservation.NewReservation(
		b.StoreID, b.CustomerID, b.Number, period, b.Items,
		b.DepositAmount, b.Tax, b.CustomerNotes, b.Now,
	)
	if err != nil {
		return nil, err
	}
	if b.Status == domreservation.StatusPending && b.DepositStatus == domreservation.DepositNone {
		return res, nil
	}

	// A non-default status cannot be reached through the constructor, so
	// rehydrate the aggregate the way the repository layer does.
	var customerRef, methodRef, intentRef *string
	switch b.DepositStatus {
	case domreservation.DepositCardSaved:
		customerRef, methodRef = strPtr("cus_builder"), strPtr("pm_builder")
	case domreservation.DepositAuthorized, domreservation.DepositCaptured, domreservation.DepositReleased:
		customerRef, methodRef = strPtr("cus_builder"), strPtr("pm_builder")
		intentRef = strPtr("pi_builder")
	}
	return domreservation.Reconstruct(
		res.ID(), b.StoreID, b.CustomerID, b.Number, b.Status, period, b.Items,
		res.SubtotalAmount(), res.DepositAmount(), res.TotalAmount(),
		b.Tax, b.CustomerNotes, b.DepositStatus,
		customerRef, methodRef, intentRef,
		nil, nil, b.Now, b.Now,
	), nil
}

// Fluent builder methods
func (b *ReservationBuilder) WithStoreID(storeID uuid.UUID) *ReservationBuilder {
	b.StoreID = storeID
	return b
}

func (b *ReservationBuilder) WithCustomerID(customerID uuid.UUID) *ReservationBuilder {
	b.CustomerID = customerID
	return b
}

func (b *ReservationBuilder) WithNumber(number string) *ReservationBuilder {
	b.Number = number
	return b
}

func (b *ReservationBuilder) WithPeriod(start, end time.Time) *ReservationBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *ReservationBuilder) WithItems(items ...domreservation.Item) *ReservationBuilder {
	b.Items = items
	return b
}

func (b *ReservationBuilder) WithDepositAmount(amount float64) *ReservationBuilder {
	b.DepositAmount = amount
	return b
}

func (b *ReservationBuilder) WithTax(tax *domreservation.TaxFields) *ReservationBuilder {
	b.Tax = tax
	return b
}

func (b *ReservationBuilder) WithCustomerNotes(notes string) *ReservationBuilder {
	b.CustomerNotes = notes
	return b
}

func (b *ReservationBuilder) WithStatus(status domreservation.Status) *ReservationBuilder {
	b.Status = status
	return b
}

func (b *ReservationBuilder) WithDepositStatus(status domreservation.DepositStatus) *ReservationBuilder {
	b.DepositStatus = status
	return b
}

func (b *ReservationBuilder) WithNow(now time.Time) *ReservationBuilder {
	b.Now = now
	return b
}

func strPtr(s string) *string {
	return &s
}
