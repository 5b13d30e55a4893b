package writerepo

import (
	"context"
	"encoding/json"

	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

// Create inserts the reservation, its items and any unit assignments in
// the caller's transaction. A duplicate number surfaces as DUPLICATE_KEY
// so the engine can regenerate and retry.
func (r *ReservationRepository) Create(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error {
	var taxRate, taxExcl, taxAmount *float64
	if t := res.Tax(); t != nil {
		taxRate, taxExcl, taxAmount = &t.Rate, &t.SubtotalExclTax, &t.TaxAmount
	}

	const query = `
		INSERT INTO reservations (
			id, store_id, customer_id, number, status,
			start_date, end_date,
			subtotal_amount, deposit_amount, total_amount,
			tax_rate, subtotal_excl_tax, tax_amount,
			customer_notes, deposit_status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err := tx.Exec(ctx, query,
		res.ID(), res.StoreID(), res.CustomerID(), res.Number(), string(res.Status()),
		res.Period().Start(), res.Period().End(),
		res.SubtotalAmount(), res.DepositAmount(), res.TotalAmount(),
		pgconv.Float64PtrToPgtype(taxRate), pgconv.Float64PtrToPgtype(taxExcl), pgconv.Float64PtrToPgtype(taxAmount),
		res.CustomerNotes(), string(res.DepositStatus()), res.CreatedAt(), res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert reservation", err)
	}

	for _, item := range res.Items() {
		if err := r.insertItem(ctx, tx, res.ID(), item, res.CreatedAt()); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReservationRepository) insertItem(ctx context.Context, tx db.DBTX, reservationID uuid.UUID, item reservation.Item, createdAt any) error {
	snapshotJSON, err := json.Marshal(item.Snapshot)
	if err != nil {
		return infra.WrapRepoErr("failed to encode product snapshot", err)
	}
	var breakdownJSON []byte
	if item.Breakdown != nil {
		if breakdownJSON, err = json.Marshal(item.Breakdown); err != nil {
			return infra.WrapRepoErr("failed to encode pricing breakdown", err)
		}
	}
	attrsJSON, err := json.Marshal(item.Attributes)
	if err != nil {
		return infra.WrapRepoErr("failed to encode item attributes", err)
	}

	var taxRate, taxAmount *float64
	if item.Tax != nil {
		taxRate, taxAmount = &item.Tax.Rate, &item.Tax.TaxAmount
	}

	const query = `
		INSERT INTO reservation_items (
			id, reservation_id, product_id, is_custom_item, quantity, duration,
			unit_price, deposit_per_unit, total_price,
			product_snapshot, pricing_breakdown, tax_rate, tax_amount, attributes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err = tx.Exec(ctx, query,
		item.ID, reservationID, pgconv.UUIDPtrToPgtype(item.ProductID), item.IsCustomItem,
		item.Quantity, item.Duration,
		item.UnitPrice, item.DepositPerUnit, item.TotalPrice,
		snapshotJSON, breakdownJSON,
		pgconv.Float64PtrToPgtype(taxRate), pgconv.Float64PtrToPgtype(taxAmount),
		attrsJSON, createdAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert reservation item", err)
	}

	return r.ReplaceItemUnits(ctx, tx, item.ID, item.Units)
}

// UpdateStatus persists a status transition together with the lifecycle
// timestamps it stamps.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error {
	const query = `
		UPDATE reservations
		SET status = $2, picked_up_at = $3, returned_at = $4, updated_at = $5
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		res.ID(), string(res.Status()),
		pgconv.TimePtrToPgtype(res.PickedUpAt()), pgconv.TimePtrToPgtype(res.ReturnedAt()),
		res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation vanished during status update", nil, infra.KindNotFound)
	}
	return nil
}

// UpdateDeposit persists the deposit sub-state and provider references.
func (r *ReservationRepository) UpdateDeposit(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error {
	const query = `
		UPDATE reservations
		SET deposit_status = $2,
		    provider_customer_id = $3,
		    provider_payment_method_id = $4,
		    provider_payment_intent_id = $5,
		    updated_at = $6
		WHERE id = $1`

	_, err := tx.Exec(ctx, query,
		res.ID(), string(res.DepositStatus()),
		pgconv.StringPtrToPgtype(res.ProviderCustomerID()),
		pgconv.StringPtrToPgtype(res.ProviderPaymentMethodID()),
		pgconv.StringPtrToPgtype(res.ProviderPaymentIntentID()),
		res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update deposit state", err)
	}
	return nil
}

// ReplaceItemUnits rewrites the unit assignments of one item.
func (r *ReservationRepository) ReplaceItemUnits(ctx context.Context, tx db.DBTX, itemID uuid.UUID, units []reservation.ItemUnit) error {
	if _, err := tx.Exec(ctx, `DELETE FROM reservation_item_units WHERE reservation_item_id = $1`, itemID); err != nil {
		return infra.WrapRepoErr("failed to clear item units", err)
	}
	for _, u := range units {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservation_item_units (id, reservation_item_id, product_unit_id, identifier_snapshot)
			VALUES ($1,$2,$3,$4)`,
			uuid.New(), itemID, u.UnitID, u.IdentifierSnapshot)
		if err != nil {
			return infra.WrapRepoErr("failed to insert item unit", err)
		}
	}
	return nil
}
