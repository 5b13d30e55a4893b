package readstore

import (
	"context"
	"encoding/json"

	"rentflow/internal/domain/pricing"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"
	"rentflow/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

// FindByID reconstructs the full reservation aggregate, items and unit
// assignments included. Lifecycle commands pass their own dbtx so the
// read happens inside the mutating transaction.
func (r *ReservationReadStore) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	if dbtx == nil {
		dbtx = r.db
	}

	const query = `
		SELECT id, store_id, customer_id, number, status,
		       start_date, end_date,
		       subtotal_amount, deposit_amount, total_amount,
		       tax_rate, subtotal_excl_tax, tax_amount,
		       customer_notes, deposit_status,
		       provider_customer_id, provider_payment_method_id, provider_payment_intent_id,
		       picked_up_at, returned_at, created_at, updated_at
		FROM reservations
		WHERE id = $1`

	var (
		resID, storeID, customerID             uuid.UUID
		number, status, notes, depositStatus   string
		startDate, endDate, createdAt, updated pgtype.Timestamptz
		subtotal, deposit, total               float64
		taxRate, taxExcl, taxAmount            pgtype.Float8
		provCustomer, provMethod, provIntent   pgtype.Text
		pickedUpAt, returnedAt                 pgtype.Timestamptz
	)
	err := dbtx.QueryRow(ctx, query, id).Scan(
		&resID, &storeID, &customerID, &number, &status,
		&startDate, &endDate,
		&subtotal, &deposit, &total,
		&taxRate, &taxExcl, &taxAmount,
		&notes, &depositStatus,
		&provCustomer, &provMethod, &provIntent,
		&pickedUpAt, &returnedAt, &createdAt, &updated,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	items, err := r.findItems(ctx, dbtx, resID)
	if err != nil {
		return nil, err
	}

	period, err := reservation.NewPeriod(startDate.Time, endDate.Time)
	if err != nil {
		return nil, infra.WrapRepoErr("stored reservation has invalid period", err)
	}

	var taxFields *reservation.TaxFields
	if taxRate.Valid {
		taxFields = &reservation.TaxFields{
			Rate:            taxRate.Float64,
			SubtotalExclTax: taxExcl.Float64,
			TaxAmount:       taxAmount.Float64,
		}
	}

	return reservation.Reconstruct(
		resID, storeID, customerID,
		number,
		reservation.Status(status),
		period,
		items,
		subtotal, deposit, total,
		taxFields,
		notes,
		reservation.DepositStatus(depositStatus),
		pgconv.StringPtrFromPgtype(provCustomer),
		pgconv.StringPtrFromPgtype(provMethod),
		pgconv.StringPtrFromPgtype(provIntent),
		pgconv.TimePtrFromPgtype(pickedUpAt),
		pgconv.TimePtrFromPgtype(returnedAt),
		createdAt.Time, updated.Time,
	), nil
}

func (r *ReservationReadStore) findItems(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]reservation.Item, error) {
	const query = `
		SELECT id, product_id, is_custom_item, quantity, duration,
		       unit_price, deposit_per_unit, total_price,
		       product_snapshot, pricing_breakdown, tax_rate, tax_amount, attributes
		FROM reservation_items
		WHERE reservation_id = $1
		ORDER BY created_at`

	rows, err := dbtx.Query(ctx, query, reservationID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query reservation items", err)
	}
	defer rows.Close()

	var items []reservation.Item
	for rows.Next() {
		var (
			item                 reservation.Item
			productID            pgtype.UUID
			snapshotJSON, bdJSON []byte
			attrsJSON            []byte
			taxRate, taxAmount   pgtype.Float8
		)
		if err := rows.Scan(
			&item.ID, &productID, &item.IsCustomItem, &item.Quantity, &item.Duration,
			&item.UnitPrice, &item.DepositPerUnit, &item.TotalPrice,
			&snapshotJSON, &bdJSON, &taxRate, &taxAmount, &attrsJSON,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation item", err)
		}

		item.ProductID = pgconv.UUIDPtrFromPgtype(productID)
		if len(snapshotJSON) > 0 {
			if err := json.Unmarshal(snapshotJSON, &item.Snapshot); err != nil {
				return nil, infra.WrapRepoErr("failed to decode product snapshot", err)
			}
		}
		if len(bdJSON) > 0 {
			var bd pricing.Breakdown
			if err := json.Unmarshal(bdJSON, &bd); err != nil {
				return nil, infra.WrapRepoErr("failed to decode pricing breakdown", err)
			}
			item.Breakdown = &bd
		}
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &item.Attributes); err != nil {
				return nil, infra.WrapRepoErr("failed to decode item attributes", err)
			}
		}
		if taxRate.Valid {
			item.Tax = &reservation.TaxFields{Rate: taxRate.Float64, TaxAmount: taxAmount.Float64}
		}

		units, err := r.findItemUnits(ctx, dbtx, item.ID)
		if err != nil {
			return nil, err
		}
		item.Units = units

		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ReservationReadStore) findItemUnits(ctx context.Context, dbtx db.DBTX, itemID uuid.UUID) ([]reservation.ItemUnit, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT product_unit_id, identifier_snapshot
		FROM reservation_item_units
		WHERE reservation_item_id = $1`, itemID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query item units", err)
	}
	defer rows.Close()

	var units []reservation.ItemUnit
	for rows.Next() {
		var u reservation.ItemUnit
		if err := rows.Scan(&u.UnitID, &u.IdentifierSnapshot); err != nil {
			return nil, infra.WrapRepoErr("failed to scan item unit", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// ListByCustomer returns the customer's reservations, newest first.
func (r *ReservationReadStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*queries.ReservationListItem, error) {
	const query = `
		SELECT id, number, status, start_date, end_date,
		       subtotal_amount, deposit_amount, total_amount, deposit_status, created_at
		FROM reservations
		WHERE customer_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	var result []*queries.ReservationListItem
	for rows.Next() {
		var item queries.ReservationListItem
		if err := rows.Scan(
			&item.ID, &item.Number, &item.Status, &item.StartDate, &item.EndDate,
			&item.SubtotalAmount, &item.DepositAmount, &item.TotalAmount,
			&item.DepositStatus, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation list row", err)
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}
