package readstore

import (
	"context"
	"time"

	"rentflow/internal/domain/availability"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"

	"github.com/google/uuid"
)

type AvailabilityReadStore struct {
	db db.DBTX
}

func NewAvailabilityReadStore(dbtx db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{db: dbtx}
}

// FindHolds loads every reservation item in a blocking status whose
// interval overlaps [start,end) for the given products, together with any
// assigned unit ids. Runs on the caller's dbtx so the reservation engine
// can re-check inside the booking transaction.
func (a *AvailabilityReadStore) FindHolds(
	ctx context.Context,
	dbtx db.DBTX,
	productIDs []uuid.UUID,
	start, end time.Time,
	blocking []reservation.Status,
) ([]availability.Hold, error) {
	if dbtx == nil {
		dbtx = a.db
	}
	if len(productIDs) == 0 {
		return nil, nil
	}

	statuses := make([]string, len(blocking))
	for i, s := range blocking {
		statuses[i] = string(s)
	}

	// Half-open overlap: existing.start < requested.end AND existing.end > requested.start
	const query = `
		SELECT r.id, ri.product_id, ri.quantity, r.start_date, r.end_date,
		       COALESCE(array_agg(riu.product_unit_id) FILTER (WHERE riu.product_unit_id IS NOT NULL), '{}')
		FROM reservations r
		JOIN reservation_items ri ON ri.reservation_id = r.id
		LEFT JOIN reservation_item_units riu ON riu.reservation_item_id = ri.id
		WHERE ri.product_id = ANY($1)
		  AND r.status = ANY($2)
		  AND r.start_date < $4
		  AND r.end_date > $3
		GROUP BY r.id, ri.id, ri.product_id, ri.quantity, r.start_date, r.end_date`

	rows, err := dbtx.Query(ctx, query, productIDs, statuses, start, end)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query blocking reservations", err)
	}
	defer rows.Close()

	var holds []availability.Hold
	for rows.Next() {
		var (
			h       availability.Hold
			pid     uuid.UUID
			unitIDs []uuid.UUID
		)
		if err := rows.Scan(&h.ReservationID, &pid, &h.Quantity, &h.Window.Start, &h.Window.End, &unitIDs); err != nil {
			return nil, infra.WrapRepoErr("failed to scan blocking reservation", err)
		}
		h.ProductID = pid
		h.UnitIDs = unitIDs
		holds = append(holds, h)
	}
	return holds, rows.Err()
}
