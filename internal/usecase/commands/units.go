package commands

import (
	"context"

	"rentflow/internal/domain/product"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/clock"
	"rentflow/internal/pkg/errs"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignUnitsInput struct {
	ReservationID uuid.UUID
	ItemID        uuid.UUID
	UnitIDs       []uuid.UUID
	ActorID       *uuid.UUID
}

type UnitCommands interface {
	AssignUnits(ctx context.Context, input AssignUnitsInput) error
}

type unitInteractor struct {
	stores     StoreReads
	products   ProductReads
	holds      AvailabilityReads
	resReads   ReservationReads
	resWrites  ReservationWrites
	activities ActivityWrites
	pool       *pgxpool.Pool
	clock      clock.Clock
}

func NewUnitInteractor(
	stores StoreReads,
	products ProductReads,
	holds AvailabilityReads,
	resReads ReservationReads,
	resWrites ReservationWrites,
	activities ActivityWrites,
	pool *pgxpool.Pool,
	clk clock.Clock,
) UnitCommands {
	return &unitInteractor{
		stores:     stores,
		products:   products,
		holds:      holds,
		resReads:   resReads,
		resWrites:  resWrites,
		activities: activities,
		pool:       pool,
		clock:      clk,
	}
}

// AssignUnits pins physical units to a reservation item, replacing any
// previous assignment. Identifiers are snapshotted so a later unit rename
// does not rewrite booking history.
func (u *unitInteractor) AssignUnits(ctx context.Context, input AssignUnitsInput) error {
	now := u.clock.Now()

	_, err := shared.RunInTxWithRetry(ctx, u.pool, 2, func(tx db.DBTX) (struct{}, error) {
		res, err := u.resReads.FindByID(ctx, tx, input.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return struct{}{}, ErrReservationNotFound
			}
			return struct{}{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		item := findItem(res, input.ItemID)
		if item == nil || item.ProductID == nil {
			return struct{}{}, ErrUnitNotFound
		}
		if len(input.UnitIDs) > item.Quantity {
			return struct{}{}, ErrTooManyUnitsAssigned
		}

		units, err := u.validateUnits(ctx, tx, res, item, input.UnitIDs)
		if err != nil {
			return struct{}{}, err
		}

		activity, err := res.AssignUnits(input.ItemID, units, input.ActorID, now)
		if err != nil {
			return struct{}{}, err
		}

		if err := u.resWrites.ReplaceItemUnits(ctx, tx, input.ItemID, units); err != nil {
			return struct{}{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := u.activities.Append(ctx, tx, activity); err != nil {
			return struct{}{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return struct{}{}, nil
	})
	return err
}

// validateUnits checks ownership, status and double booking for every
// requested unit and returns the snapshot rows to persist.
func (u *unitInteractor) validateUnits(
	ctx context.Context,
	tx db.DBTX,
	res *reservation.Reservation,
	item *reservation.Item,
	unitIDs []uuid.UUID,
) ([]reservation.ItemUnit, error) {
	productUnits, err := u.products.FindUnits(ctx, tx, *item.ProductID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	byID := make(map[uuid.UUID]product.Unit, len(productUnits))
	for _, unit := range productUnits {
		byID[unit.ID] = unit
	}

	store, err := u.stores.FindByID(ctx, res.StoreID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	period := res.Period()
	blocking := reservation.BlockingStatuses(store.PendingBlocksAvailability)
	holds, err := u.holds.FindHolds(ctx, tx, []uuid.UUID{*item.ProductID}, period.Start(), period.End(), blocking)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	taken := make(map[uuid.UUID]bool)
	for _, hold := range holds {
		if hold.ReservationID == res.ID() {
			continue
		}
		for _, id := range hold.UnitIDs {
			taken[id] = true
		}
	}

	assigned := make([]reservation.ItemUnit, 0, len(unitIDs))
	seen := make(map[uuid.UUID]bool, len(unitIDs))
	for _, id := range unitIDs {
		unit, ok := byID[id]
		if !ok {
			return nil, ErrUnitNotFound
		}
		if unit.ProductID != *item.ProductID {
			return nil, ErrUnitProductMismatch
		}
		if unit.Status != product.UnitAvailable {
			return nil, ErrUnitUnavailable
		}
		if taken[id] || seen[id] {
			return nil, ErrUnitUnavailable
		}
		seen[id] = true
		assigned = append(assigned, reservation.ItemUnit{
			UnitID:             id,
			IdentifierSnapshot: unit.Identifier,
		})
	}
	return assigned, nil
}

func findItem(res *reservation.Reservation, itemID uuid.UUID) *reservation.Item {
	for _, item := range res.Items() {
		if item.ID == itemID {
			found := item
			return &found
		}
	}
	return nil
}
