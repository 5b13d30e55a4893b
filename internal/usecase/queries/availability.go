package queries

import (
	"context"
	"time"

	"rentflow/internal/domain/availability"
	"rentflow/internal/domain/product"
	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/errs"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errs.New("product not found")
	ErrStoreNotFound   = errs.New("store not found")
)

type StoreReads interface {
	FindByID(ctx context.Context, id uuid.UUID) (*shared.StoreSnapshot, error)
}

type ProductReads interface {
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*shared.ProductSnapshot, error)
	FindUnits(ctx context.Context, dbtx db.DBTX, productID uuid.UUID) ([]product.Unit, error)
}

type HoldReads interface {
	FindHolds(ctx context.Context, dbtx db.DBTX, productIDs []uuid.UUID, start, end time.Time, blocking []reservation.Status) ([]availability.Hold, error)
}

type CheckAvailabilityInput struct {
	ProductID uuid.UUID
	Start     time.Time
	End       time.Time
	Quantity  int
	// ExcludeReservationID ignores one reservation's own holds, for
	// availability checks while editing an existing booking.
	ExcludeReservationID *uuid.UUID
	Attributes           map[string]string
}

type AvailabilityQueries interface {
	Check(ctx context.Context, input CheckAvailabilityInput) (*AvailabilityResult, error)
}

type availabilityQueryService struct {
	stores    StoreReads
	products  ProductReads
	holds     HoldReads
	allocator availability.Allocator
}

func NewAvailabilityQueryService(stores StoreReads, products ProductReads, holds HoldReads) AvailabilityQueries {
	return &availabilityQueryService{
		stores:    stores,
		products:  products,
		holds:     holds,
		allocator: availability.GreedyAllocator{},
	}
}

// Check answers how many of a product are free over a window. Advisory
// only: the booking transaction re-proves availability under row locks,
// so a positive answer here can still lose the race.
func (s *availabilityQueryService) Check(ctx context.Context, input CheckAvailabilityInput) (*AvailabilityResult, error) {
	if input.Quantity < 1 {
		input.Quantity = 1
	}

	prod, err := s.products.FindByID(ctx, nil, input.ProductID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	store, err := s.stores.FindByID(ctx, prod.StoreID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	blocking := reservation.BlockingStatuses(store.PendingBlocksAvailability)
	holds, err := s.holds.FindHolds(ctx, nil, []uuid.UUID{input.ProductID}, input.Start, input.End, blocking)
	if err != nil {
		return nil, err
	}

	window := availability.Window{Start: input.Start, End: input.End}
	result := &AvailabilityResult{
		ProductID: input.ProductID,
		Requested: input.Quantity,
	}

	if prod.TrackUnits && len(prod.AttributeAxes) > 0 {
		units, err := s.products.FindUnits(ctx, nil, input.ProductID)
		if err != nil {
			return nil, err
		}
		capacity := availability.CapacityBySignature(units, holds, window, input.ExcludeReservationID)
		result.BySignature = capacity

		if len(input.Attributes) > 0 {
			free := capacity[availability.Signature(input.Attributes)]
			result.Available = free
			result.Satisfiable = free >= input.Quantity
			return result, nil
		}

		total := 0
		for _, free := range capacity {
			total += free
		}
		result.Available = total
		_, allocErr := s.allocator.Allocate(input.Quantity, capacity)
		result.Satisfiable = allocErr == nil
		return result, nil
	}

	free := availability.Available(prod.Quantity, holds, input.ProductID, window, input.ExcludeReservationID)
	result.Available = free
	result.Satisfiable = free >= input.Quantity
	return result, nil
}
