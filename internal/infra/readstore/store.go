package readstore

import (
	"context"
	"encoding/json"

	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/geo"
	"rentflow/internal/pkg/pgconv"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type StoreReadStore struct {
	db db.DBTX
}

func NewStoreReadStore(dbtx db.DBTX) *StoreReadStore {
	return &StoreReadStore{db: dbtx}
}

func (s *StoreReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.StoreSnapshot, error) {
	const query = `
		SELECT id, name, tax_enabled, tax_rate, prices_include_tax,
		       pending_blocks_availability, business_hours,
		       advance_notice_minutes, min_rental_minutes, max_rental_minutes,
		       latitude, longitude,
		       delivery_enabled, delivery_max_km, delivery_fee_tiers
		FROM stores
		WHERE id = $1`

	var (
		snap         shared.StoreSnapshot
		hoursJSON    []byte
		feeTiersJSON []byte
		lat, lng     pgtype.Float8
	)
	err := s.db.QueryRow(ctx, query, id).Scan(
		&snap.ID, &snap.Name,
		&snap.Tax.Enabled, &snap.Tax.DefaultRate, &snap.Tax.PricesIncludeTax,
		&snap.PendingBlocksAvailability, &hoursJSON,
		&snap.AdvanceNoticeMin, &snap.MinRentalMin, &snap.MaxRentalMin,
		&lat, &lng,
		&snap.Delivery.Enabled, &snap.Delivery.MaxKm, &feeTiersJSON,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("store not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find store by ID", err)
	}

	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &snap.BusinessHours); err != nil {
			return nil, infra.WrapRepoErr("failed to decode business hours", err)
		}
	}
	if len(feeTiersJSON) > 0 {
		if err := json.Unmarshal(feeTiersJSON, &snap.Delivery.FeeTiers); err != nil {
			return nil, infra.WrapRepoErr("failed to decode delivery fee tiers", err)
		}
	}
	if lat.Valid && lng.Valid {
		snap.Location = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
	}

	return &snap, nil
}
