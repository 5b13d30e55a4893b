package readstore

import (
	"context"
	"encoding/json"

	"rentflow/internal/domain/pricing"
	"rentflow/internal/domain/product"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductReadStore struct {
	db db.DBTX
}

func NewProductReadStore(dbtx db.DBTX) *ProductReadStore {
	return &ProductReadStore{db: dbtx}
}

const productColumns = `
	id, store_id, name, description, images,
	base_price, deposit_per_unit, pricing_mode, base_period_minutes,
	pricing_tiers, pricing_rates, quantity, track_units, is_active,
	attribute_axes, tax_rate_override`

// FindByID resolves the authoritative product definition. Runs on the
// given dbtx so the engine can re-read inside the booking transaction.
func (p *ProductReadStore) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*shared.ProductSnapshot, error) {
	if dbtx == nil {
		dbtx = p.db
	}
	row := dbtx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	snap, err := scanProduct(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product by ID", err)
	}
	return snap, nil
}

// LockForBooking takes row locks on the products being booked so two
// transactions decrementing the same stock serialize at commit time.
func (p *ProductReadStore) LockForBooking(ctx context.Context, dbtx db.DBTX, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := dbtx.Query(ctx, `SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return infra.WrapRepoErr("failed to lock products for booking", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

// FindUnits returns the serialized units of a product.
func (p *ProductReadStore) FindUnits(ctx context.Context, dbtx db.DBTX, productID uuid.UUID) ([]product.Unit, error) {
	if dbtx == nil {
		dbtx = p.db
	}
	rows, err := dbtx.Query(ctx, `
		SELECT id, product_id, identifier, status, attributes
		FROM product_units
		WHERE product_id = $1
		ORDER BY identifier`, productID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find product units", err)
	}
	defer rows.Close()

	var units []product.Unit
	for rows.Next() {
		var (
			u         product.Unit
			attrsJSON []byte
		)
		if err := rows.Scan(&u.ID, &u.ProductID, &u.Identifier, &u.Status, &attrsJSON); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product unit", err)
		}
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &u.Attributes); err != nil {
				return nil, infra.WrapRepoErr("failed to decode unit attributes", err)
			}
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*shared.ProductSnapshot, error) {
	var (
		id, storeID       uuid.UUID
		name, description string
		depositPerUnit    float64
		quantity          int
		trackUnits        bool
		isActive          bool
		spec              pricing.Spec
		images            []string
		axes              []product.Axis
		imagesJSON        []byte
		tiersJSON         []byte
		ratesJSON         []byte
		axesJSON          []byte
		override          pgtype.Float8
		mode              string
	)
	err := row.Scan(
		&id, &storeID, &name, &description, &imagesJSON,
		&spec.BasePrice, &depositPerUnit, &mode, &spec.BasePeriodMinutes,
		&tiersJSON, &ratesJSON, &quantity, &trackUnits, &isActive,
		&axesJSON, &override,
	)
	if err != nil {
		return nil, err
	}

	spec.Mode = pricing.Mode(mode)

	for _, pair := range []struct {
		raw  []byte
		dest any
	}{
		{imagesJSON, &images},
		{tiersJSON, &spec.Tiers},
		{ratesJSON, &spec.Rates},
		{axesJSON, &axes},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return nil, err
		}
	}

	// Rebuild through the domain constructor so a corrupt row (empty
	// name, negative price, conflicting pricing config) surfaces here
	// instead of deep inside a booking.
	entity, err := product.NewProduct(
		id, storeID, name, description, images,
		depositPerUnit, spec, quantity, trackUnits, axes,
		pgconv.Float64PtrFromPgtype(override),
	)
	if err != nil {
		return nil, err
	}
	return snapshotFromEntity(entity, isActive), nil
}

// snapshotFromEntity flattens the validated entity into the read model
// the usecase layer consumes. IsActive is storage state, not a domain
// invariant, so it rides alongside.
func snapshotFromEntity(p *product.Product, isActive bool) *shared.ProductSnapshot {
	return &shared.ProductSnapshot{
		ID:              p.ID(),
		StoreID:         p.StoreID(),
		Name:            p.Name(),
		Description:     p.Description(),
		Images:          p.Images(),
		DepositPerUnit:  p.DepositPerUnit(),
		Pricing:         p.Pricing(),
		Quantity:        p.Quantity(),
		TrackUnits:      p.TrackUnits(),
		IsActive:        isActive,
		AttributeAxes:   p.AttributeAxes(),
		TaxRateOverride: p.TaxRateOverride(),
	}
}
