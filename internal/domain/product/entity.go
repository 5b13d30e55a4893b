package product

import (
	"errors"

	"rentflow/internal/domain/pricing"

	"github.com/google/uuid"
)

var (
	ErrEmptyName       = errors.New("product name cannot be empty")
	ErrNegativePrice   = errors.New("base price cannot be negative")
	ErrNegativeDeposit = errors.New("deposit per unit cannot be negative")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Axis is one variant dimension of a product (e.g. size, color). Order is
// significant for display only; signatures sort keys themselves.
type Axis struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitMaintenance UnitStatus = "maintenance"
	UnitRetired     UnitStatus = "retired"
)

func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitAvailable, UnitMaintenance, UnitRetired:
		return true
	default:
		return false
	}
}

// Unit is a serialized physical item belonging to exactly one product.
// It is never deleted while a reservation assignment references it; the
// assignment keeps its own identifier snapshot regardless.
type Unit struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Identifier string
	Status     UnitStatus
	Attributes map[string]string
}

type Product struct {
	id              uuid.UUID
	storeID         uuid.UUID
	name            string
	description     string
	images          []string
	depositPerUnit  float64
	pricing         pricing.Spec
	quantity        int
	trackUnits      bool
	attributeAxes   []Axis
	taxRateOverride *float64
}

func NewProduct(
	id, storeID uuid.UUID,
	name, description string,
	images []string,
	depositPerUnit float64,
	spec pricing.Spec,
	quantity int,
	trackUnits bool,
	axes []Axis,
	taxRateOverride *float64,
) (*Product, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if spec.BasePrice < 0 {
		return nil, ErrNegativePrice
	}
	if depositPerUnit < 0 {
		return nil, ErrNegativeDeposit
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if len(spec.Tiers) > 0 && len(spec.Rates) > 0 {
		return nil, pricing.ErrConflictingPricing
	}

	return &Product{
		id:              id,
		storeID:         storeID,
		name:            name,
		description:     description,
		images:          images,
		depositPerUnit:  depositPerUnit,
		pricing:         spec,
		quantity:        quantity,
		trackUnits:      trackUnits,
		attributeAxes:   axes,
		taxRateOverride: taxRateOverride,
	}, nil
}

func (p *Product) ID() uuid.UUID             { return p.id }
func (p *Product) StoreID() uuid.UUID        { return p.storeID }
func (p *Product) Name() string              { return p.name }
func (p *Product) Description() string       { return p.description }
func (p *Product) Images() []string          { return p.images }
func (p *Product) DepositPerUnit() float64   { return p.depositPerUnit }
func (p *Product) Pricing() pricing.Spec     { return p.pricing }
func (p *Product) Quantity() int             { return p.quantity }
func (p *Product) TrackUnits() bool          { return p.trackUnits }
func (p *Product) AttributeAxes() []Axis     { return p.attributeAxes }
func (p *Product) TaxRateOverride() *float64 { return p.taxRateOverride }
