package pricing

type Mode string

const (
	ModeHour Mode = "hour"
	ModeDay  Mode = "day"
	ModeWeek Mode = "week"
	// ModeRate prices by fixed minute blocks from a rate table instead of
	// proportional tiers.
	ModeRate Mode = "rate"
)

func (m Mode) String() string {
	return string(m)
}

func (m Mode) IsValid() bool {
	switch m {
	case ModeHour, ModeDay, ModeWeek, ModeRate:
		return true
	default:
		return false
	}
}

// Tier is a discount rule that activates once the rental duration reaches
// MinDuration periods.
type Tier struct {
	MinDuration     int     `json:"minDuration"`
	DiscountPercent float64 `json:"discountPercent"`
}

// Rate is a flat price for a block of PeriodMinutes minutes. Tiers and
// rates are mutually exclusive pricing strategies.
type Rate struct {
	PeriodMinutes int     `json:"periodMinutes"`
	Price         float64 `json:"price"`
}

const (
	StrategyFlat   = "flat"
	StrategyTier   = "tier"
	StrategyRate   = "rate"
	StrategyManual = "manual"
	StrategyCustom = "custom"
)

// Breakdown records how an item's unit price was computed. It is snapshotted
// onto the reservation item so a later reprice can tell manual overrides
// apart from computed prices.
type Breakdown struct {
	Strategy         string   `json:"strategy"`
	Duration         int      `json:"duration"`
	BasePrice        float64  `json:"basePrice"`
	TierMinDuration  *int     `json:"tierMinDuration,omitempty"`
	DiscountPercent  *float64 `json:"discountPercent,omitempty"`
	RatePeriodMin    *int     `json:"ratePeriodMinutes,omitempty"`
	Savings          float64  `json:"savings"`
	IsManualOverride bool     `json:"isManualOverride"`
}
