package payment

import "rentflow/internal/pkg/money"

// Summary is derived bookkeeping over a reservation's ledger. Values are
// always recomputed from completed rows, never stored redundantly.
type Summary struct {
	RentalPaid       float64
	DepositCollected float64
	DepositReturned  float64
}

// MaxReturnable is how much deposit can still be given back.
func (s Summary) MaxReturnable() float64 {
	return money.Round2(s.DepositCollected - s.DepositReturned)
}

// Summarize folds completed ledger rows into derived totals. Captured
// holds contribute their captured amount, not the original authorization.
func Summarize(payments []Payment) Summary {
	var s Summary
	for _, p := range payments {
		if p.Status != StatusCompleted {
			continue
		}
		switch p.Type {
		case TypeRental, TypeAdjustment:
			s.RentalPaid += p.Amount
		case TypeDeposit:
			s.DepositCollected += p.Amount
		case TypeDepositHold:
			if p.CapturedAmount != nil {
				s.DepositCollected += *p.CapturedAmount
			}
		case TypeDepositCapture, TypeDamage:
			// companion rows; informational, counted via the hold/charge
		case TypeDepositReturn:
			s.DepositReturned += p.Amount
		}
	}
	s.RentalPaid = money.Round2(s.RentalPaid)
	s.DepositCollected = money.Round2(s.DepositCollected)
	s.DepositReturned = money.Round2(s.DepositReturned)
	return s
}
