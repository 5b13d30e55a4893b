package writerepo

import (
	"context"

	"rentflow/internal/domain/payment"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type PaymentRepository struct{}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

func (p *PaymentRepository) Insert(ctx context.Context, tx db.DBTX, entry *payment.Payment) error {
	const query = `
		INSERT INTO payments (
			id, reservation_id, type, method, status, amount, captured_amount,
			reason, provider_charge_id, provider_intent_id, refund_of_payment_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.ReservationID, string(entry.Type), string(entry.Method), string(entry.Status),
		entry.Amount, pgconv.Float64PtrToPgtype(entry.CapturedAmount),
		entry.Reason,
		pgconv.StringPtrToPgtype(entry.ProviderChargeID),
		pgconv.StringPtrToPgtype(entry.ProviderIntentID),
		pgconv.UUIDPtrToPgtype(entry.RefundOfPaymentID),
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert payment", err)
	}
	return nil
}

// ResolveHold is the only permitted payment mutation: an authorized
// deposit_hold row moving to completed (capture) or cancelled (release).
func (p *PaymentRepository) ResolveHold(ctx context.Context, tx db.DBTX, entry *payment.Payment) error {
	const query = `
		UPDATE payments
		SET status = $2, captured_amount = $3, reason = $4, updated_at = $5
		WHERE id = $1 AND type = $6 AND status = $7`

	tag, err := tx.Exec(ctx, query,
		entry.ID, string(entry.Status),
		pgconv.Float64PtrToPgtype(entry.CapturedAmount), entry.Reason, entry.UpdatedAt,
		string(payment.TypeDepositHold), string(payment.StatusAuthorized),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to resolve deposit hold", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("deposit hold already resolved", nil, infra.KindConflict)
	}
	return nil
}

// Delete removes a manually entered row. Callers verify the method is not
// provider-managed before asking.
func (p *PaymentRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
	}
	return nil
}
