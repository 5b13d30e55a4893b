package readstore

import (
	"context"

	"rentflow/internal/domain/payment"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type PaymentReadStore struct {
	db db.DBTX
}

func NewPaymentReadStore(dbtx db.DBTX) *PaymentReadStore {
	return &PaymentReadStore{db: dbtx}
}

const paymentColumns = `
	id, reservation_id, type, method, status, amount, captured_amount,
	reason, provider_charge_id, provider_intent_id, refund_of_payment_id,
	created_at, updated_at`

func (p *PaymentReadStore) ListByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]payment.Payment, error) {
	if dbtx == nil {
		dbtx = p.db
	}
	rows, err := dbtx.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE reservation_id = $1 ORDER BY created_at`,
		reservationID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list payments", err)
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		entry, err := scanPayment(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment", err)
		}
		payments = append(payments, *entry)
	}
	return payments, rows.Err()
}

func (p *PaymentReadStore) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*payment.Payment, error) {
	if dbtx == nil {
		dbtx = p.db
	}
	row := dbtx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)

	entry, err := scanPayment(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment by ID", err)
	}
	return entry, nil
}

// FindAuthorizedHold returns the open deposit_hold row for a reservation,
// or a NOT_FOUND kind when no hold is live.
func (p *PaymentReadStore) FindAuthorizedHold(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (*payment.Payment, error) {
	if dbtx == nil {
		dbtx = p.db
	}
	row := dbtx.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE reservation_id = $1 AND type = $2 AND status = $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		reservationID, string(payment.TypeDepositHold), string(payment.StatusAuthorized))

	entry, err := scanPayment(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no authorized deposit hold", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find deposit hold", err)
	}
	return entry, nil
}

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var (
		entry            payment.Payment
		captured         pgtype.Float8
		chargeID, intent pgtype.Text
		refundOf         pgtype.UUID
	)
	err := row.Scan(
		&entry.ID, &entry.ReservationID, &entry.Type, &entry.Method, &entry.Status,
		&entry.Amount, &captured, &entry.Reason, &chargeID, &intent, &refundOf,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.CapturedAmount = pgconv.Float64PtrFromPgtype(captured)
	entry.ProviderChargeID = pgconv.StringPtrFromPgtype(chargeID)
	entry.ProviderIntentID = pgconv.StringPtrFromPgtype(intent)
	entry.RefundOfPaymentID = pgconv.UUIDPtrFromPgtype(refundOf)
	return &entry, nil
}
