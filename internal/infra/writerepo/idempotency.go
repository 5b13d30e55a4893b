package writerepo

import (
	"context"
	"time"

	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"
	"rentflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// IdempotencyRepository backs replay protection for reservation creation.
// The first insert wins; replays read the stored outcome.
type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

// TryInsert claims the key for this request. The returned flag reports
// whether this caller won the race; losers consult Get for the outcome.
func (i *IdempotencyRepository) TryInsert(ctx context.Context, key, customerID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	const query = `
		INSERT INTO idempotency_keys (key, customer_id, endpoint, request_hash, status, expires_at)
		VALUES ($1,$2,$3,$4,'processing',$5)
		ON CONFLICT (key, customer_id) DO NOTHING`

	tag, err := i.db.Exec(ctx, query, key, customerID, endpoint, requestHash, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (i *IdempotencyRepository) Get(ctx context.Context, key, customerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	const query = `
		SELECT key, customer_id, endpoint, request_hash, status, response_hash, result_reservation_id, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND customer_id = $2`

	var (
		rec          shared.IdempotencyRecord
		responseHash pgtype.Text
		resultID     pgtype.UUID
	)
	err := i.db.QueryRow(ctx, query, key, customerID).Scan(
		&rec.Key, &rec.CustomerID, &rec.Endpoint, &rec.RequestHash,
		&rec.Status, &responseHash, &resultID, &rec.ExpiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read idempotency key", err)
	}
	rec.ResponseHash = pgconv.StringPtrFromPgtype(responseHash)
	rec.ResultReservationID = pgconv.UUIDPtrFromPgtype(resultID)
	return &rec, nil
}

func (i *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, customerID uuid.UUID, responseHash string, resultReservationID uuid.UUID) error {
	const query = `
		UPDATE idempotency_keys
		SET status = 'completed', response_hash = $3, result_reservation_id = $4
		WHERE key = $1 AND customer_id = $2`

	if _, err := tx.Exec(ctx, query, key, customerID, responseHash, resultReservationID); err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	return nil
}
