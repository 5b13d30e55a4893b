package writerepo

import (
	"context"
	"encoding/json"

	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"
)

// ActivityRepository appends to the reservation audit trail. There is no
// update or delete; the table is the system's source of truth for what
// happened when.
type ActivityRepository struct{}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (a *ActivityRepository) Append(ctx context.Context, tx db.DBTX, activity reservation.Activity) error {
	var metadataJSON []byte
	if activity.Metadata != nil {
		var err error
		if metadataJSON, err = json.Marshal(activity.Metadata); err != nil {
			return infra.WrapRepoErr("failed to encode activity metadata", err)
		}
	}

	const query = `
		INSERT INTO reservation_activities (id, reservation_id, activity_type, actor_id, description, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := tx.Exec(ctx, query,
		activity.ID, activity.ReservationID, string(activity.Type),
		pgconv.UUIDPtrToPgtype(activity.ActorID),
		activity.Description, metadataJSON, activity.CreatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append activity", err)
	}
	return nil
}
