package readstore

import (
	"context"
	"encoding/json"

	"rentflow/internal/domain/reservation"
	"rentflow/internal/infra"
	"rentflow/internal/infra/db"
	"rentflow/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ActivityReadStore struct {
	db db.DBTX
}

func NewActivityReadStore(dbtx db.DBTX) *ActivityReadStore {
	return &ActivityReadStore{db: dbtx}
}

// ListByReservation returns the audit trail oldest first.
func (a *ActivityReadStore) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservation.Activity, error) {
	const query = `
		SELECT id, reservation_id, activity_type, actor_id, description, metadata, created_at
		FROM reservation_activities
		WHERE reservation_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := a.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list activities", err)
	}
	defer rows.Close()

	var activities []reservation.Activity
	for rows.Next() {
		var (
			activity     reservation.Activity
			activityType string
			actorID      pgtype.UUID
			metadataJSON []byte
		)
		if err := rows.Scan(
			&activity.ID, &activity.ReservationID, &activityType,
			&actorID, &activity.Description, &metadataJSON, &activity.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan activity", err)
		}
		activity.Type = reservation.ActivityType(activityType)
		activity.ActorID = pgconv.UUIDPtrFromPgtype(actorID)
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &activity.Metadata); err != nil {
				return nil, infra.WrapRepoErr("failed to decode activity metadata", err)
			}
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate activities", err)
	}
	return activities, nil
}
