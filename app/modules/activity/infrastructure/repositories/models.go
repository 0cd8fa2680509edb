package activitydb

import (
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Activity is one append-only feed entry. Rows are never mutated after
// insertion; social features referencing them live elsewhere.
type Activity struct {
	bun.BaseModel `bun:"table:activities,alias:a"`

	ID        uuid.UUID                  `bun:"id,pk,type:uuid"`
	ActorID   sharedtypes.ProfileID      `bun:"actor_id,notnull,type:uuid"`
	Action    sharedtypes.ActivityAction `bun:"action,notnull"`
	Metadata  map[string]interface{}     `bun:"metadata,type:jsonb"`
	CreatedAt time.Time                  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PushToken maps a profile to a device push token. A profile may register
// several devices.
type PushToken struct {
	bun.BaseModel `bun:"table:push_tokens,alias:pt"`

	Token     string                `bun:"token,pk"`
	ProfileID sharedtypes.ProfileID `bun:"profile_id,notnull,type:uuid"`
	CreatedAt time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
