package profiledb

import (
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/uptrace/bun"
)

// Profile is a ladder player row. Rank is dense and unique across all
// profiles; lower numbers are better standing. OwnerID is nil for ghost
// profiles awaiting adoption.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID            sharedtypes.ProfileID `bun:"id,pk,type:uuid"`
	OwnerID       *string               `bun:"owner_id,unique,nullzero"`
	DisplayName   string                `bun:"display_name,notnull"`
	Phone         *string               `bun:"phone,nullzero"`
	AvatarURL     *string               `bun:"avatar_url,nullzero"`
	FargoRating   int                   `bun:"fargo_rating,notnull,default:0"`
	Rank          int                   `bun:"rank,notnull,unique"`
	Points        int                   `bun:"points,notnull,default:0"`
	CooldownUntil *time.Time            `bun:"cooldown_until,nullzero"`
	CreatedAt     time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Claimed reports whether an account owns this profile.
func (p *Profile) Claimed() bool {
	return p.OwnerID != nil
}

// InCooldown reports whether the profile may not issue challenges at now.
func (p *Profile) InCooldown(now time.Time) bool {
	return p.CooldownUntil != nil && p.CooldownUntil.After(now)
}
