package profiledb

import (
	"context"
	"time"

	profiledomain "github.com/capital-ladder/backend/app/modules/profile/domain"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// SettlementResult is what the atomic settlement returns to the caller.
type SettlementResult struct {
	Plan          profiledomain.SettlementPlan
	WinnerID      sharedtypes.ProfileID
	LoserID       sharedtypes.ProfileID
	LoserCooldown time.Time
}

// ProfileRepo is the persistence surface for ladder profiles.
type ProfileRepo interface {
	GetProfile(ctx context.Context, id sharedtypes.ProfileID) (*Profile, error)
	GetProfileByOwner(ctx context.Context, ownerID string) (*Profile, error)
	FindUnclaimedByName(ctx context.Context, displayName string) (*Profile, error)
	CreateAtBottom(ctx context.Context, profile *Profile) error
	AdoptGhost(ctx context.Context, ghostID sharedtypes.ProfileID, ownerID string, displayName string, phone *string) (*Profile, error)
	ListByRank(ctx context.Context) ([]Profile, error)
	AwardPoints(ctx context.Context, id sharedtypes.ProfileID, points int) error
	SettleMatch(ctx context.Context, winnerID, loserID sharedtypes.ProfileID, winBonus int, cooldown time.Duration) (*SettlementResult, error)
}
