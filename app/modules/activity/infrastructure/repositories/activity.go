package activitydb

import (
	"context"
	"fmt"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivityRepo is the persistence surface for the activity feed and push
// token registry.
type ActivityRepo interface {
	Insert(ctx context.Context, activity *Activity) error
	ListRecent(ctx context.Context, limit int) ([]Activity, error)
	SavePushToken(ctx context.Context, profileID sharedtypes.ProfileID, token string) error
	ListTokensFor(ctx context.Context, profileIDs []sharedtypes.ProfileID) ([]PushToken, error)
	ListAllTokens(ctx context.Context) ([]PushToken, error)
}

// ActivityRepoImpl handles database operations for the activity feed.
type ActivityRepoImpl struct {
	DB *bun.DB
}

// Insert appends one activity record.
func (r *ActivityRepoImpl) Insert(ctx context.Context, activity *Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if _, err := r.DB.NewInsert().Model(activity).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListRecent returns the newest activity entries.
func (r *ActivityRepoImpl) ListRecent(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	var activities []Activity
	err := r.DB.NewSelect().
		Model(&activities).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// SavePushToken upserts a device token for a profile.
func (r *ActivityRepoImpl) SavePushToken(ctx context.Context, profileID sharedtypes.ProfileID, token string) error {
	pt := &PushToken{Token: token, ProfileID: profileID}
	_, err := r.DB.NewInsert().
		Model(pt).
		On("CONFLICT (token) DO UPDATE").
		Set("profile_id = EXCLUDED.profile_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save push token: %w", err)
	}
	return nil
}

// ListTokensFor returns the tokens registered by the given profiles.
func (r *ActivityRepoImpl) ListTokensFor(ctx context.Context, profileIDs []sharedtypes.ProfileID) ([]PushToken, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	var tokens []PushToken
	err := r.DB.NewSelect().
		Model(&tokens).
		Where("profile_id IN (?)", bun.In(profileIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	return tokens, nil
}

// ListAllTokens returns every registered token. The go-live broadcast notifies
// the whole league.
func (r *ActivityRepoImpl) ListAllTokens(ctx context.Context) ([]PushToken, error) {
	var tokens []PushToken
	err := r.DB.NewSelect().
		Model(&tokens).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	return tokens, nil
}
