package profiledb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	profiledomain "github.com/capital-ladder/backend/app/modules/profile/domain"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrProfileNotFound is returned when a profile id or owner does not resolve.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepoImpl handles database operations for profiles.
type ProfileRepoImpl struct {
	DB *bun.DB
}

// GetProfile retrieves a profile by id.
func (r *ProfileRepoImpl) GetProfile(ctx context.Context, id sharedtypes.ProfileID) (*Profile, error) {
	profile := new(Profile)
	err := r.DB.NewSelect().
		Model(profile).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetProfileByOwner retrieves the profile owned by an account.
func (r *ProfileRepoImpl) GetProfileByOwner(ctx context.Context, ownerID string) (*Profile, error) {
	profile := new(Profile)
	err := r.DB.NewSelect().
		Model(profile).
		Where("owner_id = ?", ownerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by owner: %w", err)
	}
	return profile, nil
}

// FindUnclaimedByName finds a ghost profile by display name, case-insensitive.
func (r *ProfileRepoImpl) FindUnclaimedByName(ctx context.Context, displayName string) (*Profile, error) {
	profile := new(Profile)
	err := r.DB.NewSelect().
		Model(profile).
		Where("owner_id IS NULL").
		Where("LOWER(display_name) = LOWER(?)", displayName).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find unclaimed profile: %w", err)
	}
	return profile, nil
}

// CreateAtBottom inserts a new profile at the bottom of the ladder. The rank
// assignment and the insert share a transaction so two simultaneous signups
// cannot claim the same rank.
func (r *ProfileRepoImpl) CreateAtBottom(ctx context.Context, profile *Profile) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the current bottom row so concurrent signups serialize on the
	// rank assignment instead of racing the unique constraint.
	bottom := new(Profile)
	err = tx.NewSelect().
		Model(bottom).
		Order("rank DESC").
		Limit(1).
		For("UPDATE").
		Scan(ctx)
	maxRank := 0
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read max rank: %w", err)
		}
	} else {
		maxRank = bottom.Rank
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.Rank = maxRank + 1

	if _, err := tx.NewInsert().Model(profile).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AdoptGhost performs the one-time identity merge: the new account takes over
// the ghost's rank, rating and points, and the ghost row is deleted in the
// same transaction.
func (r *ProfileRepoImpl) AdoptGhost(ctx context.Context, ghostID sharedtypes.ProfileID, ownerID string, displayName string, phone *string) (*Profile, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ghost := new(Profile)
	err = tx.NewSelect().
		Model(ghost).
		Where("id = ?", ghostID).
		Where("owner_id IS NULL").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to lock ghost profile: %w", err)
	}

	if _, err := tx.NewDelete().Model((*Profile)(nil)).Where("id = ?", ghostID).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to delete ghost profile: %w", err)
	}

	adopted := &Profile{
		ID:          uuid.New(),
		OwnerID:     &ownerID,
		DisplayName: displayName,
		Phone:       phone,
		AvatarURL:   ghost.AvatarURL,
		FargoRating: ghost.FargoRating,
		Rank:        ghost.Rank,
		Points:      ghost.Points,
	}
	if _, err := tx.NewInsert().Model(adopted).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert adopted profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return adopted, nil
}

// ListByRank returns every profile ordered from best to worst rank.
func (r *ProfileRepoImpl) ListByRank(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	err := r.DB.NewSelect().
		Model(&profiles).
		Order("rank ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// AwardPoints adds points to a profile. Points only ever go up.
func (r *ProfileRepoImpl) AwardPoints(ctx context.Context, id sharedtypes.ProfileID, points int) error {
	if points < 0 {
		return fmt.Errorf("points award must be non-negative, got %d", points)
	}
	res, err := r.DB.NewUpdate().
		Model((*Profile)(nil)).
		Set("points = points + ?", points).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to award points: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SettleMatch is the one operation that must be atomic: both profile rows are
// locked in ascending id order (fixed global order, so two concurrent
// settlements touching the same pair cannot deadlock), the conditional rank
// swap and the win bonus are applied, and the loser's cooldown is set. Any
// failure rolls the whole settlement back.
func (r *ProfileRepoImpl) SettleMatch(ctx context.Context, winnerID, loserID sharedtypes.ProfileID, winBonus int, cooldown time.Duration) (*SettlementResult, error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked []Profile
	err = tx.NewSelect().
		Model(&locked).
		Where("id IN (?)", bun.In([]sharedtypes.ProfileID{winnerID, loserID})).
		Order("id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock profiles for settlement: %w", err)
	}
	if len(locked) != 2 {
		return nil, ErrProfileNotFound
	}

	var winner, loser *Profile
	for i := range locked {
		switch locked[i].ID {
		case winnerID:
			winner = &locked[i]
		case loserID:
			loser = &locked[i]
		}
	}
	if winner == nil || loser == nil {
		return nil, ErrProfileNotFound
	}

	plan := profiledomain.PlanSettlement(winner.Rank, loser.Rank)
	cooldownUntil := time.Now().Add(cooldown)

	if plan.Swapped {
		// Two-step swap through a sentinel to avoid tripping the unique
		// constraint on rank mid-update.
		if _, err := tx.NewUpdate().
			Model((*Profile)(nil)).
			Set("rank = ?", -1).
			Where("id = ?", winner.ID).
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to stage winner rank: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Profile)(nil)).
			Set("rank = ?", plan.NewLoserRank).
			Set("cooldown_until = ?", cooldownUntil).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", loser.ID).
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to update loser rank: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Profile)(nil)).
			Set("rank = ?", plan.NewWinnerRank).
			Set("points = points + ?", winBonus).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", winner.ID).
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to update winner rank: %w", err)
		}
	} else {
		if _, err := tx.NewUpdate().
			Model((*Profile)(nil)).
			Set("points = points + ?", winBonus).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", winner.ID).
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to award win bonus: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Profile)(nil)).
			Set("cooldown_until = ?", cooldownUntil).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", loser.ID).
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to set loser cooldown: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return &SettlementResult{
		Plan:          plan,
		WinnerID:      winnerID,
		LoserID:       loserID,
		LoserCooldown: cooldownUntil,
	}, nil
}
