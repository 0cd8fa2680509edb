package challengedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrChallengeNotFound is returned when a challenge id does not resolve.
var ErrChallengeNotFound = errors.New("challenge not found")

// ErrStaleStatus is returned when a compare-and-swap transition finds the row
// no longer in the expected status. The row is unchanged.
var ErrStaleStatus = errors.New("challenge status changed concurrently")

// ChallengeRepoImpl handles database operations for challenges.
type ChallengeRepoImpl struct {
	DB *bun.DB
}

// GetChallenge retrieves a challenge by id.
func (r *ChallengeRepoImpl) GetChallenge(ctx context.Context, id sharedtypes.ChallengeID) (*Challenge, error) {
	challenge := new(Challenge)
	err := r.DB.NewSelect().
		Model(challenge).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return challenge, nil
}

// CreateChallenge inserts a new pending challenge.
func (r *ChallengeRepoImpl) CreateChallenge(ctx context.Context, challenge *Challenge) error {
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	if challenge.Venue == "" {
		challenge.Venue = DefaultVenue
	}
	if _, err := r.DB.NewInsert().Model(challenge).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

// TransitionStatus moves a challenge from one status to another, applying the
// patch in the same statement. The WHERE clause on the old status makes this
// a compare-and-swap; a concurrent transition that got there first leaves
// zero rows affected and the caller gets ErrStaleStatus.
func (r *ChallengeRepoImpl) TransitionStatus(ctx context.Context, id sharedtypes.ChallengeID, from, to sharedtypes.ChallengeStatus, patch Patch) (*Challenge, error) {
	q := r.DB.NewUpdate().
		Model((*Challenge)(nil)).
		Set("status = ?", to).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("status = ?", from)

	if patch.Venue != nil {
		q = q.Set("venue = ?", *patch.Venue)
	}
	if patch.ProposedTime != nil {
		q = q.Set("proposed_time = ?", *patch.ProposedTime)
	}
	if patch.StreamURL != nil {
		q = q.Set("stream_url = ?", *patch.StreamURL)
	}
	if patch.ChallengerScore != nil {
		q = q.Set("challenger_score = ?", *patch.ChallengerScore)
	}
	if patch.ChallengedScore != nil {
		q = q.Set("challenged_score = ?", *patch.ChallengedScore)
	}
	if patch.WinnerID != nil {
		q = q.Set("winner_id = ?", *patch.WinnerID)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to transition challenge %s to %s: %w", id, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish a missing row from a lost CAS race.
		if _, getErr := r.GetChallenge(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStaleStatus
	}

	return r.GetChallenge(ctx, id)
}

// ListChallenges returns challenges matching the filter, newest first.
func (r *ChallengeRepoImpl) ListChallenges(ctx context.Context, filter Filter) ([]Challenge, error) {
	var challenges []Challenge
	q := r.DB.NewSelect().
		Model(&challenges).
		Order("created_at DESC")

	if filter.ProfileID != nil {
		q = q.Where("challenger_id = ? OR challenged_id = ?", *filter.ProfileID, *filter.ProfileID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// ExpireOverdue flips every pending challenge past its deadline to expired and
// returns the rows it touched so callers can emit events for them.
func (r *ChallengeRepoImpl) ExpireOverdue(ctx context.Context, now time.Time) ([]Challenge, error) {
	var expired []Challenge
	err := r.DB.NewUpdate().
		Model(&expired).
		Set("status = ?", sharedtypes.StatusExpired).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("status = ?", sharedtypes.StatusPending).
		Where("deadline < ?", now).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to expire overdue challenges: %w", err)
	}
	return expired, nil
}
