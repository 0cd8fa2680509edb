package challengeservice

import (
	"context"
	"errors"
	"fmt"

	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// GetChallenge loads a single challenge, expiring it lazily if overdue.
func (s *ChallengeService) GetChallenge(ctx context.Context, id sharedtypes.ChallengeID) (*challengedb.Challenge, error) {
	return s.getLazilyExpired(ctx, id)
}

// ListChallenges returns challenges for a profile and/or status filter.
func (s *ChallengeService) ListChallenges(ctx context.Context, filter challengedb.Filter) ([]challengedb.Challenge, error) {
	challenges, err := s.repo.ListChallenges(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// SetStreamURL attaches a broadcast link to a live match. StreamURL is a
// cosmetic field but still frozen once the challenge is terminal.
func (s *ChallengeService) SetStreamURL(ctx context.Context, id sharedtypes.ChallengeID, streamURL string) (*challengedb.Challenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, challengedb.ErrChallengeNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "challenge", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	if challenge.Status != sharedtypes.StatusLive {
		return nil, &apperrors.InvalidStateError{
			ChallengeID: challenge.ID,
			Current:     challenge.Status,
			Attempted:   "set stream url",
		}
	}
	updated, err := s.repo.TransitionStatus(ctx, id, sharedtypes.StatusLive, sharedtypes.StatusLive, challengedb.Patch{
		StreamURL: &streamURL,
	})
	if err != nil {
		if errors.Is(err, challengedb.ErrStaleStatus) {
			return nil, &apperrors.InvalidStateError{
				ChallengeID: challenge.ID,
				Current:     challenge.Status,
				Attempted:   "set stream url",
			}
		}
		return nil, fmt.Errorf("failed to set stream url: %w", err)
	}
	return updated, nil
}
