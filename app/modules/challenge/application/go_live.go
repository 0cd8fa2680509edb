package challengeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/capital-ladder/backend/app/events"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// GoLive moves an accepted challenge into play. The resulting event is fanned
// out to the entire league, not just the participants: the go-live broadcast
// is the product's "come watch" feature.
func (s *ChallengeService) GoLive(ctx context.Context, id sharedtypes.ChallengeID, streamURL *string) (*challengedb.Challenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, challengedb.ErrChallengeNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "challenge", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	if challenge.Status != sharedtypes.StatusNegotiating {
		return nil, &apperrors.InvalidStateError{
			ChallengeID: challenge.ID,
			Current:     challenge.Status,
			Attempted:   "go live",
		}
	}

	updated, err := s.repo.TransitionStatus(ctx, id, sharedtypes.StatusNegotiating, sharedtypes.StatusLive, challengedb.Patch{
		StreamURL: streamURL,
	})
	if err != nil {
		if errors.Is(err, challengedb.ErrStaleStatus) {
			return nil, &apperrors.InvalidStateError{
				ChallengeID: challenge.ID,
				Current:     challenge.Status,
				Attempted:   "go live",
			}
		}
		return nil, fmt.Errorf("failed to go live: %w", err)
	}

	s.metrics.ChallengeTransitions.WithLabelValues(string(sharedtypes.StatusLive)).Inc()
	s.logger.Info("Match went live", slog.String("challenge_id", id.String()))

	payload := events.MatchWentLivePayload{
		ChallengeID:  updated.ID,
		ChallengerID: updated.ChallengerID,
		ChallengedID: updated.ChallengedID,
		GameType:     updated.GameType,
	}
	if updated.StreamURL != nil {
		payload.StreamURL = *updated.StreamURL
	}
	if p, err := s.profiles.GetProfile(ctx, updated.ChallengerID); err == nil {
		payload.ChallengerName = p.DisplayName
	}
	if p, err := s.profiles.GetProfile(ctx, updated.ChallengedID); err == nil {
		payload.ChallengedName = p.DisplayName
	}
	s.publishEvent(ctx, events.MatchWentLive, payload)

	return updated, nil
}
