package challengeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/capital-ladder/backend/app/events"
	challengedomain "github.com/capital-ladder/backend/app/modules/challenge/domain"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// RespondInput carries the challenged player's answer.
type RespondInput struct {
	ChallengeID  sharedtypes.ChallengeID
	ResponderID  sharedtypes.ProfileID
	Decision     sharedtypes.ResponseDecision
	Venue        *string
	ProposedTime *time.Time
}

// Respond handles accept/decline on a pending challenge. Only the challenged
// player may respond. Accept moves to negotiating, optionally overwriting
// venue and proposed time; decline moves to forfeited. A pending challenge
// past its deadline is expired lazily before the decision is evaluated.
func (s *ChallengeService) Respond(ctx context.Context, in RespondInput) (*challengedb.Challenge, error) {
	challenge, err := s.getLazilyExpired(ctx, in.ChallengeID)
	if err != nil {
		return nil, err
	}

	if challenge.Status != sharedtypes.StatusPending {
		return nil, &apperrors.InvalidStateError{
			ChallengeID: challenge.ID,
			Current:     challenge.Status,
			Attempted:   "respond",
		}
	}
	if challenge.ChallengedID != in.ResponderID {
		return nil, &apperrors.ForbiddenError{ActorID: in.ResponderID, Action: "respond to this challenge"}
	}

	var target sharedtypes.ChallengeStatus
	switch in.Decision {
	case sharedtypes.DecisionAccept:
		target = sharedtypes.StatusNegotiating
	case sharedtypes.DecisionDecline:
		target = sharedtypes.StatusForfeited
	default:
		return nil, &apperrors.ValidationError{Field: "decision", Detail: fmt.Sprintf("unknown decision %q", in.Decision)}
	}

	patch := challengedb.Patch{}
	if in.Decision == sharedtypes.DecisionAccept {
		patch.Venue = in.Venue
		patch.ProposedTime = in.ProposedTime
	}

	updated, err := s.repo.TransitionStatus(ctx, challenge.ID, sharedtypes.StatusPending, target, patch)
	if err != nil {
		if errors.Is(err, challengedb.ErrStaleStatus) {
			return nil, &apperrors.InvalidStateError{
				ChallengeID: challenge.ID,
				Current:     challenge.Status,
				Attempted:   "respond",
			}
		}
		return nil, fmt.Errorf("failed to apply response: %w", err)
	}

	s.metrics.ChallengeTransitions.WithLabelValues(string(target)).Inc()
	s.logger.Info("Challenge response recorded",
		slog.String("challenge_id", challenge.ID.String()),
		slog.String("responder_id", in.ResponderID.String()),
		slog.String("decision", string(in.Decision)),
	)

	topic := events.ChallengeAccepted
	if in.Decision == sharedtypes.DecisionDecline {
		topic = events.ChallengeDeclined
	}
	s.publishEvent(ctx, topic, events.ChallengeRespondedPayload{
		ChallengeID:  updated.ID,
		ChallengerID: updated.ChallengerID,
		ChallengedID: updated.ChallengedID,
		Decision:     in.Decision,
		Venue:        updated.Venue,
		ProposedTime: updated.ProposedTime,
	})

	return updated, nil
}

// getLazilyExpired loads a challenge and, when it is pending past its
// deadline, flips it to expired first so callers never act on a lapsed row.
func (s *ChallengeService) getLazilyExpired(ctx context.Context, id sharedtypes.ChallengeID) (*challengedb.Challenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, challengedb.ErrChallengeNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "challenge", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	if !challengedomain.IsOverdue(challenge.Status, challenge.Deadline, s.now()) {
		return challenge, nil
	}

	expired, err := s.repo.TransitionStatus(ctx, challenge.ID, sharedtypes.StatusPending, sharedtypes.StatusExpired, challengedb.Patch{})
	if err != nil {
		if errors.Is(err, challengedb.ErrStaleStatus) {
			// Someone else moved it; reload and use whatever it is now.
			return s.repo.GetChallenge(ctx, id)
		}
		return nil, fmt.Errorf("failed to expire overdue challenge: %w", err)
	}

	s.metrics.ChallengeTransitions.WithLabelValues(string(sharedtypes.StatusExpired)).Inc()
	s.publishEvent(ctx, events.ChallengeExpired, events.ChallengeExpiredPayload{
		ChallengeID:  expired.ID,
		ChallengerID: expired.ChallengerID,
		ChallengedID: expired.ChallengedID,
		Deadline:     expired.Deadline,
	})
	return expired, nil
}
