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
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// CreateChallengeInput carries the fields for a new challenge.
type CreateChallengeInput struct {
	ChallengerID sharedtypes.ProfileID
	TargetID     sharedtypes.ProfileID
	GameType     sharedtypes.GameType
	GamesToWin   int
	ProposedTime time.Time
}

// CreateChallenge validates the input, re-evaluates eligibility against live
// profile rows at the persistence boundary (the client-side check is only a
// UX shortcut), and persists a pending challenge with a 14-day deadline.
func (s *ChallengeService) CreateChallenge(ctx context.Context, in CreateChallengeInput) (*challengedb.Challenge, error) {
	if in.ChallengerID == in.TargetID {
		return nil, &apperrors.ValidationError{Field: "target_id", Detail: "cannot challenge yourself"}
	}
	if !in.GameType.Valid() {
		return nil, &apperrors.ValidationError{Field: "game_type", Detail: fmt.Sprintf("unknown game type %q", in.GameType)}
	}
	if in.GamesToWin < s.rules.MinGamesToWin || in.GamesToWin > s.rules.MaxGamesToWin {
		return nil, &apperrors.ValidationError{
			Field:  "games_to_win",
			Detail: fmt.Sprintf("must be between %d and %d", s.rules.MinGamesToWin, s.rules.MaxGamesToWin),
		}
	}

	challenger, err := s.profiles.GetProfile(ctx, in.ChallengerID)
	if err != nil {
		if errors.Is(err, profiledb.ErrProfileNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "profile", ID: in.ChallengerID.String()}
		}
		return nil, fmt.Errorf("failed to load challenger profile: %w", err)
	}
	target, err := s.profiles.GetProfile(ctx, in.TargetID)
	if err != nil {
		if errors.Is(err, profiledb.ErrProfileNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "profile", ID: in.TargetID.String()}
		}
		return nil, fmt.Errorf("failed to load target profile: %w", err)
	}

	now := s.now()
	verdict := challengedomain.Evaluate(challenger.Rank, target.Rank, challenger.CooldownUntil, now, challengedomain.Rules{
		ChallengeRange: s.rules.ChallengeRange,
	})
	if !verdict.Eligible {
		s.metrics.EligibilityDenials.WithLabelValues(string(verdict.Reason)).Inc()
		return nil, verdict.Err(s.rules.ChallengeRange)
	}

	challenge := &challengedb.Challenge{
		ChallengerID: in.ChallengerID,
		ChallengedID: in.TargetID,
		GameType:     in.GameType,
		GamesToWin:   in.GamesToWin,
		Venue:        challengedb.DefaultVenue,
		ProposedTime: in.ProposedTime,
		Status:       sharedtypes.StatusPending,
		Deadline:     now.Add(s.rules.ChallengeDeadline),
	}
	if err := s.repo.CreateChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.metrics.ChallengeTransitions.WithLabelValues(string(sharedtypes.StatusPending)).Inc()
	s.logger.Info("Challenge created",
		slog.String("challenge_id", challenge.ID.String()),
		slog.String("challenger_id", in.ChallengerID.String()),
		slog.String("target_id", in.TargetID.String()),
		slog.String("game_type", string(in.GameType)),
	)

	// Point accrual for issuing a challenge. Not part of the consistency
	// boundary; a failure is logged and the challenge stands.
	if err := s.profiles.AwardPoints(ctx, in.ChallengerID, s.rules.PointsCreated); err != nil {
		s.logger.Error("Failed to award challenge-created points",
			slog.String("profile_id", in.ChallengerID.String()),
			slog.Any("error", err),
		)
	}

	s.publishEvent(ctx, events.ChallengeCreated, events.ChallengeCreatedPayload{
		ChallengeID:    challenge.ID,
		ChallengerID:   challenge.ChallengerID,
		ChallengedID:   challenge.ChallengedID,
		ChallengerName: challenger.DisplayName,
		GameType:       challenge.GameType,
		GamesToWin:     challenge.GamesToWin,
		ProposedTime:   challenge.ProposedTime,
		Deadline:       challenge.Deadline,
	})

	return challenge, nil
}
