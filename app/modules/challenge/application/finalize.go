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

// Finalize completes a live match. Exactly one score must have reached the
// race target. The challenge is claimed first with a compare-and-swap to
// completed (so a concurrent finalize cannot settle the same match twice),
// then the atomic rank settlement runs; if settlement fails the claim is
// reverted and the challenge never stays completed without its rank effect.
func (s *ChallengeService) Finalize(ctx context.Context, id sharedtypes.ChallengeID, score1, score2 int) (*challengedb.Challenge, error) {
	if score1 < 0 || score2 < 0 {
		return nil, &apperrors.ValidationError{Field: "scores", Detail: "scores must be non-negative"}
	}

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
			Attempted:   "finalize",
		}
	}

	challengerWon, ok := challengedomain.Winner(score1, score2, challenge.GamesToWin)
	if !ok {
		return nil, &apperrors.MatchNotCompleteError{
			Score1:     score1,
			Score2:     score2,
			GamesToWin: challenge.GamesToWin,
		}
	}

	winnerID := challenge.ChallengerID
	loserID := challenge.ChallengedID
	if !challengerWon {
		winnerID, loserID = loserID, winnerID
	}

	// Claim the challenge. Losing this CAS means another finalize got here
	// first and the settlement below must not run.
	updated, err := s.repo.TransitionStatus(ctx, id, sharedtypes.StatusLive, sharedtypes.StatusCompleted, challengedb.Patch{
		ChallengerScore: &score1,
		ChallengedScore: &score2,
		WinnerID:        &winnerID,
	})
	if err != nil {
		if errors.Is(err, challengedb.ErrStaleStatus) {
			return nil, &apperrors.InvalidStateError{
				ChallengeID: challenge.ID,
				Current:     challenge.Status,
				Attempted:   "finalize",
			}
		}
		return nil, fmt.Errorf("failed to complete challenge: %w", err)
	}

	settleStart := time.Now()
	result, err := s.profiles.SettleMatch(ctx, winnerID, loserID, s.rules.PointsWonBonus, s.rules.CooldownDuration)
	s.metrics.SettlementDuration.Observe(time.Since(settleStart).Seconds())
	if err != nil {
		s.metrics.SettlementOutcomes.WithLabelValues("failed").Inc()
		s.logger.Error("Rank settlement failed, reverting challenge to live",
			slog.String("challenge_id", id.String()),
			slog.Any("error", err),
		)
		// Undo the claim so the completed status never stands without its
		// rank effect. The revert bypasses the public transition graph on
		// purpose; it is compensation, not a lifecycle move.
		if _, revertErr := s.repo.TransitionStatus(ctx, id, sharedtypes.StatusCompleted, sharedtypes.StatusLive, challengedb.Patch{}); revertErr != nil {
			s.logger.Error("Failed to revert challenge after settlement failure; manual reconciliation required",
				slog.String("challenge_id", id.String()),
				slog.Any("error", revertErr),
			)
		}
		return nil, &apperrors.SettlementFailedError{WinnerID: winnerID, LoserID: loserID, Err: err}
	}

	outcome := "no_change"
	if result.Plan.Swapped {
		outcome = "swapped"
	}
	s.metrics.SettlementOutcomes.WithLabelValues(outcome).Inc()
	s.metrics.ChallengeTransitions.WithLabelValues(string(sharedtypes.StatusCompleted)).Inc()
	s.logger.Info("Match finalized",
		slog.String("challenge_id", id.String()),
		slog.String("winner_id", winnerID.String()),
		slog.Int("new_winner_rank", result.Plan.NewWinnerRank),
		slog.Int("new_loser_rank", result.Plan.NewLoserRank),
		slog.Bool("ranks_swapped", result.Plan.Swapped),
	)

	// Participation points for both players; best-effort like all accrual.
	for _, pid := range []sharedtypes.ProfileID{winnerID, loserID} {
		if err := s.profiles.AwardPoints(ctx, pid, s.rules.PointsPlayed); err != nil {
			s.logger.Error("Failed to award match-played points",
				slog.String("profile_id", pid.String()),
				slog.Any("error", err),
			)
		}
	}

	payload := events.MatchCompletedPayload{
		ChallengeID:   updated.ID,
		WinnerID:      winnerID,
		LoserID:       loserID,
		FinalScore:    fmt.Sprintf("%d-%d", score1, score2),
		GameType:      updated.GameType,
		NewWinnerRank: result.Plan.NewWinnerRank,
		NewLoserRank:  result.Plan.NewLoserRank,
		RanksSwapped:  result.Plan.Swapped,
	}
	if p, err := s.profiles.GetProfile(ctx, winnerID); err == nil {
		payload.WinnerName = p.DisplayName
	}
	s.publishEvent(ctx, events.MatchCompleted, payload)
	if result.Plan.Swapped {
		s.publishEvent(ctx, events.RankChanged, payload)
	}

	return updated, nil
}
