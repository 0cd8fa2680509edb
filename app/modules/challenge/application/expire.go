package challengeservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/capital-ladder/backend/app/events"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// ExpireOverdue sweeps every pending challenge past its deadline into the
// expired terminal state. The scheduler runs it periodically; reads also
// expire lazily, so the sweep is a backstop, not the only enforcement.
func (s *ChallengeService) ExpireOverdue(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expiry sweep failed: %w", err)
	}

	for _, challenge := range expired {
		s.metrics.ChallengeTransitions.WithLabelValues(string(sharedtypes.StatusExpired)).Inc()
		s.publishEvent(ctx, events.ChallengeExpired, events.ChallengeExpiredPayload{
			ChallengeID:  challenge.ID,
			ChallengerID: challenge.ChallengerID,
			ChallengedID: challenge.ChallengedID,
			Deadline:     challenge.Deadline,
		})
	}

	if len(expired) > 0 {
		s.logger.Info("Expired overdue challenges", slog.Int("count", len(expired)))
	}
	return len(expired), nil
}
