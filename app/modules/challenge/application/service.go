package challengeservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/capital-ladder/backend/app/events"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/capital-ladder/backend/config"
	"github.com/capital-ladder/backend/observability"
)

// ProfileGateway is the slice of the profile module the challenge lifecycle
// needs: live profile reads for eligibility re-validation, point accrual, and
// the atomic settlement.
type ProfileGateway interface {
	GetProfile(ctx context.Context, id sharedtypes.ProfileID) (*profiledb.Profile, error)
	AwardPoints(ctx context.Context, id sharedtypes.ProfileID, points int) error
	SettleMatch(ctx context.Context, winnerID, loserID sharedtypes.ProfileID, winBonus int, cooldown time.Duration) (*profiledb.SettlementResult, error)
}

// EventPublisher is the publishing slice of the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// ChallengeService owns the challenge lifecycle state machine.
type ChallengeService struct {
	repo     challengedb.ChallengeRepo
	profiles ProfileGateway
	eventBus EventPublisher
	logger   *slog.Logger
	metrics  *observability.Metrics
	rules    config.LadderConfig
	now      func() time.Time
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(repo challengedb.ChallengeRepo, profiles ProfileGateway, eventBus EventPublisher, logger *slog.Logger, metrics *observability.Metrics, rules config.LadderConfig) *ChallengeService {
	return &ChallengeService{
		repo:     repo,
		profiles: profiles,
		eventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		rules:    rules,
		now:      time.Now,
	}
}

// publishEvent marshals and publishes a lifecycle event. Delivery is
// best-effort: a failure is logged and dropped, never surfaced to the caller,
// so notification problems cannot block or roll back a lifecycle transition.
func (s *ChallengeService) publishEvent(ctx context.Context, topic string, payload interface{}) {
	msg, err := events.NewMessage(payload)
	if err != nil {
		s.logger.Error("Failed to marshal lifecycle event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return
	}
	if err := s.eventBus.Publish(ctx, topic, msg); err != nil {
		s.metrics.NotificationFailures.Inc()
		s.logger.Error("Failed to publish lifecycle event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}
