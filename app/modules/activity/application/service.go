package activityservice

import (
	"context"
	"fmt"
	"log/slog"

	activitydb "github.com/capital-ladder/backend/app/modules/activity/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/capital-ladder/backend/observability"
)

// PushSender delivers one push notification. Fire-and-forget: the core never
// consumes a result beyond the error it logs.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// ActivityService records feed entries and dispatches push notifications for
// lifecycle events. Everything here is best-effort by design: failures are
// logged and dropped, never propagated back to the lifecycle transition that
// triggered them.
type ActivityService struct {
	repo    activitydb.ActivityRepo
	push    PushSender
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewActivityService creates a new ActivityService.
func NewActivityService(repo activitydb.ActivityRepo, push PushSender, logger *slog.Logger, metrics *observability.Metrics) *ActivityService {
	return &ActivityService{
		repo:    repo,
		push:    push,
		logger:  logger,
		metrics: metrics,
	}
}

// Record appends an activity entry. Errors are reported to the caller only so
// the event handler can nack for redelivery; they never reach the lifecycle.
func (s *ActivityService) Record(ctx context.Context, actorID sharedtypes.ProfileID, action sharedtypes.ActivityAction, metadata map[string]interface{}) error {
	activity := &activitydb.Activity{
		ActorID:  actorID,
		Action:   action,
		Metadata: metadata,
	}
	if err := s.repo.Insert(ctx, activity); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListRecent returns the newest feed entries.
func (s *ActivityService) ListRecent(ctx context.Context, limit int) ([]activitydb.Activity, error) {
	return s.repo.ListRecent(ctx, limit)
}

// RegisterPushToken stores a device token for a profile.
func (s *ActivityService) RegisterPushToken(ctx context.Context, profileID sharedtypes.ProfileID, token string) error {
	if token == "" {
		return fmt.Errorf("push token must not be empty")
	}
	return s.repo.SavePushToken(ctx, profileID, token)
}

// NotifyProfiles pushes to every device the given profiles registered.
// Delivery failures are counted, logged and dropped.
func (s *ActivityService) NotifyProfiles(ctx context.Context, profileIDs []sharedtypes.ProfileID, title, body string, data map[string]string) {
	tokens, err := s.repo.ListTokensFor(ctx, profileIDs)
	if err != nil {
		s.logger.Error("Failed to load push tokens", slog.Any("error", err))
		return
	}
	s.sendAll(ctx, tokens, title, body, data)
}

// NotifyLeague pushes to every registered device in the league. Used for the
// go-live "come watch" broadcast.
func (s *ActivityService) NotifyLeague(ctx context.Context, title, body string, data map[string]string) {
	tokens, err := s.repo.ListAllTokens(ctx)
	if err != nil {
		s.logger.Error("Failed to load push tokens", slog.Any("error", err))
		return
	}
	s.sendAll(ctx, tokens, title, body, data)
}

func (s *ActivityService) sendAll(ctx context.Context, tokens []activitydb.PushToken, title, body string, data map[string]string) {
	for _, t := range tokens {
		if err := s.push.Send(ctx, t.Token, title, body, data); err != nil {
			s.metrics.NotificationFailures.Inc()
			s.logger.Warn("Push delivery failed, dropping",
				slog.String("profile_id", t.ProfileID.String()),
				slog.Any("error", err),
			)
		}
	}
}
