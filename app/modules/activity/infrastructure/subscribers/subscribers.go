package activitysubscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/capital-ladder/backend/app/events"
	activityservice "github.com/capital-ladder/backend/app/modules/activity/application"
	"github.com/capital-ladder/backend/app/eventbus"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// Subscribers consumes challenge lifecycle events and turns them into
// activity records and push notifications. It sits outside the consistency
// boundary: a failure here is retried through the bus but can never undo a
// lifecycle transition.
type Subscribers struct {
	service *activityservice.ActivityService
	logger  *slog.Logger
}

// NewSubscribers creates the activity event consumers.
func NewSubscribers(service *activityservice.ActivityService, logger *slog.Logger) *Subscribers {
	return &Subscribers{service: service, logger: logger}
}

// Register wires every lifecycle topic to its handler.
func (s *Subscribers) Register(ctx context.Context, bus eventbus.EventBus) error {
	handlers := map[string]func(ctx context.Context, msg *message.Message) error{
		events.ChallengeCreated:  s.handleChallengeCreated,
		events.ChallengeAccepted: s.handleChallengeAccepted,
		events.ChallengeDeclined: s.handleChallengeDeclined,
		events.ChallengeExpired:  s.handleChallengeExpired,
		events.MatchWentLive:     s.handleMatchWentLive,
		events.MatchCompleted:    s.handleMatchCompleted,
	}
	for topic, handler := range handlers {
		if err := bus.Subscribe(ctx, topic, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}
	return nil
}

func (s *Subscribers) handleChallengeCreated(ctx context.Context, msg *message.Message) error {
	var payload events.ChallengeCreatedPayload
	if err := events.Unmarshal(msg, &payload); err != nil {
		return err
	}

	if err := s.service.Record(ctx, payload.ChallengerID, sharedtypes.ActivityChallengeIssued, map[string]interface{}{
		"challenge_id": payload.ChallengeID.String(),
		"game_type":    string(payload.GameType),
		"games_to_win": payload.GamesToWin,
	}); err != nil {
		return err
	}

	s.service.NotifyProfiles(ctx, []sharedtypes.ProfileID{payload.ChallengedID},
		"New challenge!",
		fmt.Sprintf("%s challenged you to a race to %d (%s)", payload.ChallengerName, payload.GamesToWin, payload.GameType),
		map[string]string{"challenge_id": payload.ChallengeID.String()},
	)
	return nil
}

func (s *Subscribers) handleChallengeAccepted(ctx context.Context, msg *message.Message) error {
	var payload events.ChallengeRespondedPayload
	if err := events.Unmarshal(msg, &payload); err != nil {
		return err
	}

	if err := s.service.Record(ctx, payload.ChallengedID, sharedtypes.ActivityChallengeAccepted, map[string]interface{}{
		"challenge_id": payload.ChallengeID.String(),
		"venue":        payload.Venue,
	}); err != nil {
		return err
	}

	s.service.NotifyProfiles(ctx, []sharedtypes.ProfileID{payload.ChallengerID},
		"Challenge accepted",
		fmt.Sprintf("Your challenge was accepted. Venue: %s", payload.Venue),
		map[string]string{"challenge_id": payload.ChallengeID.String()},
	)
	return nil
}

func (s *Subscribers) handleChallengeDeclined(ctx context.Context, msg *message.Message) error {
	var payload events.ChallengeRespondedPayload
	if err := events.Unmarshal(msg, &payload); err != nil {
		return err
	}

	if err := s.service.Record(ctx, payload.ChallengedID, sharedtypes.ActivityChallengeDeclined, map[string]interface{}{
		"challenge_id": payload.ChallengeID.String(),
	}); err != nil {
		return err
	}

	s.service.NotifyProfiles(ctx, []sharedtypes.ProfileID{payload.ChallengerID},
		"Challenge declined",
		"Your challenge was declined.",
		map[string]string{"challenge_id": payload.ChallengeID.String()},
	)
	return nil
}

func (s *Subscribers) handleChallengeExpired(ctx context.Context, msg *message.Message) error {
	var payload events.ChallengeExpiredPayload
	if err := events.Unmarshal(msg, &payload); err != nil {
		return err
	}

	s.service.NotifyProfiles(ctx, []sharedtypes.ProfileID{payload.ChallengerID, payload.ChallengedID},
		"Challenge expired",
		"A pending challenge lapsed without a response.",
		map[string]string{"challenge_id": payload.ChallengeID.String()},
	)
	return nil
}

func (s *Subscribers) handleMatchWentLive(ctx context.Context, msg *message.Message) error {
	var payload events.MatchWentLivePayload
	if err := events.Unmarshal(msg, &payload); err != nil {
		return err
	}

	if err := s.service.Record(ctx, payload.ChallengerID, sharedtypes.ActivityMatchLive, map[string]interface{}{
		"challenge_id": payload.ChallengeID.String(),
		"game_type":    string(payload.GameType),
	}); err != nil {
		return err
	}

	// League-wide broadcast: everyone gets invited to watch.
	body := fmt.Sprintf("%s vs %s is live now!", payload.ChallengerName, payload.ChallengedName)
	data := map[string]string{"challenge_id": payload.ChallengeID.String()}
	if payload.StreamURL != "" {
		data["stream_url"] = payload.StreamURL
	}
	s.service.NotifyLeague(ctx, "Match live", body, data)
	return nil
}

func (s *Subscribers) handleMatchCompleted(ctx context.Context, msg *message.Message) error {
	var payload events.MatchCompletedPayload
	if err := events.Unmarshal(msg, &payload); err != nil {
		return err
	}

	metadata := map[string]interface{}{
		"challenge_id": payload.ChallengeID.String(),
		"winner_name":  payload.WinnerName,
		"final_score":  payload.FinalScore,
		"game_type":    string(payload.GameType),
	}
	if err := s.service.Record(ctx, payload.WinnerID, sharedtypes.ActivityMatchCompleted, metadata); err != nil {
		return err
	}
	if payload.RanksSwapped {
		if err := s.service.Record(ctx, payload.WinnerID, sharedtypes.ActivityRankChanged, map[string]interface{}{
			"challenge_id":    payload.ChallengeID.String(),
			"new_winner_rank": payload.NewWinnerRank,
			"new_loser_rank":  payload.NewLoserRank,
		}); err != nil {
			return err
		}
	}

	s.service.NotifyProfiles(ctx, []sharedtypes.ProfileID{payload.WinnerID, payload.LoserID},
		"Match finalized",
		fmt.Sprintf("%s won %s", payload.WinnerName, payload.FinalScore),
		map[string]string{"challenge_id": payload.ChallengeID.String()},
	)
	return nil
}
