package scoreboardservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/capital-ladder/backend/observability"
)

// ErrResetNotConfirmed is returned when a reset is requested without the
// destructive-action confirmation.
var ErrResetNotConfirmed = errors.New("scoreboard reset requires confirmation")

// ScoreUpdate is the payload broadcast on a live score channel. Delivery is
// last-write-wins: subscribers overwrite their state with every update in
// arrival order and no cross-publisher ordering is guaranteed. Concurrent
// publishes from both players can clobber each other; accepted tradeoff for a
// casual scoring tool.
type ScoreUpdate struct {
	Score1      int       `json:"score1"`
	Score2      int       `json:"score2"`
	PublishedAt time.Time `json:"published_at"`
}

// Subscription is an active channel subscription.
type Subscription interface {
	Unsubscribe() error
}

// Transport is the raw fan-out channel under a score session. The NATS core
// connection implements it in production; tests use an in-memory loop.
type Transport interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (Subscription, error)
}

// session is the in-memory view of one live scoreboard.
type session struct {
	latest ScoreUpdate
	mu     sync.Mutex
}

// ScoreboardService synchronizes ephemeral score sessions over a broadcast
// channel. Nothing here is persisted; final scores reach the challenge row
// only through Finalize.
type ScoreboardService struct {
	transport Transport
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu       sync.Mutex
	sessions map[sharedtypes.ChallengeID]*session
}

// NewScoreboardService creates a new ScoreboardService.
func NewScoreboardService(transport Transport, logger *slog.Logger, metrics *observability.Metrics) *ScoreboardService {
	return &ScoreboardService{
		transport: transport,
		logger:    logger,
		metrics:   metrics,
		sessions:  make(map[sharedtypes.ChallengeID]*session),
	}
}

func subject(id sharedtypes.ChallengeID) string {
	return "scoreboard." + id.String()
}

// open returns the session for a challenge, creating it on first use.
func (s *ScoreboardService) open(id sharedtypes.ChallengeID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// Publish broadcasts a score update for a challenge. Scores are clamped to
// zero before leaving the publisher.
func (s *ScoreboardService) Publish(ctx context.Context, id sharedtypes.ChallengeID, score1, score2 int) error {
	if score1 < 0 {
		score1 = 0
	}
	if score2 < 0 {
		score2 = 0
	}

	update := ScoreUpdate{Score1: score1, Score2: score2, PublishedAt: time.Now()}
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal score update: %w", err)
	}

	if err := s.transport.Publish(subject(id), data); err != nil {
		return fmt.Errorf("failed to publish score update: %w", err)
	}

	sess := s.open(id)
	sess.mu.Lock()
	sess.latest = update
	sess.mu.Unlock()

	s.metrics.ScoreUpdates.Inc()
	s.logger.Debug("Score update published",
		slog.String("challenge_id", id.String()),
		slog.Int("score1", score1),
		slog.Int("score2", score2),
	)
	return nil
}

// Subscribe delivers every score update for a challenge to fn, in arrival
// order, until ctx is done. Spectators overwrite their display state with
// each delivery unconditionally.
func (s *ScoreboardService) Subscribe(ctx context.Context, id sharedtypes.ChallengeID, fn func(ScoreUpdate)) error {
	sess := s.open(id)

	sub, err := s.transport.Subscribe(subject(id), func(data []byte) {
		var update ScoreUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			s.logger.Error("Dropping malformed score update",
				slog.String("challenge_id", id.String()),
				slog.Any("error", err),
			)
			return
		}
		sess.mu.Lock()
		sess.latest = update
		sess.mu.Unlock()
		fn(update)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to score channel: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Debug("Score channel unsubscribe failed", slog.Any("error", err))
		}
	}()
	return nil
}

// Latest returns the most recently seen score for a challenge. A spectator
// joining mid-match starts from here.
func (s *ScoreboardService) Latest(id sharedtypes.ChallengeID) ScoreUpdate {
	sess := s.open(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.latest
}

// Reset zeroes both scores. The confirmed flag is the destructive-action
// guard; without it nothing is published.
func (s *ScoreboardService) Reset(ctx context.Context, id sharedtypes.ChallengeID, confirmed bool) error {
	if !confirmed {
		return ErrResetNotConfirmed
	}
	return s.Publish(ctx, id, 0, 0)
}

// Close drops the in-memory session once a match is finalized.
func (s *ScoreboardService) Close(id sharedtypes.ChallengeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
