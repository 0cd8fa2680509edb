package challengeservice

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/capital-ladder/backend/config"
	"github.com/capital-ladder/backend/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// FakeChallengeRepo implements challengedb.ChallengeRepo with overridable funcs.
type FakeChallengeRepo struct {
	GetChallengeFunc     func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedb.Challenge, error)
	CreateChallengeFunc  func(ctx context.Context, challenge *challengedb.Challenge) error
	TransitionStatusFunc func(ctx context.Context, id sharedtypes.ChallengeID, from, to sharedtypes.ChallengeStatus, patch challengedb.Patch) (*challengedb.Challenge, error)
	ListChallengesFunc   func(ctx context.Context, filter challengedb.Filter) ([]challengedb.Challenge, error)
	ExpireOverdueFunc    func(ctx context.Context, now time.Time) ([]challengedb.Challenge, error)
}

func (f *FakeChallengeRepo) GetChallenge(ctx context.Context, id sharedtypes.ChallengeID) (*challengedb.Challenge, error) {
	return f.GetChallengeFunc(ctx, id)
}

func (f *FakeChallengeRepo) CreateChallenge(ctx context.Context, challenge *challengedb.Challenge) error {
	return f.CreateChallengeFunc(ctx, challenge)
}

func (f *FakeChallengeRepo) TransitionStatus(ctx context.Context, id sharedtypes.ChallengeID, from, to sharedtypes.ChallengeStatus, patch challengedb.Patch) (*challengedb.Challenge, error) {
	return f.TransitionStatusFunc(ctx, id, from, to, patch)
}

func (f *FakeChallengeRepo) ListChallenges(ctx context.Context, filter challengedb.Filter) ([]challengedb.Challenge, error) {
	return f.ListChallengesFunc(ctx, filter)
}

func (f *FakeChallengeRepo) ExpireOverdue(ctx context.Context, now time.Time) ([]challengedb.Challenge, error) {
	return f.ExpireOverdueFunc(ctx, now)
}

// FakeProfileGateway implements ProfileGateway with overridable funcs.
type FakeProfileGateway struct {
	GetProfileFunc  func(ctx context.Context, id sharedtypes.ProfileID) (*profiledb.Profile, error)
	AwardPointsFunc func(ctx context.Context, id sharedtypes.ProfileID, points int) error
	SettleMatchFunc func(ctx context.Context, winnerID, loserID sharedtypes.ProfileID, winBonus int, cooldown time.Duration) (*profiledb.SettlementResult, error)
}

func (f *FakeProfileGateway) GetProfile(ctx context.Context, id sharedtypes.ProfileID) (*profiledb.Profile, error) {
	return f.GetProfileFunc(ctx, id)
}

func (f *FakeProfileGateway) AwardPoints(ctx context.Context, id sharedtypes.ProfileID, points int) error {
	if f.AwardPointsFunc == nil {
		return nil
	}
	return f.AwardPointsFunc(ctx, id, points)
}

func (f *FakeProfileGateway) SettleMatch(ctx context.Context, winnerID, loserID sharedtypes.ProfileID, winBonus int, cooldown time.Duration) (*profiledb.SettlementResult, error) {
	return f.SettleMatchFunc(ctx, winnerID, loserID, winBonus, cooldown)
}

// FakePublisher records published messages.
type FakePublisher struct {
	mu     sync.Mutex
	Topics []string
	Msgs   []*message.Message
	Err    error
}

func (f *FakePublisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Topics = append(f.Topics, topic)
	f.Msgs = append(f.Msgs, msg)
	return nil
}

func (f *FakePublisher) Published(topic string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

var testNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func newTestService(repo *FakeChallengeRepo, profiles *FakeProfileGateway, pub *FakePublisher) *ChallengeService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewChallengeService(repo, profiles, pub, logger, observability.NewMetrics(prometheus.NewRegistry()), config.DefaultLadderConfig())
	svc.now = func() time.Time { return testNow }
	return svc
}
