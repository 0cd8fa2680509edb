package activityservice

import (
	"context"
	"io"
	"log/slog"
	"testing"

	activitydb "github.com/capital-ladder/backend/app/modules/activity/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/capital-ladder/backend/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FakeActivityRepo implements activitydb.ActivityRepo with overridable funcs.
type FakeActivityRepo struct {
	InsertFunc        func(ctx context.Context, activity *activitydb.Activity) error
	ListRecentFunc    func(ctx context.Context, limit int) ([]activitydb.Activity, error)
	SavePushTokenFunc func(ctx context.Context, profileID sharedtypes.ProfileID, token string) error
	ListTokensForFunc func(ctx context.Context, profileIDs []sharedtypes.ProfileID) ([]activitydb.PushToken, error)
	ListAllTokensFunc func(ctx context.Context) ([]activitydb.PushToken, error)
}

func (f *FakeActivityRepo) Insert(ctx context.Context, activity *activitydb.Activity) error {
	return f.InsertFunc(ctx, activity)
}

func (f *FakeActivityRepo) ListRecent(ctx context.Context, limit int) ([]activitydb.Activity, error) {
	return f.ListRecentFunc(ctx, limit)
}

func (f *FakeActivityRepo) SavePushToken(ctx context.Context, profileID sharedtypes.ProfileID, token string) error {
	return f.SavePushTokenFunc(ctx, profileID, token)
}

func (f *FakeActivityRepo) ListTokensFor(ctx context.Context, profileIDs []sharedtypes.ProfileID) ([]activitydb.PushToken, error) {
	return f.ListTokensForFunc(ctx, profileIDs)
}

func (f *FakeActivityRepo) ListAllTokens(ctx context.Context) ([]activitydb.PushToken, error) {
	return f.ListAllTokensFunc(ctx)
}

// FakePushSender records sends and can fail selectively.
type FakePushSender struct {
	Sent   []string
	FailOn map[string]bool
}

func (f *FakePushSender) Send(_ context.Context, token, _, _ string, _ map[string]string) error {
	if f.FailOn[token] {
		return assert.AnError
	}
	f.Sent = append(f.Sent, token)
	return nil
}

func newTestActivityService(repo *FakeActivityRepo, push *FakePushSender) *ActivityService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewActivityService(repo, push, logger, observability.NewMetrics(prometheus.NewRegistry()))
}

func TestRecord(t *testing.T) {
	var inserted *activitydb.Activity
	repo := &FakeActivityRepo{
		InsertFunc: func(_ context.Context, a *activitydb.Activity) error {
			inserted = a
			return nil
		},
	}
	svc := newTestActivityService(repo, &FakePushSender{})

	actor := sharedtypes.ProfileID(uuid.New())
	err := svc.Record(context.Background(), actor, sharedtypes.ActivityChallengeIssued, map[string]interface{}{
		"challenge_id": uuid.NewString(),
	})
	require.NoError(t, err)

	require.NotNil(t, inserted)
	assert.Equal(t, actor, inserted.ActorID)
	assert.Equal(t, sharedtypes.ActivityChallengeIssued, inserted.Action)
}

func TestRecordSurfacesRepoError(t *testing.T) {
	repo := &FakeActivityRepo{
		InsertFunc: func(_ context.Context, _ *activitydb.Activity) error {
			return assert.AnError
		},
	}
	svc := newTestActivityService(repo, &FakePushSender{})

	err := svc.Record(context.Background(), sharedtypes.ProfileID(uuid.New()), sharedtypes.ActivityChallengeIssued, nil)
	require.Error(t, err, "handlers nack on record failures for redelivery")
}

func TestNotifyProfilesDropsFailures(t *testing.T) {
	tokens := []activitydb.PushToken{
		{Token: "tok-a", ProfileID: sharedtypes.ProfileID(uuid.New())},
		{Token: "tok-b", ProfileID: sharedtypes.ProfileID(uuid.New())},
		{Token: "tok-c", ProfileID: sharedtypes.ProfileID(uuid.New())},
	}
	repo := &FakeActivityRepo{
		ListTokensForFunc: func(_ context.Context, _ []sharedtypes.ProfileID) ([]activitydb.PushToken, error) {
			return tokens, nil
		},
	}
	push := &FakePushSender{FailOn: map[string]bool{"tok-b": true}}
	svc := newTestActivityService(repo, push)

	svc.NotifyProfiles(context.Background(), []sharedtypes.ProfileID{tokens[0].ProfileID}, "Challenge", "You got challenged", nil)

	// The failed device is skipped, the rest still get the push.
	assert.Equal(t, []string{"tok-a", "tok-c"}, push.Sent)
}

func TestNotifyLeagueBroadcasts(t *testing.T) {
	repo := &FakeActivityRepo{
		ListAllTokensFunc: func(_ context.Context) ([]activitydb.PushToken, error) {
			return []activitydb.PushToken{
				{Token: "tok-1"}, {Token: "tok-2"},
			}, nil
		},
	}
	push := &FakePushSender{}
	svc := newTestActivityService(repo, push)

	svc.NotifyLeague(context.Background(), "Match live", "Come watch", map[string]string{"challenge_id": uuid.NewString()})

	assert.Len(t, push.Sent, 2)
}

func TestRegisterPushTokenRejectsEmpty(t *testing.T) {
	saved := false
	repo := &FakeActivityRepo{
		SavePushTokenFunc: func(_ context.Context, _ sharedtypes.ProfileID, _ string) error {
			saved = true
			return nil
		},
	}
	svc := newTestActivityService(repo, &FakePushSender{})

	err := svc.RegisterPushToken(context.Background(), sharedtypes.ProfileID(uuid.New()), "")
	require.Error(t, err)
	assert.False(t, saved)

	require.NoError(t, svc.RegisterPushToken(context.Background(), sharedtypes.ProfileID(uuid.New()), "tok-x"))
	assert.True(t, saved)
}
