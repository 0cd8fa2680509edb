package challengeservice

import (
	"context"
	"testing"
	"time"

	"github.com/capital-ladder/backend/app/events"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoLive(t *testing.T) {
	c := pendingChallenge()
	c.Status = sharedtypes.StatusNegotiating

	profiles := &FakeProfileGateway{
		GetProfileFunc: func(_ context.Context, id sharedtypes.ProfileID) (*profiledb.Profile, error) {
			return &profiledb.Profile{ID: id, DisplayName: "Someone"}, nil
		},
	}
	pub := &FakePublisher{}
	svc := newTestService(repoFor(c), profiles, pub)

	streamURL := "https://twitch.tv/rackcity"
	updated, err := svc.GoLive(context.Background(), c.ID, &streamURL)
	require.NoError(t, err)

	assert.Equal(t, sharedtypes.StatusLive, updated.Status)
	require.NotNil(t, updated.StreamURL)
	assert.Equal(t, streamURL, *updated.StreamURL)
	assert.True(t, pub.Published(events.MatchWentLive))
}

func TestGoLiveRequiresNegotiating(t *testing.T) {
	for _, status := range []sharedtypes.ChallengeStatus{
		sharedtypes.StatusPending,
		sharedtypes.StatusLive,
		sharedtypes.StatusCompleted,
		sharedtypes.StatusForfeited,
		sharedtypes.StatusExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			c := pendingChallenge()
			c.Status = status
			svc := newTestService(repoFor(c), &FakeProfileGateway{}, &FakePublisher{})

			_, err := svc.GoLive(context.Background(), c.ID, nil)

			var invalid *apperrors.InvalidStateError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestSetStreamURLLiveOnly(t *testing.T) {
	c := pendingChallenge()
	c.Status = sharedtypes.StatusLive
	svc := newTestService(repoFor(c), &FakeProfileGateway{}, &FakePublisher{})

	updated, err := svc.SetStreamURL(context.Background(), c.ID, "https://youtube.com/live/abc")
	require.NoError(t, err)
	require.NotNil(t, updated.StreamURL)

	c.Status = sharedtypes.StatusCompleted
	_, err = svc.SetStreamURL(context.Background(), c.ID, "https://youtube.com/live/def")
	var invalid *apperrors.InvalidStateError
	require.ErrorAs(t, err, &invalid)
}

func TestExpireOverdueSweep(t *testing.T) {
	overdue := []challengedb.Challenge{*pendingChallenge(), *pendingChallenge()}
	for i := range overdue {
		overdue[i].Status = sharedtypes.StatusExpired
		overdue[i].Deadline = testNow.Add(-time.Hour)
	}

	repo := &FakeChallengeRepo{
		ExpireOverdueFunc: func(_ context.Context, now time.Time) ([]challengedb.Challenge, error) {
			assert.Equal(t, testNow, now)
			return overdue, nil
		},
	}
	pub := &FakePublisher{}
	svc := newTestService(repo, &FakeProfileGateway{}, pub)

	count, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, pub.Msgs, 2)
}
