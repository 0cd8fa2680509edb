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
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfile(rank int) *profiledb.Profile {
	return &profiledb.Profile{
		ID:          sharedtypes.ProfileID(uuid.New()),
		DisplayName: "Player",
		Rank:        rank,
	}
}

func profileLookup(profiles ...*profiledb.Profile) func(ctx context.Context, id sharedtypes.ProfileID) (*profiledb.Profile, error) {
	return func(_ context.Context, id sharedtypes.ProfileID) (*profiledb.Profile, error) {
		for _, p := range profiles {
			if p.ID == id {
				return p, nil
			}
		}
		return nil, profiledb.ErrProfileNotFound
	}
}

func TestCreateChallenge(t *testing.T) {
	challenger := newProfile(10)
	target := newProfile(9)
	var created *challengedb.Challenge
	var awarded []int

	repo := &FakeChallengeRepo{
		CreateChallengeFunc: func(_ context.Context, c *challengedb.Challenge) error {
			c.ID = sharedtypes.ChallengeID(uuid.New())
			created = c
			return nil
		},
	}
	profiles := &FakeProfileGateway{
		GetProfileFunc: profileLookup(challenger, target),
		AwardPointsFunc: func(_ context.Context, _ sharedtypes.ProfileID, points int) error {
			awarded = append(awarded, points)
			return nil
		},
	}
	pub := &FakePublisher{}
	svc := newTestService(repo, profiles, pub)

	got, err := svc.CreateChallenge(context.Background(), CreateChallengeInput{
		ChallengerID: challenger.ID,
		TargetID:     target.ID,
		GameType:     sharedtypes.GameTypeEightBall,
		GamesToWin:   7,
		ProposedTime: testNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, sharedtypes.StatusPending, got.Status)
	assert.Equal(t, challengedb.DefaultVenue, got.Venue)
	assert.Equal(t, testNow.Add(14*24*time.Hour), got.Deadline)
	assert.Equal(t, []int{1}, awarded)
	assert.True(t, pub.Published(events.ChallengeCreated))
}

func TestCreateChallengeIneligible(t *testing.T) {
	cooldownEnd := testNow.Add(14 * time.Hour)

	tests := []struct {
		name       string
		challenger *profiledb.Profile
		wantReason apperrors.IneligibilityReason
	}{
		{
			name: "cooldown",
			challenger: func() *profiledb.Profile {
				p := newProfile(10)
				p.CooldownUntil = &cooldownEnd
				return p
			}(),
			wantReason: apperrors.ReasonInCooldown,
		},
		{
			name:       "out of range",
			challenger: newProfile(12),
			wantReason: apperrors.ReasonOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newProfile(9)
			repo := &FakeChallengeRepo{
				CreateChallengeFunc: func(_ context.Context, _ *challengedb.Challenge) error {
					t.Fatal("ineligible challenger must not reach persistence")
					return nil
				},
			}
			profiles := &FakeProfileGateway{GetProfileFunc: profileLookup(tt.challenger, target)}
			svc := newTestService(repo, profiles, &FakePublisher{})

			_, err := svc.CreateChallenge(context.Background(), CreateChallengeInput{
				ChallengerID: tt.challenger.ID,
				TargetID:     target.ID,
				GameType:     sharedtypes.GameTypeNineBall,
				GamesToWin:   5,
			})

			var ineligible *apperrors.IneligibleError
			require.ErrorAs(t, err, &ineligible)
			assert.Equal(t, tt.wantReason, ineligible.Reason)
		})
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	self := newProfile(5)
	profiles := &FakeProfileGateway{GetProfileFunc: profileLookup(self)}
	svc := newTestService(&FakeChallengeRepo{}, profiles, &FakePublisher{})

	tests := []struct {
		name  string
		input CreateChallengeInput
		field string
	}{
		{
			name:  "self challenge",
			input: CreateChallengeInput{ChallengerID: self.ID, TargetID: self.ID, GameType: sharedtypes.GameTypeEightBall, GamesToWin: 7},
			field: "target_id",
		},
		{
			name:  "bad game type",
			input: CreateChallengeInput{ChallengerID: self.ID, TargetID: sharedtypes.ProfileID(uuid.New()), GameType: "snooker", GamesToWin: 7},
			field: "game_type",
		},
		{
			name:  "race too short",
			input: CreateChallengeInput{ChallengerID: self.ID, TargetID: sharedtypes.ProfileID(uuid.New()), GameType: sharedtypes.GameTypeTenBall, GamesToWin: 2},
			field: "games_to_win",
		},
		{
			name:  "race too long",
			input: CreateChallengeInput{ChallengerID: self.ID, TargetID: sharedtypes.ProfileID(uuid.New()), GameType: sharedtypes.GameTypeTenBall, GamesToWin: 14},
			field: "games_to_win",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateChallenge(context.Background(), tt.input)
			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreateChallengeUnknownTarget(t *testing.T) {
	challenger := newProfile(4)
	profiles := &FakeProfileGateway{GetProfileFunc: profileLookup(challenger)}
	svc := newTestService(&FakeChallengeRepo{}, profiles, &FakePublisher{})

	_, err := svc.CreateChallenge(context.Background(), CreateChallengeInput{
		ChallengerID: challenger.ID,
		TargetID:     sharedtypes.ProfileID(uuid.New()),
		GameType:     sharedtypes.GameTypeEightBall,
		GamesToWin:   7,
	})

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "profile", nf.Entity)
}

func TestCreateChallengePublishFailureDoesNotFail(t *testing.T) {
	challenger := newProfile(6)
	target := newProfile(5)
	repo := &FakeChallengeRepo{
		CreateChallengeFunc: func(_ context.Context, c *challengedb.Challenge) error {
			c.ID = sharedtypes.ChallengeID(uuid.New())
			return nil
		},
	}
	profiles := &FakeProfileGateway{GetProfileFunc: profileLookup(challenger, target)}
	pub := &FakePublisher{Err: assert.AnError}
	svc := newTestService(repo, profiles, pub)

	_, err := svc.CreateChallenge(context.Background(), CreateChallengeInput{
		ChallengerID: challenger.ID,
		TargetID:     target.ID,
		GameType:     sharedtypes.GameTypeEightBall,
		GamesToWin:   7,
	})
	require.NoError(t, err)
}
