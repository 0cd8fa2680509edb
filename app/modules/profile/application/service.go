package profileservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	challengedomain "github.com/capital-ladder/backend/app/modules/challenge/domain"
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/capital-ladder/backend/config"
)

// ProfileService handles profile reads, the claim-or-create merge, and the
// leaderboard view.
type ProfileService struct {
	repo   profiledb.ProfileRepo
	logger *slog.Logger
	rules  config.LadderConfig
	now    func() time.Time
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo profiledb.ProfileRepo, logger *slog.Logger, rules config.LadderConfig) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger,
		rules:  rules,
		now:    time.Now,
	}
}

// GetProfile loads a profile by id.
func (s *ProfileService) GetProfile(ctx context.Context, id sharedtypes.ProfileID) (*profiledb.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, profiledb.ErrProfileNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "profile", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ClaimOrCreateProfile resolves a new account to a ladder profile. Two
// branches: an unclaimed ghost with a matching display name is adopted (rank,
// rating and points carry over, the ghost row goes away); otherwise a fresh
// profile is appended at the bottom of the ladder. Idempotent for an account
// that already owns a profile.
func (s *ProfileService) ClaimOrCreateProfile(ctx context.Context, ownerID string, displayName string, phone *string) (*profiledb.Profile, error) {
	if existing, err := s.repo.GetProfileByOwner(ctx, ownerID); err == nil {
		return existing, nil
	} else if !errors.Is(err, profiledb.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	ghost, err := s.repo.FindUnclaimedByName(ctx, displayName)
	if err == nil {
		adopted, err := s.repo.AdoptGhost(ctx, ghost.ID, ownerID, displayName, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to adopt ghost profile: %w", err)
		}
		s.logger.Info("Ghost profile adopted",
			slog.String("profile_id", adopted.ID.String()),
			slog.String("display_name", displayName),
			slog.Int("rank", adopted.Rank),
		)
		return adopted, nil
	}
	if !errors.Is(err, profiledb.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to search for ghost profile: %w", err)
	}

	profile := &profiledb.Profile{
		OwnerID:     &ownerID,
		DisplayName: displayName,
		Phone:       phone,
	}
	if err := s.repo.CreateAtBottom(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.Info("Profile created",
		slog.String("profile_id", profile.ID.String()),
		slog.String("display_name", displayName),
		slog.Int("rank", profile.Rank),
	)
	return profile, nil
}

// LeaderboardRow is one leaderboard entry with the viewer's eligibility
// verdict attached so the UI can gray out rows it cannot challenge using the
// same rules the creation path enforces.
type LeaderboardRow struct {
	Profile       profiledb.Profile
	CanChallenge  bool
	DenialReason  apperrors.IneligibilityReason
	CooldownLeft  time.Duration
	IsViewer      bool
	ViewerRankGap int
}

// Leaderboard returns all profiles ordered by rank. When viewerID is non-nil
// each row carries the viewer's eligibility verdict against it.
func (s *ProfileService) Leaderboard(ctx context.Context, viewerID *sharedtypes.ProfileID) ([]LeaderboardRow, error) {
	profiles, err := s.repo.ListByRank(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	var viewer *profiledb.Profile
	if viewerID != nil {
		for i := range profiles {
			if profiles[i].ID == *viewerID {
				viewer = &profiles[i]
				break
			}
		}
	}

	now := s.now()
	rules := challengedomain.Rules{ChallengeRange: s.rules.ChallengeRange}
	rows := make([]LeaderboardRow, 0, len(profiles))
	for _, p := range profiles {
		row := LeaderboardRow{Profile: p}
		if viewer != nil {
			if p.ID == viewer.ID {
				row.IsViewer = true
			} else {
				verdict := challengedomain.Evaluate(viewer.Rank, p.Rank, viewer.CooldownUntil, now, rules)
				row.CanChallenge = verdict.Eligible
				row.DenialReason = verdict.Reason
				row.CooldownLeft = verdict.CooldownRemaining
				row.ViewerRankGap = verdict.RankGap
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
