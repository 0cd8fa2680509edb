package sharedtypes

import (
	"fmt"

	"github.com/google/uuid"
)

// ProfileID identifies a ladder profile.
type ProfileID = uuid.UUID

// ChallengeID identifies a challenge.
type ChallengeID = uuid.UUID

// AccountID is the external auth identity that may own a profile.
type AccountID string

// GameType is the discipline a challenge is played under.
type GameType string

const (
	GameTypeEightBall GameType = "8-ball"
	GameTypeNineBall  GameType = "9-ball"
	GameTypeTenBall   GameType = "10-ball"
)

// Valid reports whether gt is one of the known disciplines.
func (gt GameType) Valid() bool {
	switch gt {
	case GameTypeEightBall, GameTypeNineBall, GameTypeTenBall:
		return true
	}
	return false
}

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	StatusPending     ChallengeStatus = "pending"
	StatusNegotiating ChallengeStatus = "negotiating"
	StatusLive        ChallengeStatus = "live"
	StatusCompleted   ChallengeStatus = "completed"
	StatusForfeited   ChallengeStatus = "forfeited"
	StatusExpired     ChallengeStatus = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s ChallengeStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusForfeited, StatusExpired:
		return true
	}
	return false
}

// ResponseDecision is the challenged player's answer to a pending challenge.
type ResponseDecision string

const (
	DecisionAccept  ResponseDecision = "accept"
	DecisionDecline ResponseDecision = "decline"
)

// ActivityAction enumerates the activity feed entry kinds.
type ActivityAction string

const (
	ActivityChallengeIssued   ActivityAction = "challenge_issued"
	ActivityChallengeAccepted ActivityAction = "challenge_accepted"
	ActivityChallengeDeclined ActivityAction = "challenge_declined"
	ActivityMatchLive         ActivityAction = "match_live"
	ActivityMatchCompleted    ActivityAction = "match_completed"
	ActivityRankChanged       ActivityAction = "rank_changed"
)

// ParseProfileID parses a profile id from its string form.
func ParseProfileID(s string) (ProfileID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid profile id %q: %w", s, err)
	}
	return id, nil
}

// ParseChallengeID parses a challenge id from its string form.
func ParseChallengeID(s string) (ChallengeID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid challenge id %q: %w", s, err)
	}
	return id, nil
}
