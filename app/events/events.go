package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// Topics for challenge lifecycle events on the ladder stream.
const (
	ChallengeCreated  = "ladder.challenge.created"
	ChallengeAccepted = "ladder.challenge.accepted"
	ChallengeDeclined = "ladder.challenge.declined"
	ChallengeExpired  = "ladder.challenge.expired"
	MatchWentLive     = "ladder.match.live"
	MatchCompleted    = "ladder.match.completed"
	RankChanged       = "ladder.rank.changed"
)

// ChallengeCreatedPayload announces a new pending challenge.
type ChallengeCreatedPayload struct {
	ChallengeID    sharedtypes.ChallengeID `json:"challenge_id"`
	ChallengerID   sharedtypes.ProfileID   `json:"challenger_id"`
	ChallengedID   sharedtypes.ProfileID   `json:"challenged_id"`
	ChallengerName string                  `json:"challenger_name"`
	GameType       sharedtypes.GameType    `json:"game_type"`
	GamesToWin     int                     `json:"games_to_win"`
	ProposedTime   time.Time               `json:"proposed_time"`
	Deadline       time.Time               `json:"deadline"`
}

// ChallengeRespondedPayload announces an accept or decline.
type ChallengeRespondedPayload struct {
	ChallengeID  sharedtypes.ChallengeID      `json:"challenge_id"`
	ChallengerID sharedtypes.ProfileID        `json:"challenger_id"`
	ChallengedID sharedtypes.ProfileID        `json:"challenged_id"`
	Decision     sharedtypes.ResponseDecision `json:"decision"`
	Venue        string                       `json:"venue"`
	ProposedTime time.Time                    `json:"proposed_time"`
}

// MatchWentLivePayload announces that a match has started. Consumers fan this
// out to the whole league as a "come watch" broadcast.
type MatchWentLivePayload struct {
	ChallengeID    sharedtypes.ChallengeID `json:"challenge_id"`
	ChallengerID   sharedtypes.ProfileID   `json:"challenger_id"`
	ChallengedID   sharedtypes.ProfileID   `json:"challenged_id"`
	ChallengerName string                  `json:"challenger_name"`
	ChallengedName string                  `json:"challenged_name"`
	GameType       sharedtypes.GameType    `json:"game_type"`
	StreamURL      string                  `json:"stream_url,omitempty"`
}

// MatchCompletedPayload announces a finalized match and its settlement result.
type MatchCompletedPayload struct {
	ChallengeID   sharedtypes.ChallengeID `json:"challenge_id"`
	WinnerID      sharedtypes.ProfileID   `json:"winner_id"`
	LoserID       sharedtypes.ProfileID   `json:"loser_id"`
	WinnerName    string                  `json:"winner_name"`
	FinalScore    string                  `json:"final_score"`
	GameType      sharedtypes.GameType    `json:"game_type"`
	NewWinnerRank int                     `json:"new_winner_rank"`
	NewLoserRank  int                     `json:"new_loser_rank"`
	RanksSwapped  bool                    `json:"ranks_swapped"`
}

// ChallengeExpiredPayload announces a pending challenge that lapsed.
type ChallengeExpiredPayload struct {
	ChallengeID  sharedtypes.ChallengeID `json:"challenge_id"`
	ChallengerID sharedtypes.ProfileID   `json:"challenger_id"`
	ChallengedID sharedtypes.ProfileID   `json:"challenged_id"`
	Deadline     time.Time               `json:"deadline"`
}

// NewMessage marshals payload into a watermill message ready to publish.
func NewMessage(payload interface{}) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), data), nil
}

// Unmarshal decodes a message payload into out.
func Unmarshal(msg *message.Message, out interface{}) error {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}
	return nil
}
