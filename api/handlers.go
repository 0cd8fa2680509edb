package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	activityservice "github.com/capital-ladder/backend/app/modules/activity/application"
	challengeservice "github.com/capital-ladder/backend/app/modules/challenge/application"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	profileservice "github.com/capital-ladder/backend/app/modules/profile/application"
	scoreboardservice "github.com/capital-ladder/backend/app/modules/scoreboard/application"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/go-chi/chi/v5"
)

// Handlers exposes the ladder core over HTTP.
type Handlers struct {
	profiles   *profileservice.ProfileService
	challenges *challengeservice.ChallengeService
	scoreboard *scoreboardservice.ScoreboardService
	activity   *activityservice.ActivityService
}

// NewHandlers creates the API handler set.
func NewHandlers(profiles *profileservice.ProfileService, challenges *challengeservice.ChallengeService, scoreboard *scoreboardservice.ScoreboardService, activity *activityservice.ActivityService) *Handlers {
	return &Handlers{
		profiles:   profiles,
		challenges: challenges,
		scoreboard: scoreboard,
		activity:   activity,
	}
}

type createChallengeRequest struct {
	TargetID     string    `json:"target_id"`
	GameType     string    `json:"game_type"`
	GamesToWin   int       `json:"games_to_win"`
	ProposedTime time.Time `json:"proposed_time"`
}

// CreateChallenge creates a pending challenge from the caller to a target.
func (h *Handlers) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerProfile(r.Context())
	if !ok {
		http.Error(w, "no profile on token", http.StatusUnauthorized)
		return
	}

	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apperrors.ValidationError{Field: "body", Detail: err.Error()})
		return
	}
	targetID, err := sharedtypes.ParseProfileID(req.TargetID)
	if err != nil {
		writeError(w, &apperrors.ValidationError{Field: "target_id", Detail: err.Error()})
		return
	}

	challenge, err := h.challenges.CreateChallenge(r.Context(), challengeservice.CreateChallengeInput{
		ChallengerID: callerID,
		TargetID:     targetID,
		GameType:     sharedtypes.GameType(req.GameType),
		GamesToWin:   req.GamesToWin,
		ProposedTime: req.ProposedTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, challenge)
}

type respondRequest struct {
	Decision     string     `json:"decision"`
	Venue        *string    `json:"venue,omitempty"`
	ProposedTime *time.Time `json:"proposed_time,omitempty"`
}

// Respond accepts or declines a pending challenge.
func (h *Handlers) Respond(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerProfile(r.Context())
	if !ok {
		http.Error(w, "no profile on token", http.StatusUnauthorized)
		return
	}
	challengeID, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, &apperrors.ValidationError{Field: "challenge_id", Detail: err.Error()})
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apperrors.ValidationError{Field: "body", Detail: err.Error()})
		return
	}

	challenge, err := h.challenges.Respond(r.Context(), challengeservice.RespondInput{
		ChallengeID:  challengeID,
		ResponderID:  callerID,
		Decision:     sharedtypes.ResponseDecision(req.Decision),
		Venue:        req.Venue,
		ProposedTime: req.ProposedTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

type goLiveRequest struct {
	StreamURL *string `json:"stream_url,omitempty"`
}

// GoLive starts a match.
func (h *Handlers) GoLive(w http.ResponseWriter, r *http.Request) {
	challengeID, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, &apperrors.ValidationError{Field: "challenge_id", Detail: err.Error()})
		return
	}

	var req goLiveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, &apperrors.ValidationError{Field: "body", Detail: err.Error()})
			return
		}
	}

	challenge, err := h.challenges.GoLive(r.Context(), challengeID, req.StreamURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

type finalizeRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// Finalize completes a live match and settles ranks.
func (h *Handlers) Finalize(w http.ResponseWriter, r *http.Request) {
	challengeID, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, &apperrors.ValidationError{Field: "challenge_id", Detail: err.Error()})
		return
	}

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apperrors.ValidationError{Field: "body", Detail: err.Error()})
		return
	}

	challenge, err := h.challenges.Finalize(r.Context(), challengeID, req.Score1, req.Score2)
	if err != nil {
		writeError(w, err)
		return
	}
	h.scoreboard.Close(challengeID)
	writeJSON(w, http.StatusOK, challenge)
}

// ListChallenges lists the caller's challenges, optionally filtered by status.
func (h *Handlers) ListChallenges(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerProfile(r.Context())
	if !ok {
		http.Error(w, "no profile on token", http.StatusUnauthorized)
		return
	}

	filter := challengedb.Filter{ProfileID: &callerID}
	if status := r.URL.Query().Get("status"); status != "" {
		s := sharedtypes.ChallengeStatus(status)
		filter.Status = &s
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	}

	challenges, err := h.challenges.ListChallenges(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

// GetChallenge returns one challenge.
func (h *Handlers) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, &apperrors.ValidationError{Field: "challenge_id", Detail: err.Error()})
		return
	}
	challenge, err := h.challenges.GetChallenge(r.Context(), challengeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

// Leaderboard returns all profiles by rank with the caller's per-row
// eligibility verdicts.
func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	var viewer *sharedtypes.ProfileID
	if callerID, ok := CallerProfile(r.Context()); ok {
		viewer = &callerID
	}
	rows, err := h.profiles.Leaderboard(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type claimRequest struct {
	DisplayName string  `json:"display_name"`
	Phone       *string `json:"phone,omitempty"`
}

// ClaimProfile resolves the caller's account to a profile, adopting a ghost
// when the display name matches one.
func (h *Handlers) ClaimProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := CallerAccount(r.Context())
	if !ok {
		http.Error(w, "no account on token", http.StatusUnauthorized)
		return
	}

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apperrors.ValidationError{Field: "body", Detail: err.Error()})
		return
	}
	if req.DisplayName == "" {
		writeError(w, &apperrors.ValidationError{Field: "display_name", Detail: "must not be empty"})
		return
	}

	profile, err := h.profiles.ClaimOrCreateProfile(r.Context(), accountID, req.DisplayName, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type scoreRequest struct {
	Score1 int  `json:"score1"`
	Score2 int  `json:"score2"`
	Reset  bool `json:"reset,omitempty"`
	// Confirmed must be true for a reset to go through.
	Confirmed bool `json:"confirmed,omitempty"`
}

// PublishScore pushes a live score update (or a confirmed reset) onto the
// challenge's score channel.
func (h *Handlers) PublishScore(w http.ResponseWriter, r *http.Request) {
	challengeID, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, &apperrors.ValidationError{Field: "challenge_id", Detail: err.Error()})
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apperrors.ValidationError{Field: "body", Detail: err.Error()})
		return
	}

	if req.Reset {
		if err := h.scoreboard.Reset(r.Context(), challengeID, req.Confirmed); err != nil {
			writeError(w, err)
			return
		}
	} else if err := h.scoreboard.Publish(r.Context(), challengeID, req.Score1, req.Score2); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.scoreboard.Latest(challengeID))
}

// GetScore returns the latest score a spectator should start from.
func (h *Handlers) GetScore(w http.ResponseWriter, r *http.Request) {
	challengeID, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, &apperrors.ValidationError{Field: "challenge_id", Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.scoreboard.Latest(challengeID))
}

// ListActivity returns the recent activity feed.
func (h *Handlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	activities, err := h.activity.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

// RegisterPushToken stores a device token for the caller.
func (h *Handlers) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerProfile(r.Context())
	if !ok {
		http.Error(w, "no profile on token", http.StatusUnauthorized)
		return
	}

	var req pushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apperrors.ValidationError{Field: "body", Detail: err.Error()})
		return
	}
	if err := h.activity.RegisterPushToken(r.Context(), callerID, req.Token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
