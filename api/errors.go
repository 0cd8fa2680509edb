package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	scoreboardservice "github.com/capital-ladder/backend/app/modules/scoreboard/application"
	"github.com/capital-ladder/backend/app/shared/apperrors"
)

// errorBody is the wire shape for every domain error. Kind plus the relevant
// values lets the client render a specific message instead of a generic
// failure.
type errorBody struct {
	Kind              string `json:"kind"`
	Message           string `json:"message"`
	Reason            string `json:"reason,omitempty"`
	CooldownRemaining string `json:"cooldown_remaining,omitempty"`
	RankGap           int    `json:"rank_gap,omitempty"`
	AllowedRange      int    `json:"allowed_range,omitempty"`
	CurrentStatus     string `json:"current_status,omitempty"`
}

// writeError maps a domain error to a status code and structured body.
func writeError(w http.ResponseWriter, err error) {
	var (
		ineligible  *apperrors.IneligibleError
		notFound    *apperrors.NotFoundError
		forbidden   *apperrors.ForbiddenError
		invalid     *apperrors.InvalidStateError
		notComplete *apperrors.MatchNotCompleteError
		settlement  *apperrors.SettlementFailedError
		validation  *apperrors.ValidationError
	)

	switch {
	case errors.As(err, &ineligible):
		writeJSON(w, http.StatusConflict, errorBody{
			Kind:              "INELIGIBLE",
			Message:           ineligible.Error(),
			Reason:            string(ineligible.Reason),
			CooldownRemaining: ineligible.CooldownRemaining.Round(time.Second).String(),
			RankGap:           ineligible.RankGap,
			AllowedRange:      ineligible.AllowedRange,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Kind: "NOT_FOUND", Message: notFound.Error()})
	case errors.As(err, &forbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Kind: "FORBIDDEN", Message: forbidden.Error()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusConflict, errorBody{
			Kind:          "INVALID_STATE",
			Message:       invalid.Error(),
			CurrentStatus: string(invalid.Current),
		})
	case errors.As(err, &notComplete):
		writeJSON(w, http.StatusConflict, errorBody{Kind: "MATCH_NOT_COMPLETE", Message: notComplete.Error()})
	case errors.As(err, &settlement):
		writeJSON(w, http.StatusConflict, errorBody{Kind: "SETTLEMENT_FAILED", Message: settlement.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: "VALIDATION", Message: validation.Error()})
	case errors.Is(err, scoreboardservice.ErrResetNotConfirmed):
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: "VALIDATION", Message: err.Error()})
	case errors.Is(err, profiledb.ErrProfileNotFound), errors.Is(err, challengedb.ErrChallengeNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Kind: "NOT_FOUND", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Kind: "INTERNAL", Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
