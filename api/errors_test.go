package api

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	scoreboardservice "github.com/capital-ladder/backend/app/modules/scoreboard/application"
	"github.com/capital-ladder/backend/app/shared/apperrors"
	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name: "ineligible cooldown",
			err: &apperrors.IneligibleError{
				Reason:            apperrors.ReasonInCooldown,
				CooldownRemaining: 14 * time.Hour,
			},
			wantStatus: 409,
			wantKind:   "INELIGIBLE",
		},
		{
			name: "ineligible range",
			err: &apperrors.IneligibleError{
				Reason:       apperrors.ReasonOutOfRange,
				RankGap:      4,
				AllowedRange: 2,
			},
			wantStatus: 409,
			wantKind:   "INELIGIBLE",
		},
		{
			name:       "not found",
			err:        &apperrors.NotFoundError{Entity: "challenge", ID: "x"},
			wantStatus: 404,
			wantKind:   "NOT_FOUND",
		},
		{
			name:       "forbidden",
			err:        &apperrors.ForbiddenError{Action: "respond to this challenge"},
			wantStatus: 403,
			wantKind:   "FORBIDDEN",
		},
		{
			name: "invalid state",
			err: &apperrors.InvalidStateError{
				Current:   sharedtypes.StatusCompleted,
				Attempted: "finalize",
			},
			wantStatus: 409,
			wantKind:   "INVALID_STATE",
		},
		{
			name:       "match not complete",
			err:        &apperrors.MatchNotCompleteError{Score1: 3, Score2: 3, GamesToWin: 7},
			wantStatus: 409,
			wantKind:   "MATCH_NOT_COMPLETE",
		},
		{
			name:       "settlement failed",
			err:        &apperrors.SettlementFailedError{Err: errors.New("deadlock")},
			wantStatus: 409,
			wantKind:   "SETTLEMENT_FAILED",
		},
		{
			name:       "validation",
			err:        &apperrors.ValidationError{Field: "games_to_win", Detail: "must be between 3 and 13"},
			wantStatus: 400,
			wantKind:   "VALIDATION",
		},
		{
			name:       "unconfirmed reset",
			err:        scoreboardservice.ErrResetNotConfirmed,
			wantStatus: 400,
			wantKind:   "VALIDATION",
		},
		{
			name:       "unknown error",
			err:        errors.New("pq: connection refused"),
			wantStatus: 500,
			wantKind:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: duplicate key value violates unique constraint"))

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Message)
	assert.NotContains(t, rec.Body.String(), "duplicate key")
}
