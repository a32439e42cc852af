package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/rinkrank/internal/domain/types"
)

// maxBodyBytes bounds POST /leaderboard bodies.
const maxBodyBytes = 1 << 20

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, q types.Query) (types.Leaderboard, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleLeaderboard handles GET /leaderboard?... and POST /leaderboard
// with a JSON query body.
func (h *LeaderboardHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaderboard"

	var (
		q   types.Query
		err error
	)
	switch r.Method {
	case http.MethodGet:
		q, err = parseQuery(r.URL.Query())
	case http.MethodPost:
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if derr := dec.Decode(&q); derr != nil {
			err = fmt.Errorf("%w: %w", ErrBadRequest, derr)
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrBadRequest))
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}

	lb, err := h.deps.Leaderboard(r.Context(), q)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}
