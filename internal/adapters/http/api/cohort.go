package api

import (
	"context"
	"net/http"

	"github.com/okian/rinkrank/internal/domain/types"
)

// CohortDependencies defines the interface for cohort statistics.
type CohortDependencies interface {
	Cohort(ctx context.Context, q types.Query) (skaters, goalies types.Cohort, err error)
}

// CohortHandler handles cohort requests.
type CohortHandler struct {
	deps CohortDependencies
}

// NewCohortHandler creates a new cohort handler.
func NewCohortHandler(deps CohortDependencies) *CohortHandler {
	return &CohortHandler{deps: deps}
}

type cohortResponse struct {
	Skaters    types.Cohort       `json:"skaters"`
	Goalies    types.Cohort       `json:"goalies"`
	MeanSkater map[string]float64 `json:"mean_skater"`
	MeanGoalie map[string]float64 `json:"mean_goalie"`
}

// HandleGetCohort handles GET /cohort with leaderboard filter parameters.
func (h *CohortHandler) HandleGetCohort(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_cohort"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	skaters, goalies, err := h.deps.Cohort(r.Context(), q)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cohortResponse{
		Skaters:    skaters,
		Goalies:    goalies,
		MeanSkater: skaters.MeanPlayer(),
		MeanGoalie: goalies.MeanPlayer(),
	})
}
