package api

import (
	"errors"
	"net/http"

	"github.com/nimbushome/nimbus-core/internal/device"
	"github.com/nimbushome/nimbus-core/internal/evaluation"
	"github.com/nimbushome/nimbus-core/internal/scenario"
	"github.com/nimbushome/nimbus-core/internal/weather"
)

// handleRunEvaluation triggers one evaluation pass over all devices.
//
// Admin only (enforced by the router). The caller's bearer token is
// forwarded to the weather and rule collaborators for the duration of the
// run. The run is synchronous: the response reports the completed pass or
// the error that aborted it. Collaborator errors keep their identity
// through the run wrapper, so an upstream credential rejection surfaces
// as 401 rather than a generic gateway failure.
func (s *Server) handleRunEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeBadGateway, "evaluation not configured")
		return
	}

	report, err := s.orchestrator.Run(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			writeNotFound(w, "device disappeared during evaluation")
		case errors.Is(err, device.ErrNoOpTransition):
			writeConflict(w, "a matching rule targeted a device's current status")
		case errors.Is(err, weather.ErrUnauthorized), errors.Is(err, scenario.ErrUnauthorized):
			writeUnauthorized(w, "upstream service rejected the forwarded credential")
		case errors.Is(err, evaluation.ErrRunFailed):
			s.logger.Error("evaluation run aborted", "error", err)
			writeError(w, http.StatusBadGateway, ErrCodeBadGateway, err.Error())
		default:
			s.logger.Error("evaluation run failed", "error", err)
			writeInternalError(w, "evaluation run failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}
