package api

import "net/http"

// handleListStatusChanges returns the most recent status changes across
// all devices, newest first.
func (s *Server) handleListStatusChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := s.changeRepo.List(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("listing status changes", "error", err)
		writeInternalError(w, "failed to list status changes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"changes": changes,
		"count":   len(changes),
	})
}
