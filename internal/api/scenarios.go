package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nimbushome/nimbus-core/internal/scenario"
)

// scenarioPayload is the rule wire format, shared with peer deployments:
// the scenario HTTP client consumes exactly this shape, so one Nimbus
// instance can serve rules to another.
type scenarioPayload struct {
	ID               string `json:"id"`
	DeviceTypeID     string `json:"deviceTypeId"`
	WeatherCondition string `json:"weatherCondition"`
	ConditionValue   string `json:"conditionValue"`
	Operator         string `json:"operator"`
	NewStatus        string `json:"newStatus"`
}

func toScenarioPayload(r *scenario.Rule) scenarioPayload {
	return scenarioPayload{
		ID:               r.ID,
		DeviceTypeID:     r.DeviceTypeID,
		WeatherCondition: r.WeatherCondition,
		ConditionValue:   r.ConditionValue,
		Operator:         r.Operator,
		NewStatus:        r.NewStatus,
	}
}

func toScenarioPayloads(rules []scenario.Rule) []scenarioPayload {
	out := make([]scenarioPayload, 0, len(rules))
	for i := range rules {
		out = append(out, toScenarioPayload(&rules[i]))
	}
	return out
}

// handleListScenarios returns all rules, or the rules for one device type
// when the deviceTypeId query parameter is set.
func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	if typeID := r.URL.Query().Get("deviceTypeId"); typeID != "" {
		rules, err := s.rules.ListRulesByDeviceType(r.Context(), typeID)
		if err != nil {
			s.logger.Error("listing scenarios by type", "device_type", typeID, "error", err)
			writeInternalError(w, "failed to list scenarios")
			return
		}
		writeJSON(w, http.StatusOK, toScenarioPayloads(rules))
		return
	}

	rules, err := s.rules.ListRules(r.Context())
	if err != nil {
		s.logger.Error("listing scenarios", "error", err)
		writeInternalError(w, "failed to list scenarios")
		return
	}
	writeJSON(w, http.StatusOK, toScenarioPayloads(rules))
}

// handleCreateScenario creates a new rule.
func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rule := &scenario.Rule{
		DeviceTypeID:     req.DeviceTypeID,
		WeatherCondition: req.WeatherCondition,
		ConditionValue:   req.ConditionValue,
		Operator:         req.Operator,
		NewStatus:        req.NewStatus,
	}

	if err := s.rules.CreateRule(r.Context(), rule); err != nil {
		if errors.Is(err, scenario.ErrInvalidRule) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.logger.Error("creating scenario", "error", err)
		writeInternalError(w, "failed to create scenario")
		return
	}

	writeJSON(w, http.StatusCreated, toScenarioPayload(rule))
}

// handleGetScenario returns a single rule by ID.
func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rule, err := s.rules.GetRule(r.Context(), id)
	if err != nil {
		if errors.Is(err, scenario.ErrRuleNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		s.logger.Error("getting scenario", "id", id, "error", err)
		writeInternalError(w, "failed to get scenario")
		return
	}

	writeJSON(w, http.StatusOK, toScenarioPayload(rule))
}

// handleUpdateScenario updates a rule.
func (s *Server) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rule, err := s.rules.GetRule(r.Context(), id)
	if err != nil {
		if errors.Is(err, scenario.ErrRuleNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		writeInternalError(w, "failed to get scenario")
		return
	}

	var req scenarioPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.DeviceTypeID != "" {
		rule.DeviceTypeID = req.DeviceTypeID
	}
	if req.WeatherCondition != "" {
		rule.WeatherCondition = req.WeatherCondition
	}
	if req.ConditionValue != "" {
		rule.ConditionValue = req.ConditionValue
	}
	if req.Operator != "" {
		rule.Operator = req.Operator
	}
	if req.NewStatus != "" {
		rule.NewStatus = req.NewStatus
	}

	if err := s.rules.UpdateRule(r.Context(), rule); err != nil {
		switch {
		case errors.Is(err, scenario.ErrInvalidRule):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case errors.Is(err, scenario.ErrRuleNotFound):
			writeNotFound(w, "scenario not found")
		default:
			s.logger.Error("updating scenario", "id", id, "error", err)
			writeInternalError(w, "failed to update scenario")
		}
		return
	}

	writeJSON(w, http.StatusOK, toScenarioPayload(rule))
}

// handleDeleteScenario removes a rule.
func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.rules.DeleteRule(r.Context(), id); err != nil {
		if errors.Is(err, scenario.ErrRuleNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		s.logger.Error("deleting scenario", "id", id, "error", err)
		writeInternalError(w, "failed to delete scenario")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
