package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nimbushome/nimbus-core/internal/device"
)

// createDeviceRequest is the request body for POST /devices.
type createDeviceRequest struct {
	Name         string  `json:"name"`
	DeviceTypeID string  `json:"device_type_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Status       string  `json:"status"`
}

// updateDeviceRequest is the request body for PATCH /devices/{id}.
// Status is deliberately absent: status changes go through the
// transition endpoint so they are guarded and audited.
type updateDeviceRequest struct {
	Name         *string  `json:"name"`
	DeviceTypeID *string  `json:"device_type_id"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// setStatusRequest is the request body for PATCH /devices/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// handleListDevices returns all devices, optionally filtered by device type.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	var (
		devices []device.Device
		err     error
	)
	if typeID := r.URL.Query().Get("device_type_id"); typeID != "" {
		devices, err = s.registry.ListDevicesByType(r.Context(), typeID)
	} else {
		devices, err = s.registry.ListDevices(r.Context())
	}
	if err != nil {
		s.logger.Error("listing devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleCreateDevice creates a new device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev := &device.Device{
		Name:         req.Name,
		DeviceTypeID: req.DeviceTypeID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       req.Status,
	}

	if err := s.registry.CreateDevice(r.Context(), dev); err != nil {
		switch {
		case errors.Is(err, device.ErrInvalidDevice):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case errors.Is(err, device.ErrTypeNotFound):
			writeBadRequest(w, "device type does not exist")
		default:
			s.logger.Error("creating device", "error", err)
			writeInternalError(w, "failed to create device")
		}
		return
	}

	writeJSON(w, http.StatusCreated, dev)
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device", "id", id, "error", err)
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleUpdateDevice updates a device's metadata.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	var req updateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name != nil {
		dev.Name = *req.Name
	}
	if req.DeviceTypeID != nil {
		dev.DeviceTypeID = *req.DeviceTypeID
	}
	if req.Latitude != nil {
		dev.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		dev.Longitude = *req.Longitude
	}

	if err := s.registry.UpdateDevice(r.Context(), dev); err != nil {
		switch {
		case errors.Is(err, device.ErrInvalidDevice):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case errors.Is(err, device.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, device.ErrTypeNotFound):
			writeBadRequest(w, "device type does not exist")
		default:
			s.logger.Error("updating device", "id", id, "error", err)
			writeInternalError(w, "failed to update device")
		}
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleDeleteDevice removes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.registry.DeleteDevice(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("deleting device", "id", id, "error", err)
		writeInternalError(w, "failed to delete device")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSetDeviceStatus applies a manual status transition.
//
// Manual changes record the cause "manual change" in the audit trail and
// are rejected with 409 when the device already has the target status.
func (s *Server) handleSetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	change, err := s.changer.Apply(r.Context(), id, req.Status, device.ManualCause, nil)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, device.ErrNoOpTransition):
			writeConflict(w, "device already has the requested status")
		case errors.Is(err, device.ErrInvalidDevice):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("applying status change", "id", id, "error", err)
			writeInternalError(w, "failed to change status")
		}
		return
	}

	writeJSON(w, http.StatusOK, change)
}

// handleListDeviceChanges returns a device's status change history, newest first.
func (s *Server) handleListDeviceChanges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Verify the device exists so a typo'd ID is a 404, not an empty list.
	if _, err := s.registry.GetDevice(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	changes, err := s.changeRepo.ListByDevice(r.Context(), id, parseLimit(r))
	if err != nil {
		s.logger.Error("listing status changes", "id", id, "error", err)
		writeInternalError(w, "failed to list status changes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"changes": changes,
		"count":   len(changes),
	})
}

// defaultListLimit bounds audit listings when no limit is given.
const defaultListLimit = 100

// parseLimit reads the "limit" query parameter, falling back to the default.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return limit
}
