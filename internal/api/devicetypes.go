package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nimbushome/nimbus-core/internal/device"
)

// deviceTypeRequest is the request body for creating or renaming a device type.
type deviceTypeRequest struct {
	Name string `json:"name"`
}

// handleListDeviceTypes returns all device types.
func (s *Server) handleListDeviceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.typeRepo.List(r.Context())
	if err != nil {
		s.logger.Error("listing device types", "error", err)
		writeInternalError(w, "failed to list device types")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_types": types,
		"count":        len(types),
	})
}

// handleCreateDeviceType creates a new device type.
func (s *Server) handleCreateDeviceType(w http.ResponseWriter, r *http.Request) {
	var req deviceTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dt := &device.DeviceType{Name: req.Name}
	if err := device.ValidateType(dt); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if dt.ID == "" {
		dt.ID = device.GenerateTypeID()
	}

	if err := s.typeRepo.Create(r.Context(), dt); err != nil {
		if errors.Is(err, device.ErrTypeNameExists) {
			writeConflict(w, "a device type with that name already exists")
			return
		}
		s.logger.Error("creating device type", "error", err)
		writeInternalError(w, "failed to create device type")
		return
	}

	writeJSON(w, http.StatusCreated, dt)
}

// handleGetDeviceType returns a single device type by ID.
func (s *Server) handleGetDeviceType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dt, err := s.typeRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrTypeNotFound) {
			writeNotFound(w, "device type not found")
			return
		}
		s.logger.Error("getting device type", "id", id, "error", err)
		writeInternalError(w, "failed to get device type")
		return
	}

	writeJSON(w, http.StatusOK, dt)
}

// handleUpdateDeviceType renames a device type.
func (s *Server) handleUpdateDeviceType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dt, err := s.typeRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrTypeNotFound) {
			writeNotFound(w, "device type not found")
			return
		}
		writeInternalError(w, "failed to get device type")
		return
	}

	var req deviceTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dt.Name = req.Name
	if err := device.ValidateType(dt); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := s.typeRepo.Update(r.Context(), dt); err != nil {
		switch {
		case errors.Is(err, device.ErrTypeNameExists):
			writeConflict(w, "a device type with that name already exists")
		case errors.Is(err, device.ErrTypeNotFound):
			writeNotFound(w, "device type not found")
		default:
			s.logger.Error("updating device type", "id", id, "error", err)
			writeInternalError(w, "failed to update device type")
		}
		return
	}

	writeJSON(w, http.StatusOK, dt)
}

// handleDeleteDeviceType removes a device type.
// Types still referenced by devices cannot be deleted.
func (s *Server) handleDeleteDeviceType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.typeRepo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, device.ErrTypeNotFound):
			writeNotFound(w, "device type not found")
		case errors.Is(err, device.ErrTypeInUse):
			writeConflict(w, "device type is still referenced by devices")
		default:
			s.logger.Error("deleting device type", "id", id, "error", err)
			writeInternalError(w, "failed to delete device type")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
