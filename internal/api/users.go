package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nimbushome/nimbus-core/internal/auth"
)

// minPasswordLength is the minimum accepted password length for user
// management endpoints.
const minPasswordLength = 8

// createUserRequest is the request body for POST /users.
type createUserRequest struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Password    string    `json:"password"`
	Role        auth.Role `json:"role"`
}

// updateUserRequest is the request body for PATCH /users/{id}.
// The password is deliberately absent: password changes go through the
// dedicated endpoint.
type updateUserRequest struct {
	DisplayName *string    `json:"display_name"`
	Role        *auth.Role `json:"role"`
	IsActive    *bool      `json:"is_active"`
}

// setPasswordRequest is the request body for PUT /users/{id}/password.
type setPasswordRequest struct {
	Password string `json:"password"`
}

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("listing users", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleCreateUser registers a new user account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidUsername(req.Username) {
		writeBadRequest(w, "invalid username")
		return
	}
	if !auth.IsValidUserRole(req.Role) {
		writeBadRequest(w, "invalid role")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password too short")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	user := &auth.User{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrUsernameExists) {
			writeConflict(w, "username already exists")
			return
		}
		s.logger.Error("creating user", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser returns a single user account by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("getting user", "id", id, "error", err)
		writeInternalError(w, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser updates a user's display name, role, or active flag.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		writeInternalError(w, "failed to get user")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		if !auth.IsValidUserRole(*req.Role) {
			writeBadRequest(w, "invalid role")
			return
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("updating user", "id", id, "error", err)
		writeInternalError(w, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleSetUserPassword replaces a user's password.
func (s *Server) handleSetUserPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password too short")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		writeInternalError(w, "failed to set password")
		return
	}

	if err := s.users.UpdatePassword(r.Context(), id, hash); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("setting password", "id", id, "error", err)
		writeInternalError(w, "failed to set password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteUser removes a user account.
//
// Deleting the account whose token authenticated the request is rejected:
// an admin locking themselves out mid-session is never intended.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if claims := claimsFromContext(r.Context()); claims != nil && claims.Subject == id {
		writeConflict(w, "cannot delete the account used for this request")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("deleting user", "id", id, "error", err)
		writeInternalError(w, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
