// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/hometto/classroom"
	"github.com/blinklabs-io/hometto/database"
	"github.com/blinklabs-io/hometto/database/models"
)

const maxRequestBodySize = 64 * 1024

var errInvalidID = errors.New("invalid id")

// writeJSON writes a JSON response with the given status
// code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeServiceError maps a classroom or storage error to its HTTP status
func (s *Server) writeServiceError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	switch {
	case errors.Is(err, classroom.ErrInvalidRequest),
		errors.Is(err, errInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrPraiseNotFound),
		errors.Is(err, models.ErrCooperationNotFound),
		errors.Is(err, models.ErrLedgerAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNotParticipant):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrAlreadyApproved):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrStorageUnavailable):
		s.logger.Error(
			"storage unavailable",
			"path", r.URL.Path,
			"error", err,
		)
		writeError(
			w,
			http.StatusServiceUnavailable,
			"storage is temporarily unavailable",
		)
	default:
		s.logger.Error(
			"request failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %w", classroom.ErrInvalidRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w %q", errInvalidID, r.PathValue("id"))
	}
	return uint(id), nil
}

// handleHealth handles GET /health
func (s *Server) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.DisplayName == "" || len(req.DisplayName) > 255 {
		writeError(w, http.StatusBadRequest, "displayName is required")
		return
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "unknown role "+req.Role)
		return
	}
	user := &models.User{DisplayName: req.DisplayName, Role: req.Role}
	if err := s.store.CreateUser(user); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	users, err := s.store.ListUsers(params.Count, params.Offset())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	ret := make([]UserResponse, 0, len(users))
	for i := range users {
		ret = append(ret, userResponse(&users[i]))
	}
	SetPaginationHeaders(w, len(ret), params)
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	user, err := s.store.GetUser(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(user))
}

func (s *Server) handleGetLedgerAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	acct, err := s.store.GetLedgerAccount(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LedgerAccountResponse{
		UserID:    acct.UserID,
		Network:   acct.Network,
		Address:   acct.Address,
		PublicKey: acct.PublicKey,
		CreatedAt: acct.CreatedAt,
	})
}

// handleStats handles GET /api/v1/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalUsers:            stats.Users,
		TotalPraises:          stats.Praises,
		TotalTokens:           stats.TotalTokens,
		AnchoredPraises:       stats.AnchoredPraises,
		TotalCooperations:     stats.Cooperations,
		CompletedCooperations: stats.CompletedCooperations,
		AnchoredCooperations:  stats.AnchoredCooperations,
	})
}
