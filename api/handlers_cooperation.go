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
	"net/http"

	"github.com/blinklabs-io/hometto/classroom"
)

func (s *Server) handleCreateCooperation(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req CreateCooperationRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	coop, err := s.classroom.CreateCooperation(
		r.Context(),
		classroom.CreateCooperationRequest{
			InitiatorID:    req.InitiatorID,
			Title:          req.Title,
			Description:    req.Description,
			ParticipantIDs: req.ParticipantIDs,
		},
	)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cooperationResponse(coop))
}

func (s *Server) handleGetCooperation(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	coop, err := s.store.GetCooperation(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cooperationResponse(coop))
}

// handleApproveCooperation handles POST /api/v1/cooperations/{id}/approve.
// The approval that completes the cooperation is answered as soon as the
// rewards are committed.
func (s *Server) handleApproveCooperation(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req ApproveCooperationRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	coop, err := s.classroom.ApproveCooperation(r.Context(), id, req.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cooperationResponse(coop))
}

func (s *Server) handleListCooperations(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	coops, err := s.store.ListCooperationsByUser(id, params.Count, params.Offset())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	ret := make([]CooperationResponse, 0, len(coops))
	for i := range coops {
		ret = append(ret, cooperationResponse(&coops[i]))
	}
	SetPaginationHeaders(w, len(ret), params)
	writeJSON(w, http.StatusOK, ret)
}
