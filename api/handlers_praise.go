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
	"github.com/blinklabs-io/hometto/database/models"
)

// handleSendPraise handles POST /api/v1/praises. The response reflects the
// committed praise. Its ledgerTxHash is filled in later when anchoring
// succeeds.
func (s *Server) handleSendPraise(w http.ResponseWriter, r *http.Request) {
	var req SendPraiseRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	praise, err := s.classroom.SendPraise(
		r.Context(),
		classroom.SendPraiseRequest{
			FromUserID:  req.FromUserID,
			ToUserID:    req.ToUserID,
			StampType:   req.StampType,
			Message:     req.Message,
			TokenAmount: req.TokenAmount,
		},
	)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, praiseResponse(praise))
}

func (s *Server) handleGetPraise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	praise, err := s.store.GetPraise(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, praiseResponse(praise))
}

// handleListPraises handles GET /api/v1/praises, the classroom feed
func (s *Server) handleListPraises(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	praises, err := s.store.ListPraises(params.Count, params.Offset())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePraises(w, praises, params)
}

func (s *Server) handleListPraisesReceived(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.listPraises(w, r, s.store.ListPraisesByRecipient)
}

func (s *Server) handleListPraisesSent(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.listPraises(w, r, s.store.ListPraisesBySender)
}

func (s *Server) listPraises(
	w http.ResponseWriter,
	r *http.Request,
	list func(userID uint, limit, offset int) ([]models.Praise, error),
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
	if _, err := s.store.GetUser(id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	praises, err := list(id, params.Count, params.Offset())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePraises(w, praises, params)
}

func writePraises(
	w http.ResponseWriter,
	praises []models.Praise,
	params PaginationParams,
) {
	ret := make([]PraiseResponse, 0, len(praises))
	for i := range praises {
		ret = append(ret, praiseResponse(&praises[i]))
	}
	SetPaginationHeaders(w, len(ret), params)
	writeJSON(w, http.StatusOK, ret)
}
