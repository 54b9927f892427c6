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
	"errors"
	"net/http"

	"github.com/blinklabs-io/hometto/symbol"
)

func (s *Server) requireLedger(w http.ResponseWriter) bool {
	if s.ledger == nil {
		writeError(
			w,
			http.StatusServiceUnavailable,
			"ledger queries are not configured",
		)
		return false
	}
	return true
}

func (s *Server) writeLedgerError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	if errors.Is(err, symbol.ErrInvalidAddress) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Warn(
		"ledger query failed",
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusBadGateway, "ledger node query failed")
}

// handleLedgerStatus reports node connectivity. An unreachable node is a
// normal answer, not an error.
func (s *Server) handleLedgerStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireLedger(w) {
		return
	}
	status := s.ledger.NetworkStatus(r.Context())
	resp := LedgerStatusResponse{
		Network:   s.ledger.Network().Name,
		Connected: status.Connected,
		Height:    status.Height,
	}
	if status.Err != nil {
		resp.Error = status.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedgerBalance(w http.ResponseWriter, r *http.Request) {
	if !s.requireLedger(w) {
		return
	}
	address := r.PathValue("address")
	result := s.ledger.Balance(r.Context(), address)
	if !result.Success {
		s.writeLedgerError(w, r, result.Err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{
		Address: address,
		Balance: result.Balance.StringFixed(symbol.Divisibility),
	})
}

// handleLedgerTransactions lists confirmed transactions of an address,
// newest first. Only the pages needed to fill the requested page are
// fetched from the node.
func (s *Server) handleLedgerTransactions(
	w http.ResponseWriter,
	r *http.Request,
) {
	if !s.requireLedger(w) {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip := params.Offset()
	ret := make([]TransactionResponse, 0, params.Count)
	history := s.ledger.History(r.Context(), r.PathValue("address"), params.Count)
	for entry, err := range history {
		if err != nil {
			s.writeLedgerError(w, r, err)
			return
		}
		if skip > 0 {
			skip--
			continue
		}
		ret = append(ret, TransactionResponse{
			Hash:      entry.Hash,
			Height:    entry.Height,
			Timestamp: entry.Timestamp,
			Signer:    entry.Signer,
			Recipient: entry.Recipient,
			Message:   entry.Message,
		})
		if len(ret) == params.Count {
			break
		}
	}
	SetPaginationHeaders(w, len(ret), params)
	writeJSON(w, http.StatusOK, ret)
}
