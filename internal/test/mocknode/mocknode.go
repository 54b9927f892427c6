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

// Package mocknode provides an in-process Symbol REST node for tests. It
// accepts transfer transactions, confirms them immediately and serves them
// back through the account and history endpoints.
package mocknode

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/hometto/symbol"
)

type SubmitMode int

const (
	// SubmitAccept answers 202 and confirms the transaction
	SubmitAccept SubmitMode = iota
	// SubmitReject answers 409 with a structured error body
	SubmitReject
	// SubmitUnavailable answers a bare 503
	SubmitUnavailable
	// SubmitHang blocks until the client gives up
	SubmitHang
)

// Transaction is a confirmed transfer as stored by the node
type Transaction struct {
	Hash          string
	Height        uint64
	Timestamp     uint64
	Signer        symbol.PublicKey
	SignerAddress symbol.Address
	Recipient     symbol.Address
	Message       []byte
	Fee           uint64
}

type Node struct {
	network    *symbol.Network
	server     *httptest.Server
	done       chan struct{}
	mu         sync.Mutex
	height     uint64
	submitMode SubmitMode
	offline    bool
	balances   map[symbol.Address]uint64
	confirmed  []Transaction
	requests   map[string]int
}

// New starts a node that is shut down when the test ends
func New(t testing.TB, network *symbol.Network) *Node {
	t.Helper()
	n := &Node{
		network:  network,
		height:   1000,
		balances: make(map[symbol.Address]uint64),
		requests: make(map[string]int),
		done:     make(chan struct{}),
	}
	n.server = httptest.NewServer(n.handler())
	t.Cleanup(n.Close)
	return n
}

// Close releases hanging submissions and shuts the server down. It is safe
// to call more than once.
func (n *Node) Close() {
	n.mu.Lock()
	select {
	case <-n.done:
	default:
		close(n.done)
	}
	n.mu.Unlock()
	n.server.Close()
}

func (n *Node) URL() string {
	return n.server.URL
}

func (n *Node) SetSubmitMode(mode SubmitMode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitMode = mode
}

// SetOffline makes every endpoint answer a bare 503
func (n *Node) SetOffline(offline bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offline = offline
}

func (n *Node) SetHeight(height uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.height = height
}

// SetBalance sets the currency balance of an account in micro-units
func (n *Node) SetBalance(addr symbol.Address, amount uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balances[addr] = amount
}

// Confirm records a transaction as confirmed without going through submission
func (n *Node) Confirm(tx *symbol.SignedTransaction) Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.confirmLocked(tx)
}

// Transactions returns the confirmed transactions in submission order
func (n *Node) Transactions() []Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.confirmed)
}

// Requests returns how many requests were made for the given route pattern,
// for example "PUT /transactions"
func (n *Node) Requests(pattern string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.requests[pattern]
}

func (n *Node) confirmLocked(tx *symbol.SignedTransaction) Transaction {
	n.height++
	ret := Transaction{
		Hash:          tx.Hash,
		Height:        n.height,
		Timestamp:     n.network.NetworkTime(time.Now()),
		Signer:        tx.Signer,
		SignerAddress: symbol.NewAddress(n.network, tx.Signer),
		Recipient:     tx.Recipient,
		Message:       slices.Clone(tx.Message),
		Fee:           tx.Fee,
	}
	n.confirmed = append(n.confirmed, ret)
	return ret
}

func (n *Node) handler() http.Handler {
	mux := http.NewServeMux()
	n.handle(mux, "PUT /transactions", n.handleSubmit)
	n.handle(mux, "GET /chain/info", n.handleChainInfo)
	n.handle(mux, "GET /accounts/{address}", n.handleAccount)
	n.handle(mux, "GET /transactions/confirmed", n.handleConfirmed)
	return mux
}

func (n *Node) handle(
	mux *http.ServeMux,
	pattern string,
	h http.HandlerFunc,
) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		n.requests[pattern]++
		offline := n.offline
		n.mu.Unlock()
		if offline {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Service Unavailable"))
			return
		}
		h(w, r)
	})
}

func (n *Node) handleSubmit(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	mode := n.submitMode
	n.mu.Unlock()
	switch mode {
	case SubmitReject:
		writeError(w, http.StatusConflict, "InvalidArgument", "transaction rejected")
		return
	case SubmitUnavailable:
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	case SubmitHang:
		// The server only notices a client disconnect once the body has
		// been consumed
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-n.done:
		}
		return
	}
	var req struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidContent", err.Error())
		return
	}
	payload, err := hex.DecodeString(req.Payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidContent", err.Error())
		return
	}
	tx, err := symbol.DecodeTransfer(n.network, payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidContent", err.Error())
		return
	}
	if !tx.VerifySignature() {
		writeError(w, http.StatusConflict, "InvalidArgument", "invalid signature")
		return
	}
	n.mu.Lock()
	n.confirmLocked(tx)
	n.mu.Unlock()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "packet 9 was pushed to the network via /transactions",
	})
}

func (n *Node) handleChainInfo(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	height := n.height
	n.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"height":    strconv.FormatUint(height, 10),
		"scoreHigh": "0",
		"scoreLow":  "1",
		"latestFinalizedBlock": map[string]any{
			"finalizationEpoch": 1,
			"finalizationPoint": 1,
			"height":            strconv.FormatUint(height, 10),
		},
	})
}

func (n *Node) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := symbol.ParseAddress(r.PathValue("address"))
	if err != nil {
		writeError(w, http.StatusConflict, "InvalidArgument", err.Error())
		return
	}
	n.mu.Lock()
	balance, ok := n.balances[addr]
	n.mu.Unlock()
	if !ok {
		writeError(
			w,
			http.StatusNotFound,
			"ResourceNotFound",
			"no resource exists with id '"+addr.String()+"'",
		)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": map[string]any{
			"address": strings.ToUpper(hex.EncodeToString(addr[:])),
			"mosaics": []map[string]string{
				{
					"id":     n.network.CurrencyMosaicHex(),
					"amount": strconv.FormatUint(balance, 10),
				},
			},
		},
	})
}

func (n *Node) handleConfirmed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	addr, err := symbol.ParseAddress(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusConflict, "InvalidArgument", err.Error())
		return
	}
	pageSize := queryInt(query.Get("pageSize"), 10)
	pageNumber := queryInt(query.Get("pageNumber"), 1)
	n.mu.Lock()
	var matches []Transaction
	for _, tx := range n.confirmed {
		if tx.SignerAddress == addr || tx.Recipient == addr {
			matches = append(matches, tx)
		}
	}
	n.mu.Unlock()
	if query.Get("order") == "desc" {
		slices.Reverse(matches)
	}
	data := []map[string]any{}
	start := (pageNumber - 1) * pageSize
	for i := start; i < len(matches) && i < start+pageSize; i++ {
		data = append(data, n.entryJSON(matches[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"pagination": map[string]int{
			"pageNumber": pageNumber,
			"pageSize":   pageSize,
		},
	})
}

func (n *Node) entryJSON(tx Transaction) map[string]any {
	txJSON := map[string]any{
		"signerPublicKey":  tx.Signer.String(),
		"version":          1,
		"network":          int(n.network.Identifier),
		"type":             int(symbol.TransferTransactionType),
		"maxFee":           strconv.FormatUint(tx.Fee, 10),
		"recipientAddress": strings.ToUpper(hex.EncodeToString(tx.Recipient[:])),
		"mosaics":          []any{},
	}
	if len(tx.Message) > 0 {
		txJSON["message"] = strings.ToUpper(
			hex.EncodeToString(
				append([]byte{symbol.PlainMessageMarker}, tx.Message...),
			),
		)
	}
	return map[string]any{
		"meta": map[string]any{
			"height":    strconv.FormatUint(tx.Height, 10),
			"hash":      tx.Hash,
			"timestamp": strconv.FormatUint(tx.Timestamp, 10),
		},
		"transaction": txJSON,
	}
}

func queryInt(value string, def int) int {
	ret, err := strconv.Atoi(value)
	if err != nil || ret < 1 {
		return def
	}
	return ret
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
