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

package ledgerclient

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/blinklabs-io/hometto/symbol"
	"github.com/go-resty/resty/v2"
)

// HistoryEntry is one confirmed transaction involving an account
type HistoryEntry struct {
	Hash      string
	Height    uint64
	Timestamp time.Time
	Type      uint16
	Signer    string
	Recipient string
	// Message is the decoded plain message, or nil when the transaction
	// carries none
	Message *string
}

type historyPage struct {
	Data []struct {
		Meta struct {
			Hash      string `json:"hash"`
			Height    uint64 `json:"height,string"`
			Timestamp uint64 `json:"timestamp,string"`
		} `json:"meta"`
		Transaction struct {
			Type             uint16 `json:"type"`
			SignerPublicKey  string `json:"signerPublicKey"`
			RecipientAddress string `json:"recipientAddress"`
			Message          string `json:"message"`
		} `json:"transaction"`
	} `json:"data"`
}

// History returns a lazy sequence over the confirmed transactions of an
// address, newest first. Each page is fetched only when the previous one has
// been consumed. The sequence ends on a short page or after the configured
// page cap, and it can be ranged over only once: later attempts yield
// ErrSequenceConsumed.
func (c *Client) History(
	ctx context.Context,
	address string,
	pageSize int,
) iter.Seq2[HistoryEntry, error] {
	if pageSize <= 0 {
		pageSize = DefaultHistoryPageSize
	}
	var consumed atomic.Bool
	return func(yield func(HistoryEntry, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield(HistoryEntry{}, ErrSequenceConsumed)
			return
		}
		addr, err := symbol.ParseNetworkAddress(c.network, address)
		if err != nil {
			yield(HistoryEntry{}, err)
			return
		}
		for pageNumber := 1; pageNumber <= c.maxHistoryPages; pageNumber++ {
			entries, err := c.historyPage(ctx, addr, pageSize, pageNumber)
			if err != nil {
				yield(HistoryEntry{}, err)
				return
			}
			for _, entry := range entries {
				if !yield(entry, nil) {
					return
				}
			}
			if len(entries) < pageSize {
				return
			}
		}
	}
}

func (c *Client) historyPage(
	ctx context.Context,
	addr symbol.Address,
	pageSize int,
	pageNumber int,
) ([]HistoryEntry, error) {
	params := map[string]string{
		"address":    addr.String(),
		"pageSize":   strconv.Itoa(pageSize),
		"pageNumber": strconv.Itoa(pageNumber),
		"order":      "desc",
	}
	cacheKey := fmt.Sprintf(
		"%s:%d:%d",
		c.addressCacheKey("history", addr),
		pageSize,
		pageNumber,
	)
	body, ok := c.cacheGet(cacheKey)
	if !ok {
		resp, err := c.do(
			ctx,
			"history",
			http.MethodGet,
			"/transactions/confirmed",
			func(req *resty.Request) {
				req.SetQueryParams(params)
			},
		)
		if err != nil {
			return nil, err
		}
		body = resp.Body()
		c.cacheSet(cacheKey, body)
	}
	var page historyPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf(
			"%w: decode history page: %w",
			ErrNodeUnreachable,
			err,
		)
	}
	ret := make([]HistoryEntry, 0, len(page.Data))
	for _, item := range page.Data {
		entry := HistoryEntry{
			Hash:      item.Meta.Hash,
			Height:    item.Meta.Height,
			Timestamp: c.network.WallTime(item.Meta.Timestamp),
			Type:      item.Transaction.Type,
			Message:   decodeMessage(item.Transaction.Message),
		}
		if item.Transaction.SignerPublicKey != "" {
			if pub, err := symbol.ParsePublicKey(item.Transaction.SignerPublicKey); err == nil {
				entry.Signer = symbol.NewAddress(c.network, pub).String()
			}
		}
		entry.Recipient = decodeAddress(item.Transaction.RecipientAddress)
		ret = append(ret, entry)
	}
	return ret, nil
}

// decodeMessage turns a hex message field into text, dropping the plain
// message marker
func decodeMessage(raw string) *string {
	if raw == "" {
		return nil
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil
	}
	if len(b) > 0 && b[0] == symbol.PlainMessageMarker {
		b = b[1:]
	}
	if !utf8.Valid(b) {
		return nil
	}
	msg := string(b)
	return &msg
}

// decodeAddress accepts the hex form returned by the REST API
func decodeAddress(raw string) string {
	if raw == "" {
		return ""
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != symbol.AddressSize {
		return raw
	}
	var addr symbol.Address
	copy(addr[:], b)
	return addr.String()
}
