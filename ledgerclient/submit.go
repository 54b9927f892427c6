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
	"errors"
	"net/http"

	"github.com/blinklabs-io/hometto/symbol"
	"github.com/go-resty/resty/v2"
)

// SubmissionResult reports whether the node accepted a transaction for
// processing. Acceptance is not confirmation.
type SubmissionResult struct {
	Success bool
	Hash    string
	Err     error
}

// Submit announces a signed transaction to the node. It never retries.
func (c *Client) Submit(
	ctx context.Context,
	tx *symbol.SignedTransaction,
) SubmissionResult {
	if tx == nil || len(tx.Payload) == 0 {
		return SubmissionResult{Err: errors.New("empty transaction")}
	}
	_, err := c.do(
		ctx,
		"submit",
		http.MethodPut,
		"/transactions",
		func(req *resty.Request) {
			req.SetHeader("Content-Type", "application/json").
				SetBody(map[string]string{"payload": tx.PayloadHex()})
		},
	)
	if err != nil {
		c.logger.Warn(
			"transaction submission failed",
			"hash", tx.Hash,
			"error", err,
		)
		return SubmissionResult{Hash: tx.Hash, Err: err}
	}
	c.logger.Debug("transaction submitted", "hash", tx.Hash)
	return SubmissionResult{Success: true, Hash: tx.Hash}
}
