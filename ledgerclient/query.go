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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/blinklabs-io/hometto/symbol"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// NetworkStatus is the result of a connectivity probe
type NetworkStatus struct {
	Connected bool
	Height    uint64
	Err       error
}

// BalanceResult holds an account balance in whole currency units
type BalanceResult struct {
	Success bool
	Balance decimal.Decimal
	Err     error
}

type chainInfoResponse struct {
	Height uint64 `json:"height,string"`
}

type accountResponse struct {
	Account struct {
		Address string `json:"address"`
		Mosaics []struct {
			ID     string `json:"id"`
			Amount string `json:"amount"`
		} `json:"mosaics"`
	} `json:"account"`
}

// NetworkStatus reports whether the node answers and its chain height. It is
// never cached and never fails: an unreachable node is reported as
// disconnected.
func (c *Client) NetworkStatus(ctx context.Context) NetworkStatus {
	resp, err := c.do(ctx, "chain_info", http.MethodGet, "/chain/info", nil)
	if err != nil {
		return NetworkStatus{Err: err}
	}
	var info chainInfoResponse
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return NetworkStatus{
			Err: fmt.Errorf("%w: decode chain info: %w", ErrNodeUnreachable, err),
		}
	}
	return NetworkStatus{Connected: true, Height: info.Height}
}

// Balance returns the currency balance of an address. An account the node
// has never seen has a zero balance.
func (c *Client) Balance(ctx context.Context, address string) BalanceResult {
	addr, err := symbol.ParseNetworkAddress(c.network, address)
	if err != nil {
		return BalanceResult{Err: err}
	}
	cacheKey := c.addressCacheKey("balance", addr)
	body, ok := c.cacheGet(cacheKey)
	if !ok {
		resp, err := c.do(
			ctx,
			"balance",
			http.MethodGet,
			"/accounts/{address}",
			func(req *resty.Request) {
				req.SetPathParam("address", addr.String())
			},
		)
		if err != nil {
			if IsNotFound(err) {
				return BalanceResult{Success: true, Balance: decimal.Zero}
			}
			return BalanceResult{Err: err}
		}
		body = resp.Body()
		c.cacheSet(cacheKey, body)
	}
	balance, err := c.parseBalance(body)
	if err != nil {
		return BalanceResult{Err: err}
	}
	return BalanceResult{Success: true, Balance: balance}
}

func (c *Client) parseBalance(body []byte) (decimal.Decimal, error) {
	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return decimal.Zero, fmt.Errorf(
			"%w: decode account: %w",
			ErrNodeUnreachable,
			err,
		)
	}
	for _, mosaic := range account.Account.Mosaics {
		if !strings.EqualFold(mosaic.ID, c.currencyMosaic) {
			continue
		}
		amount, err := decimal.NewFromString(mosaic.Amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf(
				"%w: decode mosaic amount %q: %w",
				ErrNodeUnreachable,
				mosaic.Amount,
				err,
			)
		}
		return amount.Shift(-symbol.Divisibility), nil
	}
	return decimal.Zero, nil
}
