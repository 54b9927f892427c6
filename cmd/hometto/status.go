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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/blinklabs-io/hometto/internal/config"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/spf13/cobra"
)

type statusOutput struct {
	Network   string `json:"network"`
	NodeURL   string `json:"nodeUrl"`
	Connected bool   `json:"connected"`
	Height    uint64 `json:"height,omitempty"`
	Error     string `json:"error,omitempty"`
	Address   string `json:"address,omitempty"`
	Balance   string `json:"balance,omitempty"`
}

func status(
	ctx context.Context,
	w io.Writer,
	client *ledgerclient.Client,
	nodeURL string,
	address string,
) error {
	netStatus := client.NetworkStatus(ctx)
	out := statusOutput{
		Network:   client.Network().Name,
		NodeURL:   nodeURL,
		Connected: netStatus.Connected,
		Height:    netStatus.Height,
	}
	var err error
	if netStatus.Err != nil {
		out.Error = netStatus.Err.Error()
		err = netStatus.Err
	}
	if address != "" && netStatus.Connected {
		out.Address = address
		balance := client.Balance(ctx, address)
		if balance.Success {
			out.Balance = balance.Balance.StringFixed(symbol.Divisibility)
		} else if balance.Err != nil {
			out.Error = balance.Err.Error()
			err = balance.Err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(out); encErr != nil {
		return encErr
	}
	return err
}

func statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [address]",
		Short: "Show ledger node status and optionally an account balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			client, err := ledgerclient.New(
				cfg.NodeURL,
				cfg.SymbolNetwork(),
				ledgerclient.WithTimeout(cfg.LedgerTimeout),
			)
			if err != nil {
				return err
			}
			var address string
			if len(args) > 0 {
				address = args[0]
			}
			cmd.SilenceUsage = true
			return status(cmd.Context(), cmd.OutOrStdout(), client, cfg.NodeURL, address)
		},
	}
	return cmd
}
