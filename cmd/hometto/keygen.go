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
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/blinklabs-io/hometto/internal/config"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/spf13/cobra"
)

type keygenOutput struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

func keygen(w io.Writer, network *symbol.Network, r io.Reader) error {
	kp, err := symbol.GenerateKeyPair(r)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(keygenOutput{
		Network:    network.Name,
		Address:    kp.Address(network).String(),
		PublicKey:  kp.PublicKey().String(),
		PrivateKey: kp.PrivateKeyHex(),
	})
}

func keygenCommand() *cobra.Command {
	var networkName string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a standalone ledger key pair, e.g. for the cooperation recipient",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			if networkName == "" {
				networkName = cfg.Network
			}
			network, err := symbol.NetworkByName(networkName)
			if err != nil {
				return fmt.Errorf("network %q: %w", networkName, err)
			}
			return keygen(cmd.OutOrStdout(), network, rand.Reader)
		},
	}
	cmd.Flags().StringVar(&networkName, "network", "", "ledger network (defaults to the configured network)")
	return cmd
}
