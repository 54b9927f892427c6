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
	"errors"
	"fmt"

	"github.com/blinklabs-io/hometto/internal/config"
	"github.com/blinklabs-io/hometto/internal/node"
	"github.com/spf13/cobra"
)

func reconcileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one anchoring pass over events without a ledger reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			logger := commonRun()
			n, err := node.NewOffline(cfg, logger)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			result, runErr := n.Reconciler().RunOnce(cmd.Context())
			//nolint:contextcheck
			if err := n.Stop(context.Background()); err != nil {
				runErr = errors.Join(runErr, err)
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"attempted %d, anchored %d, failed %d\n",
				result.Attempted,
				result.Anchored,
				result.Failed,
			)
			return nil
		},
	}
	return cmd
}
