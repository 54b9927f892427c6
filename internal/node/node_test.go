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

package node_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/hometto/anchor"
	"github.com/blinklabs-io/hometto/classroom"
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/internal/config"
	"github.com/blinklabs-io/hometto/internal/node"
	"github.com/blinklabs-io/hometto/internal/test/mocknode"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, ledger *mocknode.Node) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.NodeURL = ledger.URL()
	cfg.DataDir = ""
	cfg.BlobPlugin = ""
	cfg.BindAddr = "127.0.0.1"
	cfg.ApiPort = 0
	cfg.MetricsPort = 0
	cfg.LedgerTimeout = time.Second
	cfg.AnchorTimeout = 5 * time.Second
	cfg.ReconcileInterval = time.Hour
	return cfg
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := node.New(nil, nil, nil)
	require.Error(t, err)
}

func TestNewInvalidConfig(t *testing.T) {
	ledger := mocknode.New(t, &symbol.Testnet)
	cfg := testConfig(t, ledger)
	cfg.Network = "privatenet"
	_, err := node.New(cfg, nil, nil)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNodeStartStop(t *testing.T) {
	ledger := mocknode.New(t, &symbol.Testnet)
	cfg := testConfig(t, ledger)
	n, err := node.New(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, n.Start(ctx))

	db := n.Database()
	sender := &models.User{DisplayName: "Aiko", Role: models.RoleStudent}
	recipient := &models.User{DisplayName: "Ren", Role: models.RoleStudent}
	require.NoError(t, db.CreateUser(sender))
	require.NoError(t, db.CreateUser(recipient))

	praise, err := n.Classroom().SendPraise(ctx, classroom.SendPraiseRequest{
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		StampType:  "kindness",
		Message:    "shared the umbrella",
	})
	require.NoError(t, err)
	n.Anchorer().Wait()

	stored, err := db.GetPraise(praise.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LedgerTxHash)
	require.Len(t, ledger.Transactions(), 1)
	assert.Equal(t, ledger.Transactions()[0].Hash, *stored.LedgerTxHash)

	cancel()
	require.NoError(t, n.Stop(context.Background()))
	// Stopping twice is harmless
	require.NoError(t, n.Stop(context.Background()))
}

func TestNodeAnchoringDisabled(t *testing.T) {
	ledger := mocknode.New(t, &symbol.Testnet)
	cfg := testConfig(t, ledger)
	cfg.AnchorEnabled = false
	n, err := node.New(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Stop(context.Background()) })

	assert.False(t, n.Anchorer().Enabled())
	result, err := n.Reconciler().RunOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, anchor.ReconcileResult{}, result)
	assert.Zero(t, ledger.Requests("PUT /transactions"))
}

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeRoster(t, `
users:
  - displayName: " Aiko "
  - displayName: Sato-sensei
    role: teacher
`)
	roster, err := node.LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, roster.Users, 2)
	assert.Equal(t, "Aiko", roster.Users[0].DisplayName)
	assert.Equal(t, models.RoleStudent, roster.Users[0].Role)
	assert.Equal(t, models.RoleTeacher, roster.Users[1].Role)
}

func TestLoadRosterInvalid(t *testing.T) {
	tests := map[string]string{
		"missing name": "users:\n  - role: student\n",
		"unknown role": "users:\n  - displayName: Ren\n    role: principal\n",
		"malformed":    "users: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := node.LoadRoster(writeRoster(t, content))
			require.ErrorIs(t, err, node.ErrInvalidRoster)
		})
	}
	_, err := node.LoadRoster(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportRoster(t *testing.T) {
	ledger := mocknode.New(t, &symbol.Testnet)
	n, err := node.New(testConfig(t, ledger), nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Stop(context.Background()) })

	users, err := n.ImportRoster(t.Context(), &node.Roster{
		Users: []node.RosterUser{
			{DisplayName: "Aiko", Role: models.RoleStudent},
			{DisplayName: "Sato-sensei", Role: models.RoleTeacher},
		},
	})
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, user := range users {
		account, err := n.Database().GetLedgerAccount(user.ID)
		require.NoError(t, err)
		_, err = symbol.ParseAddress(account.Address)
		require.NoError(t, err)
	}
	listed, err := n.Database().ListUsers(10, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestOfflineNodeBesideRunningNode(t *testing.T) {
	ledger := mocknode.New(t, &symbol.Testnet)
	cfg := testConfig(t, ledger)
	cfg.DataDir = t.TempDir()
	cfg.BlobPlugin = "badger"
	running, err := node.New(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = running.Stop(context.Background()) })
	require.NotNil(t, running.Database().Blob())

	// A second full node cannot take the blob directory lock
	_, err = node.New(cfg, nil, nil)
	require.Error(t, err)

	offline, err := node.NewOffline(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, offline.Database().Blob())
	require.NoError(t, offline.Stop(context.Background()))
	assert.Equal(t, "badger", cfg.BlobPlugin)

	path := writeRoster(t, "users:\n  - displayName: Aiko\n")
	require.NoError(t, node.Load(t.Context(), cfg, nil, path))
	listed, err := running.Database().ListUsers(10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Aiko", listed[0].DisplayName)
}

func TestAnchoredPraiseRefreshesLedgerCache(t *testing.T) {
	ledger := mocknode.New(t, &symbol.Testnet)
	cfg := testConfig(t, ledger)
	cfg.DataDir = t.TempDir()
	cfg.BlobPlugin = "badger"
	cfg.CacheTTL = time.Hour
	n, err := node.New(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Stop(context.Background()) })

	db := n.Database()
	sender := &models.User{DisplayName: "Aiko", Role: models.RoleStudent}
	recipient := &models.User{DisplayName: "Ren", Role: models.RoleStudent}
	require.NoError(t, db.CreateUser(sender))
	require.NoError(t, db.CreateUser(recipient))
	account, err := n.Accounts().EnsureAccount(t.Context(), recipient.ID)
	require.NoError(t, err)
	address := account.Address.String()
	ledger.SetBalance(account.Address, 1_000_000)

	for range 2 {
		require.NoError(t, n.Ledger().Balance(t.Context(), address).Err)
	}
	require.Equal(t, 1, ledger.Requests("GET /accounts/{address}"))

	_, err = n.Classroom().SendPraise(t.Context(), classroom.SendPraiseRequest{
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		StampType:  "kindness",
		Message:    "shared the umbrella",
	})
	require.NoError(t, err)
	n.Anchorer().Wait()
	require.Len(t, ledger.Transactions(), 1)

	require.Eventually(t, func() bool {
		_ = n.Ledger().Balance(t.Context(), address)
		return ledger.Requests("GET /accounts/{address}") > 1
	}, 5*time.Second, 20*time.Millisecond)
}
