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

package anchor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/hometto/anchor"
	"github.com/blinklabs-io/hometto/database"
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/event"
	"github.com/blinklabs-io/hometto/internal/test/mocknode"
	"github.com/blinklabs-io/hometto/keyaccount"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *database.Database
	node     *mocknode.Node
	accounts *keyaccount.Provisioner
	bus      *event.EventBus
	anchorer *anchor.Anchorer
}

func newFixture(t *testing.T, modify func(*anchor.Config)) *fixture {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	node := mocknode.New(t, &symbol.Testnet)
	client, err := ledgerclient.New(
		node.URL(),
		&symbol.Testnet,
		ledgerclient.WithTimeout(200*time.Millisecond),
	)
	require.NoError(t, err)
	accounts, err := keyaccount.NewProvisioner(keyaccount.Config{
		Store:   db,
		Network: &symbol.Testnet,
	})
	require.NoError(t, err)
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	cfg := anchor.Config{
		EventBus: bus,
		Store:    db,
		Accounts: accounts,
		Ledger:   client,
		Network:  &symbol.Testnet,
		Timeout:  5 * time.Second,
	}
	if modify != nil {
		modify(&cfg)
	}
	anchorer, err := anchor.New(cfg)
	require.NoError(t, err)
	t.Cleanup(anchorer.Wait)
	return &fixture{
		db:       db,
		node:     node,
		accounts: accounts,
		bus:      bus,
		anchorer: anchorer,
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{DisplayName: name}
	require.NoError(t, f.db.CreateUser(user))
	return user
}

func (f *fixture) praise(t *testing.T, from, to *models.User) *models.Praise {
	t.Helper()
	praise := &models.Praise{
		FromUserID:  from.ID,
		ToUserID:    to.ID,
		StampType:   "star",
		TokenAmount: 1,
		Message:     "thanks for helping",
	}
	require.NoError(t, f.db.CreatePraise(praise))
	return praise
}

// completedCooperation creates a cooperation between the given users and
// approves it for everyone but the initiator
func (f *fixture) completedCooperation(
	t *testing.T,
	initiator *models.User,
	others ...*models.User,
) *models.Cooperation {
	t.Helper()
	ids := make([]uint, 0, len(others))
	for _, u := range others {
		ids = append(ids, u.ID)
	}
	coop := &models.Cooperation{
		Title:       "science fair",
		InitiatorID: initiator.ID,
	}
	require.NoError(t, f.db.CreateCooperation(coop, ids))
	for i, u := range others {
		_, completed, err := f.db.ApproveCooperation(coop.ID, u.ID)
		require.NoError(t, err)
		require.Equal(t, i == len(others)-1, completed)
	}
	return coop
}

func (f *fixture) address(t *testing.T, user *models.User) symbol.Address {
	t.Helper()
	acct, err := f.accounts.EnsureAccount(t.Context(), user.ID)
	require.NoError(t, err)
	return acct.Address
}

type keyaccountStub struct{}

func (keyaccountStub) EnsureAccount(
	context.Context,
	uint,
) (*keyaccount.Account, error) {
	return nil, errors.New("not implemented")
}

type ledgerStub struct{}

func (ledgerStub) Submit(
	context.Context,
	*symbol.SignedTransaction,
) ledgerclient.SubmissionResult {
	return ledgerclient.SubmissionResult{Err: ledgerclient.ErrNodeUnreachable}
}
