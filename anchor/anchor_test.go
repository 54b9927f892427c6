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
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/hometto/anchor"
	"github.com/blinklabs-io/hometto/database"
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/internal/test/mocknode"
	"github.com/blinklabs-io/hometto/internal/test/testutil"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorPraise(t *testing.T) {
	f := newFixture(t, nil)
	_, anchoredCh := f.bus.Subscribe(anchor.AnchoredEventType)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	praise := f.praise(t, alice, bob)

	outcome := f.anchorer.AnchorPraise(t.Context(), praise.ID)
	require.NoError(t, outcome.Err)
	assert.Equal(t, anchor.StateAnchored, outcome.State)
	assert.True(t, outcome.Anchored())

	txs := f.node.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, outcome.Hash, txs[0].Hash)
	assert.Equal(t, f.address(t, alice), txs[0].SignerAddress)
	assert.Equal(t, f.address(t, bob), txs[0].Recipient)
	assert.Equal(
		t,
		"praise: stamp=star amount=1 from="+fmt.Sprint(alice.ID)+
			" to="+fmt.Sprint(bob.ID)+" msg=thanks for helping",
		string(txs[0].Message),
	)

	stored, err := f.db.GetPraise(praise.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LedgerTxHash)
	assert.Equal(t, outcome.Hash, *stored.LedgerTxHash)
	assert.Equal(t, 0, stored.AnchorAttempts)

	evt := testutil.RequireReceive(t, anchoredCh, time.Second, "anchored event")
	data, ok := evt.Data.(anchor.AnchoredEvent)
	require.True(t, ok)
	assert.Equal(t, models.AnchorKindPraise, data.Kind)
	assert.Equal(t, praise.ID, data.EventID)
	assert.Equal(t, outcome.Hash, data.Hash)
	assert.Equal(t, f.address(t, alice), data.Signer)
	assert.Equal(t, f.address(t, bob), data.Recipient)
}

func TestAnchorPraiseOnlyOnce(t *testing.T) {
	f := newFixture(t, nil)
	praise := f.praise(t, f.user(t, "alice"), f.user(t, "bob"))
	first := f.anchorer.AnchorPraise(t.Context(), praise.ID)
	require.NoError(t, first.Err)
	second := f.anchorer.AnchorPraise(t.Context(), praise.ID)
	assert.Equal(t, anchor.StateAnchored, second.State)
	assert.ErrorIs(t, second.Err, models.ErrAlreadyAnchored)
	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, 1, f.node.Requests("PUT /transactions"))
}

// racingStore records a competing ledger reference right before the
// pipeline attaches its own
type racingStore struct {
	anchor.Store
	hash string
}

func (s *racingStore) AttachLedgerReference(
	kind models.AnchorKind,
	id uint,
	hash string,
) error {
	if err := s.Store.AttachLedgerReference(kind, id, s.hash); err != nil {
		return err
	}
	return s.Store.AttachLedgerReference(kind, id, hash)
}

func TestAnchorPraiseConcurrentAttach(t *testing.T) {
	competing := strings.Repeat("AB", 32)
	f := newFixture(t, func(cfg *anchor.Config) {
		cfg.Store = &racingStore{Store: cfg.Store, hash: competing}
	})
	_, anchoredCh := f.bus.Subscribe(anchor.AnchoredEventType)
	praise := f.praise(t, f.user(t, "alice"), f.user(t, "bob"))

	outcome := f.anchorer.AnchorPraise(t.Context(), praise.ID)
	assert.Equal(t, anchor.StateAnchored, outcome.State)
	assert.ErrorIs(t, outcome.Err, models.ErrAlreadyAnchored)
	// The outcome reports the reference the event actually carries
	assert.Equal(t, competing, outcome.Hash)

	txs := f.node.Transactions()
	require.Len(t, txs, 1)
	assert.NotEqual(t, txs[0].Hash, outcome.Hash)

	stored, err := f.db.GetPraise(praise.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LedgerTxHash)
	assert.Equal(t, competing, *stored.LedgerTxHash)
	testutil.RequireNoReceive(t, anchoredCh, 50*time.Millisecond, "anchored event")
}

func TestAnchorPraiseFailures(t *testing.T) {
	testDefs := []struct {
		name   string
		mode   mocknode.SubmitMode
		reason string
		target error
	}{
		{
			name:   "rejected",
			mode:   mocknode.SubmitReject,
			reason: anchor.ReasonNodeRejected,
			target: ledgerclient.ErrNodeRejected,
		},
		{
			name:   "unavailable",
			mode:   mocknode.SubmitUnavailable,
			reason: anchor.ReasonNodeUnreachable,
			target: ledgerclient.ErrNodeUnreachable,
		},
		{
			name:   "timeout",
			mode:   mocknode.SubmitHang,
			reason: anchor.ReasonTimeout,
			target: ledgerclient.ErrTimeout,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, failedCh := f.bus.Subscribe(anchor.AnchorFailedEventType)
			f.node.SetSubmitMode(testDef.mode)
			alice := f.user(t, "alice")
			bob := f.user(t, "bob")
			praise := f.praise(t, alice, bob)

			outcome := f.anchorer.AnchorPraise(t.Context(), praise.ID)
			assert.Equal(t, anchor.StateAnchorFailed, outcome.State)
			assert.ErrorIs(t, outcome.Err, testDef.target)
			assert.Equal(t, testDef.reason, outcome.Reason)

			// The praise and the balance change are untouched
			stored, err := f.db.GetPraise(praise.ID)
			require.NoError(t, err)
			assert.Nil(t, stored.LedgerTxHash)
			assert.Equal(t, 1, stored.AnchorAttempts)
			assert.NotEmpty(t, stored.LastAnchorError)
			assert.NotNil(t, stored.LastAnchorAt)
			recipient, err := f.db.GetUser(bob.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), recipient.TokenBalance)

			evt := testutil.RequireReceive(t, failedCh, time.Second, "failed event")
			data, ok := evt.Data.(anchor.AnchorFailedEvent)
			require.True(t, ok)
			assert.Equal(t, praise.ID, data.EventID)
			assert.Equal(t, testDef.reason, data.Reason)
		})
	}
}

func TestAnchorPraiseNotFound(t *testing.T) {
	f := newFixture(t, nil)
	outcome := f.anchorer.AnchorPraise(t.Context(), 999)
	assert.Equal(t, anchor.StateAnchorFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, models.ErrPraiseNotFound)
	assert.Equal(t, 0, f.node.Requests("PUT /transactions"))
}

func TestAnchorStorageUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	praise := f.praise(t, f.user(t, "alice"), f.user(t, "bob"))
	require.NoError(t, f.db.Close())
	outcome := f.anchorer.AnchorPraise(t.Context(), praise.ID)
	assert.Equal(t, anchor.StateAnchorFailed, outcome.State)
	assert.Equal(t, anchor.ReasonStorageUnavailable, outcome.Reason)
	assert.ErrorIs(t, outcome.Err, database.ErrStorageUnavailable)
}

func TestAnchorCooperation(t *testing.T) {
	f := newFixture(t, nil)
	initiator := f.user(t, "hana")
	first := f.user(t, "sora")
	second := f.user(t, "riku")
	coop := f.completedCooperation(t, initiator, first, second)

	outcome := f.anchorer.AnchorCooperation(t.Context(), coop.ID)
	require.NoError(t, outcome.Err)
	assert.Equal(t, anchor.StateAnchored, outcome.State)

	txs := f.node.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, f.address(t, initiator), txs[0].SignerAddress)
	assert.Equal(t, f.address(t, first), txs[0].Recipient)
	assert.Equal(
		t,
		fmt.Sprintf("cooperation: title=science fair participants=3 id=%d", coop.ID),
		string(txs[0].Message),
	)
	stored, err := f.db.GetCooperation(coop.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LedgerTxHash)
	assert.Equal(t, outcome.Hash, *stored.LedgerTxHash)
}

func TestAnchorCooperationFixedRecipient(t *testing.T) {
	audit, err := symbol.GenerateKeyPair(nil)
	require.NoError(t, err)
	auditAddr := audit.Address(&symbol.Testnet)
	f := newFixture(t, func(cfg *anchor.Config) {
		cfg.CooperationRecipient = auditAddr.Pretty()
	})
	coop := f.completedCooperation(t, f.user(t, "hana"), f.user(t, "sora"))
	outcome := f.anchorer.AnchorCooperation(t.Context(), coop.ID)
	require.NoError(t, outcome.Err)
	txs := f.node.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, auditAddr, txs[0].Recipient)
}

func TestAnchorCooperationNotCompleted(t *testing.T) {
	f := newFixture(t, nil)
	coop := &models.Cooperation{
		Title:       "garden",
		InitiatorID: f.user(t, "hana").ID,
	}
	require.NoError(t, f.db.CreateCooperation(coop, []uint{f.user(t, "sora").ID}))
	outcome := f.anchorer.AnchorCooperation(t.Context(), coop.ID)
	assert.Equal(t, anchor.StateAnchorFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, anchor.ErrNotCompleted)
	assert.Equal(t, 0, f.node.Requests("PUT /transactions"))
}

func TestNewInvalidCooperationRecipient(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mainnet, err := symbol.GenerateKeyPair(nil)
	require.NoError(t, err)
	_, err = anchor.New(anchor.Config{
		Store:                db,
		Accounts:             keyaccountStub{},
		Ledger:               ledgerStub{},
		Network:              &symbol.Testnet,
		CooperationRecipient: mainnet.Address(&symbol.Mainnet).String(),
	})
	require.ErrorIs(t, err, symbol.ErrInvalidRecipient)

	_, err = anchor.New(anchor.Config{})
	require.Error(t, err)
}

func TestAnchorDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *anchor.Config) {
		cfg.Disabled = true
	})
	praise := f.praise(t, f.user(t, "alice"), f.user(t, "bob"))
	outcome := f.anchorer.AnchorPraise(t.Context(), praise.ID)
	assert.Equal(t, anchor.StateCreated, outcome.State)
	assert.ErrorIs(t, outcome.Err, anchor.ErrDisabled)
	assert.False(t, f.anchorer.Dispatch(models.AnchorKindPraise, praise.ID))
	assert.Equal(t, 0, f.node.Requests("PUT /transactions"))
	stored, err := f.db.GetPraise(praise.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AnchorAttempts)
}

func TestDispatchAndWait(t *testing.T) {
	f := newFixture(t, nil)
	praise := f.praise(t, f.user(t, "alice"), f.user(t, "bob"))
	require.True(t, f.anchorer.Dispatch(models.AnchorKindPraise, praise.ID))
	f.anchorer.Wait()
	stored, err := f.db.GetPraise(praise.ID)
	require.NoError(t, err)
	assert.True(t, stored.Anchored())
	assert.False(t, f.anchorer.Dispatch(models.AnchorKindPraise, praise.ID))
}

func TestDispatchConcurrentSameEvent(t *testing.T) {
	f := newFixture(t, nil)
	praise := f.praise(t, f.user(t, "alice"), f.user(t, "bob"))
	for range 5 {
		f.anchorer.Dispatch(models.AnchorKindPraise, praise.ID)
	}
	f.anchorer.Wait()
	stored, err := f.db.GetPraise(praise.ID)
	require.NoError(t, err)
	require.True(t, stored.Anchored())
	// Every accepted transaction other than the recorded one would be a
	// duplicate on the ledger
	for _, tx := range f.node.Transactions() {
		if tx.Hash != *stored.LedgerTxHash {
			t.Fatalf("unexpected extra transaction %s", tx.Hash)
		}
	}
}

func TestClassify(t *testing.T) {
	testDefs := []struct {
		err    error
		reason string
	}{
		{nil, ""},
		{fmt.Errorf("x: %w", database.ErrStorageUnavailable), anchor.ReasonStorageUnavailable},
		{symbol.ErrMissingKeyMaterial, anchor.ReasonMissingKeyMaterial},
		{symbol.ErrInvalidRecipient, anchor.ReasonInvalidRecipient},
		{symbol.ErrInvalidAddress, anchor.ReasonInvalidRecipient},
		{&ledgerclient.NodeRejectedError{Code: "InvalidArgument"}, anchor.ReasonNodeRejected},
		{ledgerclient.ErrNodeUnreachable, anchor.ReasonNodeUnreachable},
		{ledgerclient.ErrTimeout, anchor.ReasonTimeout},
		{errors.New("boom"), anchor.ReasonUnknown},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.reason, anchor.Classify(testDef.err), "error %v", testDef.err)
	}
}
