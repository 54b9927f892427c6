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

package keyaccount_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"filippo.io/age"
	"github.com/blinklabs-io/hometto/database"
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/database/sops"
	"github.com/blinklabs-io/hometto/keyaccount"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestUser(t *testing.T, db *database.Database, name string) uint {
	t.Helper()
	user := models.User{DisplayName: name}
	require.NoError(t, db.CreateUser(&user))
	return user.ID
}

func newProvisioner(
	t *testing.T,
	store keyaccount.Store,
	sealer keyaccount.Sealer,
) *keyaccount.Provisioner {
	t.Helper()
	p, err := keyaccount.NewProvisioner(keyaccount.Config{
		Store:   store,
		Network: &symbol.Testnet,
		Sealer:  sealer,
	})
	require.NoError(t, err)
	return p
}

func TestEnsureAccountCreatesOnce(t *testing.T) {
	db := newTestDatabase(t)
	userID := newTestUser(t, db, "hana")
	p := newProvisioner(t, db, nil)

	acct, err := p.EnsureAccount(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, acct.UserID)
	assert.True(t, acct.Address.IsValidFor(&symbol.Testnet))
	kp, err := acct.KeyPair()
	require.NoError(t, err)
	assert.Equal(t, acct.PublicKey, kp.PublicKey())
	assert.Equal(t, acct.Address, kp.Address(&symbol.Testnet))

	again, err := p.EnsureAccount(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, acct.Address, again.Address)

	row, err := db.GetLedgerAccount(userID)
	require.NoError(t, err)
	assert.Equal(t, acct.Address.String(), row.Address)
	assert.Equal(t, "testnet", row.Network)
	// The plain sealer stores the private key as hex
	assert.Equal(t, kp.PrivateKeyHex(), string(row.PrivateKey))
}

func TestEnsureAccountConcurrent(t *testing.T) {
	db := newTestDatabase(t)
	userID := newTestUser(t, db, "sora")
	const workers = 8
	// Separate provisioners stand in for separate processes
	provisioners := make([]*keyaccount.Provisioner, workers)
	for i := range provisioners {
		provisioners[i] = newProvisioner(t, db, nil)
	}
	results := make([]*keyaccount.Account, workers*2)
	errs := make([]error, workers*2)
	var wg sync.WaitGroup
	for i := range workers * 2 {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = provisioners[idx%workers].EnsureAccount(
				t.Context(),
				userID,
			)
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Address, results[i].Address)
		assert.Equal(t, results[0].PublicKey, results[i].PublicKey)
	}
	row, err := db.GetLedgerAccount(userID)
	require.NoError(t, err)
	assert.Equal(t, results[0].Address.String(), row.Address)
}

func TestEnsureAccountDistinctUsers(t *testing.T) {
	db := newTestDatabase(t)
	p := newProvisioner(t, db, nil)
	a, err := p.EnsureAccount(t.Context(), newTestUser(t, db, "a"))
	require.NoError(t, err)
	b, err := p.EnsureAccount(t.Context(), newTestUser(t, db, "b"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Address, b.Address)
}

func TestLookupAccount(t *testing.T) {
	db := newTestDatabase(t)
	userID := newTestUser(t, db, "hana")
	p := newProvisioner(t, db, nil)
	_, err := p.LookupAccount(t.Context(), userID)
	require.ErrorIs(t, err, models.ErrLedgerAccountNotFound)
	created, err := p.EnsureAccount(t.Context(), userID)
	require.NoError(t, err)
	found, err := p.LookupAccount(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, created.Address, found.Address)
}

func TestEnsureAccountNetworkMismatch(t *testing.T) {
	db := newTestDatabase(t)
	userID := newTestUser(t, db, "hana")
	_, err := newProvisioner(t, db, nil).EnsureAccount(t.Context(), userID)
	require.NoError(t, err)
	mainnet, err := keyaccount.NewProvisioner(keyaccount.Config{
		Store:   db,
		Network: &symbol.Mainnet,
	})
	require.NoError(t, err)
	_, err = mainnet.EnsureAccount(t.Context(), userID)
	require.ErrorIs(t, err, keyaccount.ErrNetworkMismatch)
}

type failingStore struct{}

func (failingStore) GetLedgerAccount(uint) (*models.LedgerAccount, error) {
	return nil, database.ErrStorageUnavailable
}

func (failingStore) CreateLedgerAccountIfAbsent(
	*models.LedgerAccount,
) (*models.LedgerAccount, error) {
	return nil, database.ErrStorageUnavailable
}

func TestEnsureAccountStorageUnavailable(t *testing.T) {
	p := newProvisioner(t, failingStore{}, nil)
	_, err := p.EnsureAccount(t.Context(), 1)
	require.ErrorIs(t, err, database.ErrStorageUnavailable)
}

func TestEnsureAccountBrokenEntropy(t *testing.T) {
	db := newTestDatabase(t)
	p, err := keyaccount.NewProvisioner(keyaccount.Config{
		Store:   db,
		Network: &symbol.Testnet,
		Rand:    bytes.NewReader(nil),
	})
	require.NoError(t, err)
	_, err = p.EnsureAccount(t.Context(), newTestUser(t, db, "hana"))
	require.Error(t, err)
}

func TestEnsureAccountCanceledContext(t *testing.T) {
	db := newTestDatabase(t)
	p := newProvisioner(t, db, nil)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := p.EnsureAccount(ctx, newTestUser(t, db, "hana"))
	require.ErrorIs(t, err, context.Canceled)
}

type brokenSealer struct {
	keyaccount.PlainSealer
}

func (brokenSealer) Unseal([]byte) ([]byte, error) {
	return nil, errors.New("kms unavailable")
}

func TestKeyPairUnsealFailure(t *testing.T) {
	db := newTestDatabase(t)
	p := newProvisioner(t, db, brokenSealer{})
	acct, err := p.EnsureAccount(t.Context(), newTestUser(t, db, "hana"))
	require.NoError(t, err)
	_, err = acct.KeyPair()
	require.ErrorIs(t, err, symbol.ErrMissingKeyMaterial)
}

func TestNewSealer(t *testing.T) {
	s, err := keyaccount.NewSealer("", sops.MasterKeys{})
	require.NoError(t, err)
	assert.Equal(t, keyaccount.SealerPlain, s.Name())
	_, err = keyaccount.NewSealer(keyaccount.SealerSops, sops.MasterKeys{})
	require.ErrorIs(t, err, sops.ErrNoMasterKeys)
	_, err = keyaccount.NewSealer("vault", sops.MasterKeys{})
	require.ErrorIs(t, err, keyaccount.ErrUnknownSealer)
}

func TestSopsSealer(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	t.Setenv("SOPS_AGE_KEY", identity.String())
	sealer, err := keyaccount.NewSealer(
		keyaccount.SealerSops,
		sops.MasterKeys{AgeRecipients: identity.Recipient().String()},
	)
	require.NoError(t, err)

	db := newTestDatabase(t)
	userID := newTestUser(t, db, "hana")
	p := newProvisioner(t, db, sealer)
	acct, err := p.EnsureAccount(t.Context(), userID)
	require.NoError(t, err)
	kp, err := acct.KeyPair()
	require.NoError(t, err)

	row, err := db.GetLedgerAccount(userID)
	require.NoError(t, err)
	assert.NotContains(t, string(row.PrivateKey), kp.PrivateKeyHex())
	opened, err := sealer.Unseal(row.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey(), opened)
}
