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

package database_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blinklabs-io/hometto/database"
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		MetadataPlugin: "sqlite",
		BlobPlugin:     "badger",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDefaults(t *testing.T) {
	db := newTestDatabase(t)
	assert.NotNil(t, db.Metadata())
	assert.NotNil(t, db.Blob())
	assert.NotNil(t, db.Logger())
}

func TestNewUnknownPlugin(t *testing.T) {
	_, err := database.New(&database.Config{MetadataPlugin: "nope"})
	require.Error(t, err)
}

func TestNotFoundErrors(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.GetUser(1)
	require.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = db.GetPraise(1)
	require.ErrorIs(t, err, models.ErrPraiseNotFound)
	_, err = db.GetCooperation(1)
	require.ErrorIs(t, err, models.ErrCooperationNotFound)
	_, err = db.GetLedgerAccount(1)
	require.ErrorIs(t, err, models.ErrLedgerAccountNotFound)
	assert.False(t, errors.Is(err, database.ErrStorageUnavailable))
}

func TestCreateUserDefaultsRole(t *testing.T) {
	db := newTestDatabase(t)
	user := models.User{DisplayName: "hana"}
	require.NoError(t, db.CreateUser(&user))
	got, err := db.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, got.Role)
}

func TestStorageUnavailableAfterClose(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.GetUser(1)
	require.ErrorIs(t, err, database.ErrStorageUnavailable)
	err = db.CreatePraise(&models.Praise{FromUserID: 1, ToUserID: 2})
	require.ErrorIs(t, err, database.ErrStorageUnavailable)
}

func TestLedgerAccountFirstWriterWins(t *testing.T) {
	db := newTestDatabase(t)
	user := models.User{DisplayName: "ren"}
	require.NoError(t, db.CreateUser(&user))

	first, err := db.CreateLedgerAccountIfAbsent(&models.LedgerAccount{
		UserID:     user.ID,
		Network:    "testnet",
		PublicKey:  fmt.Sprintf("%064d", 1),
		Address:    fmt.Sprintf("T%038d", 1),
		PrivateKey: []byte{1},
	})
	require.NoError(t, err)
	second, err := db.CreateLedgerAccountIfAbsent(&models.LedgerAccount{
		UserID:     user.ID,
		Network:    "testnet",
		PublicKey:  fmt.Sprintf("%064d", 2),
		Address:    fmt.Sprintf("T%038d", 2),
		PrivateKey: []byte{2},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, []byte{1}, second.PrivateKey)
}

func TestUnanchoredQueue(t *testing.T) {
	db := newTestDatabase(t)
	a := models.User{DisplayName: "a"}
	b := models.User{DisplayName: "b"}
	require.NoError(t, db.CreateUser(&a))
	require.NoError(t, db.CreateUser(&b))
	praise := models.Praise{
		FromUserID:  a.ID,
		ToUserID:    b.ID,
		StampType:   "thanks",
		TokenAmount: 1,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.CreatePraise(&praise))

	pending, err := db.ListUnanchoredPraises(time.Minute, 5, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, db.AttachLedgerReference(models.AnchorKindPraise, praise.ID, "AB"))
	pending, err = db.ListUnanchoredPraises(time.Minute, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	// Bookkeeping on an anchored event is ignored
	require.NoError(t, db.RecordAnchorFailure(models.AnchorKindPraise, praise.ID, "late"))
	got, err := db.GetPraise(praise.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AnchorAttempts)
}
