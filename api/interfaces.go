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

package api

import (
	"context"
	"iter"

	"github.com/blinklabs-io/hometto/classroom"
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/blinklabs-io/hometto/symbol"
)

// Store is the read side of the system of record plus user creation
type Store interface {
	CreateUser(user *models.User) error
	GetUser(id uint) (*models.User, error)
	ListUsers(limit, offset int) ([]models.User, error)
	GetPraise(id uint) (*models.Praise, error)
	ListPraises(limit, offset int) ([]models.Praise, error)
	ListPraisesByRecipient(userID uint, limit, offset int) ([]models.Praise, error)
	ListPraisesBySender(userID uint, limit, offset int) ([]models.Praise, error)
	GetCooperation(id uint) (*models.Cooperation, error)
	ListCooperationsByUser(
		userID uint,
		limit, offset int,
	) ([]models.Cooperation, error)
	GetLedgerAccount(userID uint) (*models.LedgerAccount, error)
	GetStats() (*models.Stats, error)
}

// Classroom handles the events that change balances and may be anchored
type Classroom interface {
	SendPraise(
		ctx context.Context,
		req classroom.SendPraiseRequest,
	) (*models.Praise, error)
	CreateCooperation(
		ctx context.Context,
		req classroom.CreateCooperationRequest,
	) (*models.Cooperation, error)
	ApproveCooperation(
		ctx context.Context,
		cooperationID, userID uint,
	) (*models.Cooperation, error)
}

// Ledger answers the explorer queries
type Ledger interface {
	Network() *symbol.Network
	NetworkStatus(ctx context.Context) ledgerclient.NetworkStatus
	Balance(ctx context.Context, address string) ledgerclient.BalanceResult
	History(
		ctx context.Context,
		address string,
		pageSize int,
	) iter.Seq2[ledgerclient.HistoryEntry, error]
}
