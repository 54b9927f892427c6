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

package models

import (
	"errors"
	"time"
)

var ErrLedgerAccountNotFound = errors.New("ledger account not found")

// LedgerAccount is the key pair and address a user signs ledger transactions
// with. Rows are created once and never updated. PrivateKey holds the sealed
// secret as produced by the configured sealer.
type LedgerAccount struct {
	CreatedAt  time.Time
	Network    string `gorm:"size:16;not null"`
	PublicKey  string `gorm:"size:64;not null"`
	Address    string `gorm:"size:39;uniqueIndex;not null"`
	PrivateKey []byte `gorm:"not null"`
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"uniqueIndex;not null"`
}

func (LedgerAccount) TableName() string {
	return "ledger_account"
}
