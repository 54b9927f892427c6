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

package gormstore

import (
	"fmt"

	"github.com/blinklabs-io/hometto/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetLedgerAccount returns the ledger account of a user, or nil if the user
// has none yet
func (s *Store) GetLedgerAccount(
	userID uint,
	txn *gorm.DB,
) (*models.LedgerAccount, error) {
	ret := &models.LedgerAccount{}
	result := s.handle(txn).Where("user_id = ?", userID).First(ret)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// CreateLedgerAccountIfAbsent inserts the account unless the user already has
// one. It reports whether this call created the row. Callers re-read the row
// to observe the winner when it did not.
func (s *Store) CreateLedgerAccountIfAbsent(
	account *models.LedgerAccount,
	txn *gorm.DB,
) (bool, error) {
	result := s.handle(txn).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(account)
	if result.Error != nil {
		return false, fmt.Errorf("create ledger account: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
