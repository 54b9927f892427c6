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

package database

import (
	"github.com/blinklabs-io/hometto/database/models"
)

func (d *Database) GetLedgerAccount(userID uint) (*models.LedgerAccount, error) {
	account, err := d.metadata.GetLedgerAccount(userID, nil)
	if err != nil {
		return nil, wrapErr(err)
	}
	if account == nil {
		return nil, models.ErrLedgerAccountNotFound
	}
	return account, nil
}

// CreateLedgerAccountIfAbsent stores the account unless the user already has
// one and returns the stored row either way. The first writer wins.
func (d *Database) CreateLedgerAccountIfAbsent(
	account *models.LedgerAccount,
) (*models.LedgerAccount, error) {
	if _, err := d.metadata.CreateLedgerAccountIfAbsent(account, nil); err != nil {
		return nil, wrapErr(err)
	}
	return d.GetLedgerAccount(account.UserID)
}
