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
)

// GetStats counts the classroom records and sums the token balances. The
// queries share one transaction so the figures agree with each other.
func (s *Store) GetStats(txn *gorm.DB) (*models.Stats, error) {
	ret := &models.Stats{}
	err := s.withTxn(txn, func(db *gorm.DB) error {
		counts := []struct {
			model any
			cond  string
			dest  *int64
		}{
			{&models.User{}, "", &ret.Users},
			{&models.Praise{}, "", &ret.Praises},
			{&models.Praise{}, "ledger_tx_hash IS NOT NULL", &ret.AnchoredPraises},
			{&models.Cooperation{}, "", &ret.Cooperations},
			{&models.Cooperation{}, "completed_at IS NOT NULL", &ret.CompletedCooperations},
			{&models.Cooperation{}, "ledger_tx_hash IS NOT NULL", &ret.AnchoredCooperations},
		}
		for _, c := range counts {
			query := db.Model(c.model)
			if c.cond != "" {
				query = query.Where(c.cond)
			}
			if result := query.Count(c.dest); result.Error != nil {
				return fmt.Errorf("count records: %w", result.Error)
			}
		}
		result := db.Model(&models.User{}).
			Select("COALESCE(SUM(token_balance), 0)").
			Scan(&ret.TotalTokens)
		if result.Error != nil {
			return fmt.Errorf("sum token balances: %w", result.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
