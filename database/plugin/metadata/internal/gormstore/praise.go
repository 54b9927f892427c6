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

// CreatePraise inserts the praise and credits the recipient's token balance
// in the same transaction
func (s *Store) CreatePraise(praise *models.Praise, txn *gorm.DB) error {
	return s.withTxn(txn, func(db *gorm.DB) error {
		if err := requireUsers(db, praise.FromUserID, praise.ToUserID); err != nil {
			return err
		}
		if result := db.Create(praise); result.Error != nil {
			return fmt.Errorf("create praise: %w", result.Error)
		}
		return creditUsers(db, praise.TokenAmount, praise.ToUserID)
	})
}

// GetPraise returns the praise with the given ID, or nil if it does not exist
func (s *Store) GetPraise(id uint, txn *gorm.DB) (*models.Praise, error) {
	ret := &models.Praise{}
	result := s.handle(txn).First(ret, id)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// ListPraises returns every praise, newest first
func (s *Store) ListPraises(
	limit, offset int,
	txn *gorm.DB,
) ([]models.Praise, error) {
	return listPraises(s.handle(txn), limit, offset)
}

// ListPraisesByRecipient returns praises received by a user, newest first
func (s *Store) ListPraisesByRecipient(
	userID uint,
	limit, offset int,
	txn *gorm.DB,
) ([]models.Praise, error) {
	return listPraises(
		s.handle(txn).Where("to_user_id = ?", userID),
		limit,
		offset,
	)
}

// ListPraisesBySender returns praises sent by a user, newest first
func (s *Store) ListPraisesBySender(
	userID uint,
	limit, offset int,
	txn *gorm.DB,
) ([]models.Praise, error) {
	return listPraises(
		s.handle(txn).Where("from_user_id = ?", userID),
		limit,
		offset,
	)
}

func listPraises(db *gorm.DB, limit, offset int) ([]models.Praise, error) {
	var ret []models.Praise
	result := db.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
