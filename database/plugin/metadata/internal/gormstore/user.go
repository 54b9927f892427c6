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

// CreateUser inserts a new user
func (s *Store) CreateUser(user *models.User, txn *gorm.DB) error {
	if result := s.handle(txn).Create(user); result.Error != nil {
		return fmt.Errorf("create user: %w", result.Error)
	}
	return nil
}

// GetUser returns the user with the given ID, or nil if it does not exist
func (s *Store) GetUser(id uint, txn *gorm.DB) (*models.User, error) {
	ret := &models.User{}
	result := s.handle(txn).First(ret, id)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// ListUsers returns users ordered by ID
func (s *Store) ListUsers(
	limit, offset int,
	txn *gorm.DB,
) ([]models.User, error) {
	var ret []models.User
	result := s.handle(txn).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// requireUsers checks that every given user exists
func requireUsers(db *gorm.DB, ids ...uint) error {
	uniq := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		uniq[id] = struct{}{}
	}
	var count int64
	result := db.Model(&models.User{}).Where("id IN ?", ids).Count(&count)
	if result.Error != nil {
		return result.Error
	}
	if int(count) != len(uniq) {
		return models.ErrUserNotFound
	}
	return nil
}

func creditUsers(db *gorm.DB, amount int64, ids ...uint) error {
	result := db.Model(&models.User{}).
		Where("id IN ?", ids).
		Update("token_balance", gorm.Expr("token_balance + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("update token balance: %w", result.Error)
	}
	return nil
}
