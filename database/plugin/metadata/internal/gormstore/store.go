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

// Package gormstore holds the query layer shared by the relational metadata
// plugins. Each plugin owns its connection and hands the opened handle to New.
package gormstore

import (
	"errors"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying GORM database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// withTxn runs fn inside txn when the caller supplied one, otherwise inside a
// new transaction that is committed when fn returns nil
func (s *Store) withTxn(txn *gorm.DB, fn func(*gorm.DB) error) error {
	if txn != nil {
		return fn(txn)
	}
	return s.db.Transaction(fn)
}

func (s *Store) handle(txn *gorm.DB) *gorm.DB {
	if txn != nil {
		return txn
	}
	return s.db
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
