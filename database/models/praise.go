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

var (
	ErrPraiseNotFound  = errors.New("praise not found")
	ErrAlreadyAnchored = errors.New("event already carries a different ledger reference")
)

// AnchorKind identifies the type of an anchorable event
type AnchorKind string

const (
	AnchorKindPraise      AnchorKind = "praise"
	AnchorKindCooperation AnchorKind = "cooperation"
)

func (k AnchorKind) String() string {
	return string(k)
}

// Anchor holds the ledger bookkeeping columns shared by anchorable events.
// LedgerTxHash is written at most once.
type Anchor struct {
	LastAnchorAt    *time.Time
	LedgerTxHash    *string `gorm:"size:64;index"`
	LastAnchorError string  `gorm:"size:512"`
	AnchorAttempts  int     `gorm:"not null;default:0"`
}

// Anchored reports whether the event carries a ledger reference
func (a Anchor) Anchored() bool {
	return a.LedgerTxHash != nil && *a.LedgerTxHash != ""
}

// Praise is a token-bearing recognition from one user to another
type Praise struct {
	CreatedAt   time.Time `gorm:"index"`
	StampType   string    `gorm:"size:64;not null"`
	Message     string    `gorm:"size:1024"`
	ID          uint      `gorm:"primarykey"`
	FromUserID  uint      `gorm:"index;not null"`
	ToUserID    uint      `gorm:"index;not null"`
	TokenAmount int64     `gorm:"not null;default:1"`

	Anchor `gorm:"embedded"`
}

func (Praise) TableName() string {
	return "praise"
}
