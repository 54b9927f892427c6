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
	ErrCooperationNotFound = errors.New("cooperation not found")
	ErrNotParticipant      = errors.New("user is not a participant of the cooperation")
	ErrAlreadyApproved     = errors.New("participant has already approved the cooperation")
)

// CooperationReward is the token amount credited to every participant when a
// cooperation reaches its required approvals
const CooperationReward = 5

// Cooperation is a group attestation that completes once every participant
// has approved it
type Cooperation struct {
	CreatedAt         time.Time
	CompletedAt       *time.Time               `gorm:"index"`
	Title             string                   `gorm:"size:255;not null"`
	Description       string                   `gorm:"size:2048"`
	Participants      []CooperationParticipant `gorm:"foreignKey:CooperationID;references:ID;constraint:OnDelete:CASCADE"`
	ID                uint                     `gorm:"primarykey"`
	InitiatorID       uint                     `gorm:"index;not null"`
	RequiredApprovals int                      `gorm:"not null"`
	CurrentApprovals  int                      `gorm:"not null;default:0"`

	Anchor `gorm:"embedded"`
}

func (Cooperation) TableName() string {
	return "cooperation"
}

// Completed reports whether the cooperation has reached its required approvals
func (c *Cooperation) Completed() bool {
	return c.CompletedAt != nil
}

type CooperationParticipant struct {
	ApprovedAt    *time.Time
	ID            uint `gorm:"primarykey"`
	CooperationID uint `gorm:"uniqueIndex:idx_cooperation_participant;not null"`
	UserID        uint `gorm:"uniqueIndex:idx_cooperation_participant;index;not null"`
	JoinOrder     int  `gorm:"not null"`
	Approved      bool `gorm:"not null;default:false"`
}

func (CooperationParticipant) TableName() string {
	return "cooperation_participant"
}
