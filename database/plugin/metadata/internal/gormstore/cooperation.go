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
	"time"

	"github.com/blinklabs-io/hometto/database/models"
	"gorm.io/gorm"
)

// CreateCooperation inserts a cooperation and its participants. The initiator
// is always a participant, joins first and is approved on creation.
func (s *Store) CreateCooperation(
	coop *models.Cooperation,
	participantIDs []uint,
	txn *gorm.DB,
) error {
	return s.withTxn(txn, func(db *gorm.DB) error {
		ids := make([]uint, 0, len(participantIDs)+1)
		seen := map[uint]bool{coop.InitiatorID: true}
		ids = append(ids, coop.InitiatorID)
		for _, id := range participantIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		if err := requireUsers(db, ids...); err != nil {
			return err
		}
		now := coop.CreatedAt
		if now.IsZero() {
			now = time.Now()
			coop.CreatedAt = now
		}
		coop.RequiredApprovals = len(ids)
		coop.CurrentApprovals = 1
		coop.Participants = nil
		if result := db.Create(coop); result.Error != nil {
			return fmt.Errorf("create cooperation: %w", result.Error)
		}
		participants := make([]models.CooperationParticipant, 0, len(ids))
		for i, id := range ids {
			p := models.CooperationParticipant{
				CooperationID: coop.ID,
				UserID:        id,
				JoinOrder:     i,
			}
			if id == coop.InitiatorID {
				p.Approved = true
				p.ApprovedAt = &now
			}
			participants = append(participants, p)
		}
		if result := db.Create(&participants); result.Error != nil {
			return fmt.Errorf("add cooperation participants: %w", result.Error)
		}
		coop.Participants = participants
		return nil
	})
}

// GetCooperation returns the cooperation with its participants in join order,
// or nil if it does not exist
func (s *Store) GetCooperation(
	id uint,
	txn *gorm.DB,
) (*models.Cooperation, error) {
	ret := &models.Cooperation{}
	result := preloadParticipants(s.handle(txn)).First(ret, id)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// ListCooperationsByUser returns the cooperations a user participates in,
// newest first
func (s *Store) ListCooperationsByUser(
	userID uint,
	limit, offset int,
	txn *gorm.DB,
) ([]models.Cooperation, error) {
	var ret []models.Cooperation
	result := preloadParticipants(s.handle(txn)).
		Joins("JOIN cooperation_participant ON cooperation_participant.cooperation_id = cooperation.id").
		Where("cooperation_participant.user_id = ?", userID).
		Order("cooperation.created_at DESC").
		Order("cooperation.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// ApproveCooperation records a participant's approval. When the approval
// brings the cooperation to its required count the cooperation is marked
// completed and every participant is credited models.CooperationReward
// tokens. The returned flag is true only for the approval that completed it.
func (s *Store) ApproveCooperation(
	cooperationID uint,
	userID uint,
	at time.Time,
	txn *gorm.DB,
) (*models.Cooperation, bool, error) {
	var (
		ret       *models.Cooperation
		completed bool
	)
	err := s.withTxn(txn, func(db *gorm.DB) error {
		coop := &models.Cooperation{}
		if result := db.First(coop, cooperationID); result.Error != nil {
			if notFound(result.Error) {
				return models.ErrCooperationNotFound
			}
			return result.Error
		}
		result := db.Model(&models.CooperationParticipant{}).
			Where(
				"cooperation_id = ? AND user_id = ? AND approved = ?",
				cooperationID,
				userID,
				false,
			).
			Updates(map[string]any{
				"approved":    true,
				"approved_at": at,
			})
		if result.Error != nil {
			return fmt.Errorf("approve participant: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			result := db.Model(&models.CooperationParticipant{}).
				Where("cooperation_id = ? AND user_id = ?", cooperationID, userID).
				Count(&count)
			if result.Error != nil {
				return result.Error
			}
			if count == 0 {
				return models.ErrNotParticipant
			}
			return models.ErrAlreadyApproved
		}
		result = db.Model(&models.Cooperation{}).
			Where("id = ?", cooperationID).
			Update("current_approvals", gorm.Expr("current_approvals + 1"))
		if result.Error != nil {
			return fmt.Errorf("increment approvals: %w", result.Error)
		}
		if result := db.First(coop, cooperationID); result.Error != nil {
			return result.Error
		}
		if coop.CurrentApprovals >= coop.RequiredApprovals &&
			coop.CompletedAt == nil {
			result := db.Model(&models.Cooperation{}).
				Where("id = ? AND completed_at IS NULL", cooperationID).
				Update("completed_at", at)
			if result.Error != nil {
				return fmt.Errorf("complete cooperation: %w", result.Error)
			}
			if result.RowsAffected > 0 {
				completed = true
				var ids []uint
				result := db.Model(&models.CooperationParticipant{}).
					Where("cooperation_id = ?", cooperationID).
					Pluck("user_id", &ids)
				if result.Error != nil {
					return result.Error
				}
				if err := creditUsers(db, models.CooperationReward, ids...); err != nil {
					return err
				}
			}
		}
		loaded := &models.Cooperation{}
		if result := preloadParticipants(db).First(loaded, cooperationID); result.Error != nil {
			return result.Error
		}
		ret = loaded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ret, completed, nil
}

func preloadParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("join_order ASC")
	})
}
