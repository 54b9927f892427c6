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
	"unicode/utf8"

	"github.com/blinklabs-io/hometto/database/models"
	"gorm.io/gorm"
)

// AttachLedgerReference stores the ledger transaction hash on an event that
// has none yet. Attaching the hash the event already carries is a no-op;
// attaching a different one returns models.ErrAlreadyAnchored.
func (s *Store) AttachLedgerReference(
	kind models.AnchorKind,
	id uint,
	hash string,
	txn *gorm.DB,
) error {
	db := s.handle(txn)
	model, err := anchorModel(kind)
	if err != nil {
		return err
	}
	result := db.Model(model).
		Where("id = ? AND ledger_tx_hash IS NULL", id).
		Updates(map[string]any{
			"ledger_tx_hash":    hash,
			"last_anchor_error": "",
		})
	if result.Error != nil {
		return fmt.Errorf("attach ledger reference: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	anchor, err := s.getAnchor(db, kind, id)
	if err != nil {
		return err
	}
	if anchor.LedgerTxHash != nil && *anchor.LedgerTxHash == hash {
		return nil
	}
	return models.ErrAlreadyAnchored
}

// RecordAnchorFailure increments the failed attempt counter of an event that
// is still unanchored and remembers the failure reason
func (s *Store) RecordAnchorFailure(
	kind models.AnchorKind,
	id uint,
	reason string,
	at time.Time,
	txn *gorm.DB,
) error {
	model, err := anchorModel(kind)
	if err != nil {
		return err
	}
	reason = truncateReason(reason, maxReasonLength)
	result := s.handle(txn).Model(model).
		Where("id = ? AND ledger_tx_hash IS NULL", id).
		Updates(map[string]any{
			"anchor_attempts":   gorm.Expr("anchor_attempts + 1"),
			"last_anchor_error": reason,
			"last_anchor_at":    at,
		})
	if result.Error != nil {
		return fmt.Errorf("record anchor failure: %w", result.Error)
	}
	return nil
}

// ListUnanchoredPraises returns praises without a ledger reference created
// and last attempted before the cutoff, oldest first
func (s *Store) ListUnanchoredPraises(
	before time.Time,
	maxAttempts int,
	limit int,
	txn *gorm.DB,
) ([]models.Praise, error) {
	var ret []models.Praise
	result := s.handle(txn).
		Where("ledger_tx_hash IS NULL").
		Where("created_at < ?", before).
		Where("anchor_attempts < ?", maxAttempts).
		Where("last_anchor_at IS NULL OR last_anchor_at < ?", before).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// ListUnanchoredCooperations returns completed cooperations without a ledger
// reference completed and last attempted before the cutoff, oldest first
func (s *Store) ListUnanchoredCooperations(
	before time.Time,
	maxAttempts int,
	limit int,
	txn *gorm.DB,
) ([]models.Cooperation, error) {
	var ret []models.Cooperation
	result := s.handle(txn).
		Where("ledger_tx_hash IS NULL").
		Where("completed_at IS NOT NULL AND completed_at < ?", before).
		Where("anchor_attempts < ?", maxAttempts).
		Where("last_anchor_at IS NULL OR last_anchor_at < ?", before).
		Order("completed_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) getAnchor(
	db *gorm.DB,
	kind models.AnchorKind,
	id uint,
) (*models.Anchor, error) {
	switch kind {
	case models.AnchorKindPraise:
		praise := &models.Praise{}
		if result := db.First(praise, id); result.Error != nil {
			if notFound(result.Error) {
				return nil, models.ErrPraiseNotFound
			}
			return nil, result.Error
		}
		return &praise.Anchor, nil
	case models.AnchorKindCooperation:
		coop := &models.Cooperation{}
		if result := db.First(coop, id); result.Error != nil {
			if notFound(result.Error) {
				return nil, models.ErrCooperationNotFound
			}
			return nil, result.Error
		}
		return &coop.Anchor, nil
	}
	return nil, fmt.Errorf("unknown anchor kind %q", kind)
}

func anchorModel(kind models.AnchorKind) (any, error) {
	switch kind {
	case models.AnchorKindPraise:
		return &models.Praise{}, nil
	case models.AnchorKindCooperation:
		return &models.Cooperation{}, nil
	}
	return nil, fmt.Errorf("unknown anchor kind %q", kind)
}

// maxReasonLength is the byte limit of a stored anchor failure reason
const maxReasonLength = 512

// truncateReason cuts reason to at most limit bytes without splitting a
// multi-byte character
func truncateReason(reason string, limit int) string {
	if len(reason) <= limit {
		return reason
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}
