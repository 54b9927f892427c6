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
	"time"

	"github.com/blinklabs-io/hometto/database/models"
)

// AttachLedgerReference records the ledger transaction hash of an event. It
// succeeds when the event already carries the same hash and returns
// models.ErrAlreadyAnchored when it carries a different one.
func (d *Database) AttachLedgerReference(
	kind models.AnchorKind,
	id uint,
	hash string,
) error {
	return wrapErr(d.metadata.AttachLedgerReference(kind, id, hash, nil))
}

// RecordAnchorFailure notes a failed anchoring attempt on an unanchored event
func (d *Database) RecordAnchorFailure(
	kind models.AnchorKind,
	id uint,
	reason string,
) error {
	return wrapErr(
		d.metadata.RecordAnchorFailure(kind, id, reason, d.now(), nil),
	)
}

// ListUnanchoredPraises returns praises still waiting for a ledger reference
// that were created, and last attempted, at least minAge ago
func (d *Database) ListUnanchoredPraises(
	minAge time.Duration,
	maxAttempts, limit int,
) ([]models.Praise, error) {
	praises, err := d.metadata.ListUnanchoredPraises(
		d.now().Add(-minAge),
		maxAttempts,
		limit,
		nil,
	)
	return praises, wrapErr(err)
}

// ListUnanchoredCooperations is the cooperation counterpart of
// ListUnanchoredPraises. Only completed cooperations are returned.
func (d *Database) ListUnanchoredCooperations(
	minAge time.Duration,
	maxAttempts, limit int,
) ([]models.Cooperation, error) {
	coops, err := d.metadata.ListUnanchoredCooperations(
		d.now().Add(-minAge),
		maxAttempts,
		limit,
		nil,
	)
	return coops, wrapErr(err)
}
