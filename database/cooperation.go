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

func (d *Database) CreateCooperation(
	coop *models.Cooperation,
	participantIDs []uint,
) error {
	return wrapErr(d.metadata.CreateCooperation(coop, participantIDs, nil))
}

func (d *Database) GetCooperation(id uint) (*models.Cooperation, error) {
	coop, err := d.metadata.GetCooperation(id, nil)
	if err != nil {
		return nil, wrapErr(err)
	}
	if coop == nil {
		return nil, models.ErrCooperationNotFound
	}
	return coop, nil
}

func (d *Database) ListCooperationsByUser(
	userID uint,
	limit, offset int,
) ([]models.Cooperation, error) {
	coops, err := d.metadata.ListCooperationsByUser(userID, limit, offset, nil)
	return coops, wrapErr(err)
}

// ApproveCooperation records the approval. The returned flag reports whether
// this approval completed the cooperation.
func (d *Database) ApproveCooperation(
	cooperationID, userID uint,
) (*models.Cooperation, bool, error) {
	coop, completed, err := d.metadata.ApproveCooperation(
		cooperationID,
		userID,
		d.now(),
		nil,
	)
	if err != nil {
		return nil, false, wrapErr(err)
	}
	return coop, completed, nil
}
