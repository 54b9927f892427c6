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

// CreatePraise commits the praise and the recipient's balance change together
func (d *Database) CreatePraise(praise *models.Praise) error {
	return wrapErr(d.metadata.CreatePraise(praise, nil))
}

func (d *Database) GetPraise(id uint) (*models.Praise, error) {
	praise, err := d.metadata.GetPraise(id, nil)
	if err != nil {
		return nil, wrapErr(err)
	}
	if praise == nil {
		return nil, models.ErrPraiseNotFound
	}
	return praise, nil
}

// ListPraises returns every praise, newest first
func (d *Database) ListPraises(limit, offset int) ([]models.Praise, error) {
	praises, err := d.metadata.ListPraises(limit, offset, nil)
	return praises, wrapErr(err)
}

func (d *Database) ListPraisesByRecipient(
	userID uint,
	limit, offset int,
) ([]models.Praise, error) {
	praises, err := d.metadata.ListPraisesByRecipient(userID, limit, offset, nil)
	return praises, wrapErr(err)
}

func (d *Database) ListPraisesBySender(
	userID uint,
	limit, offset int,
) ([]models.Praise, error) {
	praises, err := d.metadata.ListPraisesBySender(userID, limit, offset, nil)
	return praises, wrapErr(err)
}

// GetStats returns the classroom overview
func (d *Database) GetStats() (*models.Stats, error) {
	stats, err := d.metadata.GetStats(nil)
	if err != nil {
		return nil, wrapErr(err)
	}
	return stats, nil
}
