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

func (d *Database) CreateUser(user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	return wrapErr(d.metadata.CreateUser(user, nil))
}

func (d *Database) GetUser(id uint) (*models.User, error) {
	user, err := d.metadata.GetUser(id, nil)
	if err != nil {
		return nil, wrapErr(err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (d *Database) ListUsers(limit, offset int) ([]models.User, error) {
	users, err := d.metadata.ListUsers(limit, offset, nil)
	return users, wrapErr(err)
}
