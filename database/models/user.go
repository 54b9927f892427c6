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

var ErrUserNotFound = errors.New("user not found")

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is a classroom member. TokenBalance is relational bookkeeping only and
// is never mirrored on the ledger.
type User struct {
	CreatedAt    time.Time
	DisplayName  string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null;default:student"`
	ID           uint   `gorm:"primarykey"`
	TokenBalance int64  `gorm:"not null;default:0"`
}

func (User) TableName() string {
	return "users"
}

// ValidRole reports whether role is one of the known user roles
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}
