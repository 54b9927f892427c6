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

package metadata

import (
	"fmt"
	"time"

	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/database/plugin"
	"gorm.io/gorm"
)

// MetadataStore is the relational system of record. Every method accepts an
// optional transaction handle; lookups return nil without an error when the
// record does not exist.
type MetadataStore interface {
	plugin.Plugin

	// Database
	Close() error
	DB() *gorm.DB
	Transaction() *gorm.DB

	// Users
	CreateUser(*models.User, *gorm.DB) error
	GetUser(uint, *gorm.DB) (*models.User, error)
	ListUsers(
		int, // limit
		int, // offset
		*gorm.DB,
	) ([]models.User, error)

	// Praise
	CreatePraise(*models.Praise, *gorm.DB) error
	GetPraise(uint, *gorm.DB) (*models.Praise, error)
	ListPraises(
		int, // limit
		int, // offset
		*gorm.DB,
	) ([]models.Praise, error)
	ListPraisesByRecipient(
		uint, // userID
		int, // limit
		int, // offset
		*gorm.DB,
	) ([]models.Praise, error)
	ListPraisesBySender(
		uint, // userID
		int, // limit
		int, // offset
		*gorm.DB,
	) ([]models.Praise, error)

	// Cooperation
	CreateCooperation(
		*models.Cooperation,
		[]uint, // participant user IDs
		*gorm.DB,
	) error
	GetCooperation(uint, *gorm.DB) (*models.Cooperation, error)
	ListCooperationsByUser(
		uint, // userID
		int, // limit
		int, // offset
		*gorm.DB,
	) ([]models.Cooperation, error)
	ApproveCooperation(
		uint, // cooperationID
		uint, // userID
		time.Time,
		*gorm.DB,
	) (*models.Cooperation, bool, error)

	// Ledger anchoring
	AttachLedgerReference(
		models.AnchorKind,
		uint, // event ID
		string, // transaction hash
		*gorm.DB,
	) error
	RecordAnchorFailure(
		models.AnchorKind,
		uint, // event ID
		string, // reason
		time.Time,
		*gorm.DB,
	) error
	ListUnanchoredPraises(
		time.Time, // cutoff
		int, // max attempts
		int, // limit
		*gorm.DB,
	) ([]models.Praise, error)
	ListUnanchoredCooperations(
		time.Time, // cutoff
		int, // max attempts
		int, // limit
		*gorm.DB,
	) ([]models.Cooperation, error)

	// Stats
	GetStats(*gorm.DB) (*models.Stats, error)

	// Ledger accounts
	GetLedgerAccount(uint, *gorm.DB) (*models.LedgerAccount, error)
	CreateLedgerAccountIfAbsent(*models.LedgerAccount, *gorm.DB) (bool, error)
}

// New returns a started metadata store from the named plugin
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	store, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return store, nil
}
