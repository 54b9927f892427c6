// Copyright 2025 Blink Labs Software
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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/database/plugin"
	"github.com/blinklabs-io/hometto/database/plugin/blob"
	"github.com/blinklabs-io/hometto/database/plugin/metadata"

	// Register storage plugins
	_ "github.com/blinklabs-io/hometto/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/hometto/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/hometto/database/plugin/metadata/postgres"
	_ "github.com/blinklabs-io/hometto/database/plugin/metadata/sqlite"
)

const (
	DefaultMetadataPlugin = "sqlite"
	DefaultBlobPlugin     = "badger"
)

// ErrStorageUnavailable wraps every failure of the underlying store that is
// not a domain error such as a missing record
var ErrStorageUnavailable = errors.New("storage unavailable")

// domainErrors pass through unwrapped
var domainErrors = []error{
	models.ErrUserNotFound,
	models.ErrPraiseNotFound,
	models.ErrCooperationNotFound,
	models.ErrLedgerAccountNotFound,
	models.ErrAlreadyAnchored,
	models.ErrAlreadyApproved,
	models.ErrNotParticipant,
}

type Config struct {
	Logger         *slog.Logger
	MetadataPlugin string
	// BlobPlugin selects the cache store. Empty disables it.
	BlobPlugin string
	// DataDir is applied to every plugin that declares a data-dir option.
	// Empty selects in-memory storage.
	DataDir string
}

type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	now      func() time.Time
}

// New starts the configured storage plugins
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	db := &Database{
		logger: config.Logger,
		now:    time.Now,
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataPlugin := config.MetadataPlugin
	if metadataPlugin == "" {
		metadataPlugin = DefaultMetadataPlugin
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		metadataPlugin,
		"data-dir",
		config.DataDir,
	); err != nil {
		return nil, err
	}
	metadataStore, err := metadata.New(metadataPlugin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	db.metadata = metadataStore
	if config.BlobPlugin != "" {
		if err := plugin.SetPluginOption(
			plugin.PluginTypeBlob,
			config.BlobPlugin,
			"data-dir",
			config.DataDir,
		); err != nil {
			_ = metadataStore.Close()
			return nil, err
		}
		blobStore, err := blob.New(config.BlobPlugin)
		if err != nil {
			_ = metadataStore.Close()
			return nil, err
		}
		db.blob = blobStore
	}
	db.logger.Debug(
		"database started",
		"component", "database",
		"metadata", metadataPlugin,
		"blob", config.BlobPlugin,
	)
	return db, nil
}

// NewFromStores wraps already started stores. The blob store may be nil.
func NewFromStores(
	metadataStore metadata.MetadataStore,
	blobStore blob.BlobStore,
	logger *slog.Logger,
) *Database {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Database{
		logger:   logger,
		metadata: metadataStore,
		blob:     blobStore,
		now:      time.Now,
	}
}

// Blob returns the underlying blob store instance, which may be nil
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// wrapErr marks store failures as ErrStorageUnavailable while letting
// domain errors through untouched
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	for _, domainErr := range domainErrors {
		if errors.Is(err, domainErr) {
			return err
		}
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
