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

package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/hometto/anchor"
	"github.com/blinklabs-io/hometto/api"
	"github.com/blinklabs-io/hometto/classroom"
	"github.com/blinklabs-io/hometto/database"
	"github.com/blinklabs-io/hometto/database/sops"
	"github.com/blinklabs-io/hometto/event"
	"github.com/blinklabs-io/hometto/internal/config"
	"github.com/blinklabs-io/hometto/keyaccount"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/prometheus/client_golang/prometheus"
)

// Node holds the wired hometto components
type Node struct {
	config     *config.Config
	logger     *slog.Logger
	db         *database.Database
	ledger     *ledgerclient.Client
	accounts   *keyaccount.Provisioner
	eventBus   *event.EventBus
	anchorer   *anchor.Anchorer
	reconciler *anchor.Reconciler
	classroom  *classroom.Service
	api        *api.Server
	started    bool
}

// New opens the database and builds every component from the config. A nil
// registry disables metrics.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*Node, error) {
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	network := cfg.SymbolNetwork()
	n := &Node{
		config: cfg,
		logger: logger,
	}
	db, err := database.New(&database.Config{
		Logger:         logger,
		MetadataPlugin: cfg.MetadataPlugin,
		BlobPlugin:     cfg.BlobPlugin,
		DataDir:        cfg.DataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	n.db = db
	sealer, err := keyaccount.NewSealer(cfg.KeySealer, sops.MasterKeysFromEnv())
	if err != nil {
		n.close()
		return nil, err
	}
	n.accounts, err = keyaccount.NewProvisioner(keyaccount.Config{
		Logger:  logger,
		Store:   db,
		Network: network,
		Sealer:  sealer,
	})
	if err != nil {
		n.close()
		return nil, err
	}
	opts := []ledgerclient.ClientOption{
		ledgerclient.WithLogger(logger),
		ledgerclient.WithTimeout(cfg.LedgerTimeout),
		ledgerclient.WithMaxHistoryPages(cfg.MaxHistoryPages),
		ledgerclient.WithTracing(cfg.TracingEnabled),
		ledgerclient.WithPromRegistry(promRegistry),
	}
	if cfg.LedgerRateLimit > 0 {
		opts = append(
			opts,
			ledgerclient.WithRateLimit(cfg.LedgerRateLimit, cfg.LedgerRateBurst),
		)
	}
	if blobStore := db.Blob(); blobStore != nil {
		opts = append(opts, ledgerclient.WithCache(blobStore, cfg.CacheTTL))
	}
	n.ledger, err = ledgerclient.New(cfg.NodeURL, network, opts...)
	if err != nil {
		n.close()
		return nil, err
	}
	n.eventBus = event.NewEventBus(promRegistry, logger)
	n.watchAnchors()
	n.anchorer, err = anchor.New(anchor.Config{
		Logger:               logger,
		PromRegistry:         promRegistry,
		EventBus:             n.eventBus,
		Store:                db,
		Accounts:             n.accounts,
		Ledger:               n.ledger,
		Network:              network,
		Timeout:              cfg.AnchorTimeout,
		MaxMessageSize:       cfg.MaxMessageSize,
		Fee:                  cfg.TransactionFee,
		Deadline:             cfg.DeadlineWindow,
		CooperationRecipient: cfg.CooperationRecipient,
		Disabled:             !cfg.AnchorEnabled,
	})
	if err != nil {
		n.close()
		return nil, err
	}
	n.reconciler = anchor.NewReconciler(n.anchorer, anchor.ReconcilerConfig{
		Logger:      logger,
		Interval:    cfg.ReconcileInterval,
		MinAge:      cfg.ReconcileMinAge,
		MaxAttempts: cfg.ReconcileMaxAttempts,
	})
	n.classroom, err = classroom.New(classroom.Config{
		Logger:   logger,
		Store:    db,
		Anchorer: n.anchorer,
		EventBus: n.eventBus,
	})
	if err != nil {
		n.close()
		return nil, err
	}
	listenAddress := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort)
	n.api = api.New(
		api.Config{
			Logger:        logger,
			PromRegistry:  promRegistry,
			ListenAddress: listenAddress,
			Tracing:       cfg.TracingEnabled,
		},
		db,
		n.classroom,
		n.ledger,
	)
	return n, nil
}

// NewOffline builds a node for one-shot commands that can run next to a
// serving process. The blob cache is not opened, since the badger plugin
// holds an exclusive lock on its directory, and metrics are disabled.
func NewOffline(cfg *config.Config, logger *slog.Logger) (*Node, error) {
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}
	offlineCfg := *cfg
	offlineCfg.BlobPlugin = ""
	return New(&offlineCfg, logger, nil)
}

func (n *Node) Database() *database.Database {
	return n.db
}

func (n *Node) Ledger() *ledgerclient.Client {
	return n.ledger
}

func (n *Node) Accounts() *keyaccount.Provisioner {
	return n.accounts
}

func (n *Node) Anchorer() *anchor.Anchorer {
	return n.anchorer
}

func (n *Node) Reconciler() *anchor.Reconciler {
	return n.reconciler
}

func (n *Node) Classroom() *classroom.Service {
	return n.classroom
}

// Start starts the API server and, when enabled, the reconciler loop. Both
// stop when ctx is done.
func (n *Node) Start(ctx context.Context) error {
	if err := n.api.Start(ctx); err != nil {
		return err
	}
	if n.config.ReconcileEnabled {
		n.reconciler.Start(ctx)
	}
	n.started = true
	return nil
}

// Stop shuts the components down in dependency order: no new requests, then
// in-flight anchoring, then the reconciler, the event bus and storage
func (n *Node) Stop(ctx context.Context) error {
	var err error
	if n.started {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}
	n.anchorer.Wait()
	if n.started {
		n.reconciler.Stop()
		n.started = false
	}
	return errors.Join(err, n.close())
}

func (n *Node) close() error {
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db == nil {
		return nil
	}
	if err := n.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
