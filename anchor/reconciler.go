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

package anchor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/hometto/database/models"
)

const (
	DefaultReconcileInterval    = time.Minute
	DefaultReconcileMinAge      = 5 * time.Minute
	DefaultReconcileMaxAttempts = 5
	DefaultReconcileBatchSize   = 50
)

type ReconcilerConfig struct {
	Logger *slog.Logger
	// Interval between passes started by Start
	Interval time.Duration
	// MinAge skips events created or last attempted more recently
	MinAge time.Duration
	// MaxAttempts skips events that already failed this many times
	MaxAttempts int
	// BatchSize limits each kind per pass
	BatchSize int
}

// ReconcileResult summarizes one reconciler pass
type ReconcileResult struct {
	Attempted int
	Anchored  int
	Failed    int
}

// Reconciler retries events that were committed without a ledger reference,
// oldest first, through the regular pipeline
type Reconciler struct {
	anchorer *Anchorer
	config   ReconcilerConfig
	logger   *slog.Logger
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewReconciler(anchorer *Anchorer, cfg ReconcilerConfig) *Reconciler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReconcileInterval
	}
	if cfg.MinAge <= 0 {
		cfg.MinAge = DefaultReconcileMinAge
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultReconcileMaxAttempts
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultReconcileBatchSize
	}
	return &Reconciler{
		anchorer: anchorer,
		config:   cfg,
		logger:   cfg.Logger.With("component", "reconciler"),
	}
}

// RunOnce makes a single pass over unanchored praises and completed
// cooperations
func (r *Reconciler) RunOnce(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult
	if !r.anchorer.Enabled() {
		return result, nil
	}
	r.anchorer.metrics.reconcileRuns.Inc()
	store := r.anchorer.config.Store
	praises, err := store.ListUnanchoredPraises(
		r.config.MinAge,
		r.config.MaxAttempts,
		r.config.BatchSize,
	)
	if err != nil {
		return result, err
	}
	for _, praise := range praises {
		if err := r.anchor(ctx, models.AnchorKindPraise, praise.ID, &result); err != nil {
			return result, err
		}
	}
	coops, err := store.ListUnanchoredCooperations(
		r.config.MinAge,
		r.config.MaxAttempts,
		r.config.BatchSize,
	)
	if err != nil {
		return result, err
	}
	for _, coop := range coops {
		if err := r.anchor(ctx, models.AnchorKindCooperation, coop.ID, &result); err != nil {
			return result, err
		}
	}
	if result.Attempted > 0 {
		r.logger.Info(
			"reconciler pass finished",
			"attempted", result.Attempted,
			"anchored", result.Anchored,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (r *Reconciler) anchor(
	ctx context.Context,
	kind models.AnchorKind,
	eventID uint,
	result *ReconcileResult,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(ctx, r.anchorer.config.Timeout)
	defer cancel()
	outcome := r.anchorer.Anchor(runCtx, kind, eventID)
	if errors.Is(outcome.Err, ErrInFlight) {
		return nil
	}
	result.Attempted++
	switch outcome.State {
	case StateAnchored:
		result.Anchored++
	case StateAnchorFailed:
		result.Failed++
	}
	return nil
}

// Start runs a pass every interval in the background until Stop is called or
// ctx ends
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)
}

func (r *Reconciler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil &&
				!errors.Is(err, context.Canceled) {
				r.logger.Warn("reconciler pass failed", "error", err)
			}
		}
	}
}

// Stop ends the background loop and waits for the current pass
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
