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

// Package anchor writes application events to the ledger after they have been
// committed to the database. Anchoring is best effort: a failure is recorded
// on the event and never undoes or blocks the application effect.
package anchor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/event"
	"github.com/blinklabs-io/hometto/keyaccount"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrDisabled      = errors.New("anchoring is disabled")
	ErrInFlight      = errors.New("event is already being anchored")
	ErrNotCompleted  = errors.New("cooperation is not completed")
	ErrShuttingDown  = errors.New("anchorer is shutting down")
	errMissingConfig = errors.New("anchorer requires a store, accounts, ledger and network")
)

// Store is the relational boundary of the anchoring pipeline
type Store interface {
	GetPraise(id uint) (*models.Praise, error)
	GetCooperation(id uint) (*models.Cooperation, error)
	AttachLedgerReference(kind models.AnchorKind, id uint, hash string) error
	RecordAnchorFailure(kind models.AnchorKind, id uint, reason string) error
	ListUnanchoredPraises(
		minAge time.Duration,
		maxAttempts, limit int,
	) ([]models.Praise, error)
	ListUnanchoredCooperations(
		minAge time.Duration,
		maxAttempts, limit int,
	) ([]models.Cooperation, error)
}

// Accounts resolves the ledger account of a user
type Accounts interface {
	EnsureAccount(ctx context.Context, userID uint) (*keyaccount.Account, error)
}

// Ledger submits signed transactions
type Ledger interface {
	Submit(
		ctx context.Context,
		tx *symbol.SignedTransaction,
	) ledgerclient.SubmissionResult
}

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
	Store        Store
	Accounts     Accounts
	Ledger       Ledger
	Network      *symbol.Network
	// Timeout bounds a dispatched pipeline run
	Timeout time.Duration
	// MaxMessageSize is the byte limit of encoded messages
	MaxMessageSize int
	// Fee and Deadline override the transaction defaults when non-zero
	Fee      uint64
	Deadline time.Duration
	// CooperationRecipient receives every cooperation attestation when set.
	// Otherwise the earliest-joined participant other than the initiator does.
	CooperationRecipient string
	// Disabled turns the ledger leg off. Events stay in StateCreated.
	Disabled bool
	// Clock is the time source for transaction deadlines
	Clock func() time.Time
}

type Anchorer struct {
	config               Config
	logger               *slog.Logger
	metrics              anchorMetrics
	cooperationRecipient *symbol.Address
	inFlight             sync.Map
	wg                   sync.WaitGroup
	mu                   sync.Mutex
	closed               bool
}

func New(cfg Config) (*Anchorer, error) {
	if cfg.Store == nil || cfg.Accounts == nil || cfg.Ledger == nil ||
		cfg.Network == nil {
		return nil, errMissingConfig
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxMessageSize <= 0 || cfg.MaxMessageSize > DefaultMaxMessageSize {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	a := &Anchorer{
		config: cfg,
		logger: cfg.Logger.With("component", "anchor"),
	}
	if cfg.CooperationRecipient != "" {
		addr, err := symbol.ParseNetworkAddress(
			cfg.Network,
			cfg.CooperationRecipient,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"cooperation recipient: %w",
				errors.Join(symbol.ErrInvalidRecipient, err),
			)
		}
		a.cooperationRecipient = &addr
	}
	a.metrics.init(cfg.PromRegistry)
	if cfg.Disabled {
		a.logger.Info("ledger anchoring is disabled")
	}
	return a, nil
}

// Enabled reports whether events are written to the ledger
func (a *Anchorer) Enabled() bool {
	return !a.config.Disabled
}

// AnchorPraise runs the pipeline for a committed praise
func (a *Anchorer) AnchorPraise(ctx context.Context, praiseID uint) Outcome {
	return a.Anchor(ctx, models.AnchorKindPraise, praiseID)
}

// AnchorCooperation runs the pipeline for a completed cooperation
func (a *Anchorer) AnchorCooperation(
	ctx context.Context,
	cooperationID uint,
) Outcome {
	return a.Anchor(ctx, models.AnchorKindCooperation, cooperationID)
}

// Anchor runs the anchoring pipeline for one event and reports how it ended.
// Failures are recorded on the event and published, never returned to the
// application.
func (a *Anchorer) Anchor(
	ctx context.Context,
	kind models.AnchorKind,
	eventID uint,
) Outcome {
	start := time.Now()
	outcome := Outcome{Kind: kind, EventID: eventID, State: StateCreated}
	if a.config.Disabled {
		outcome.Err = ErrDisabled
		return outcome
	}
	key := kind.String() + ":" + fmt.Sprint(eventID)
	if _, busy := a.inFlight.LoadOrStore(key, struct{}{}); busy {
		outcome.State = StateAnchoring
		outcome.Err = ErrInFlight
		return outcome
	}
	defer a.inFlight.Delete(key)
	a.metrics.attempts.WithLabelValues(kind.String()).Inc()
	outcome.State = StateAnchoring
	res, err := a.run(ctx, kind, eventID)
	hash := res.hash
	outcome.Duration = time.Since(start)
	outcome.Hash = hash
	switch {
	case err == nil:
		outcome.State = StateAnchored
		a.metrics.results.WithLabelValues(kind.String(), "anchored", "").Inc()
		a.logger.Info(
			"event anchored",
			"kind", kind,
			"event_id", eventID,
			"hash", hash,
			"duration", outcome.Duration,
		)
		a.publish(AnchoredEventType, AnchoredEvent{
			Kind:      kind,
			EventID:   eventID,
			Hash:      hash,
			Signer:    res.signer,
			Recipient: res.recipient,
		})
	case errors.Is(err, models.ErrAlreadyAnchored):
		outcome.State = StateAnchored
		outcome.Err = err
		a.metrics.results.WithLabelValues(kind.String(), "skipped", "").Inc()
		a.logger.Debug(
			"event already anchored",
			"kind", kind,
			"event_id", eventID,
			"hash", hash,
		)
	default:
		outcome.State = StateAnchorFailed
		outcome.Err = err
		outcome.Reason = Classify(err)
		a.fail(kind, eventID, hash, outcome.Reason, err)
	}
	return outcome
}

// anchorPlan is everything needed to build the transaction of one event
type anchorPlan struct {
	signerID    uint
	recipientID uint
	recipient   *symbol.Address
	message     []byte
}

// runResult is the transaction an attempt submitted, or the reference the
// event already carries
type runResult struct {
	hash      string
	signer    symbol.Address
	recipient symbol.Address
}

func (a *Anchorer) run(
	ctx context.Context,
	kind models.AnchorKind,
	eventID uint,
) (runResult, error) {
	p, existing, err := a.plan(kind, eventID)
	if err != nil {
		return runResult{hash: existing}, err
	}
	signer, err := a.config.Accounts.EnsureAccount(ctx, p.signerID)
	if err != nil {
		return runResult{}, fmt.Errorf("resolve signer account: %w", err)
	}
	recipient := p.recipient
	if recipient == nil {
		acct, err := a.config.Accounts.EnsureAccount(ctx, p.recipientID)
		if err != nil {
			return runResult{}, fmt.Errorf("resolve recipient account: %w", err)
		}
		recipient = &acct.Address
	}
	kp, err := signer.KeyPair()
	if err != nil {
		return runResult{}, fmt.Errorf("signer key: %w", err)
	}
	opts := []symbol.TransferOption{symbol.WithClock(a.config.Clock)}
	if a.config.Fee > 0 {
		opts = append(opts, symbol.WithFee(a.config.Fee))
	}
	if a.config.Deadline > 0 {
		opts = append(opts, symbol.WithDeadline(a.config.Deadline))
	}
	tx, err := symbol.BuildSignedTransfer(
		a.config.Network,
		kp,
		*recipient,
		p.message,
		opts...,
	)
	if err != nil {
		return runResult{}, fmt.Errorf("build transaction: %w", err)
	}
	res := runResult{
		hash:      tx.Hash,
		signer:    signer.Address,
		recipient: *recipient,
	}
	result := a.config.Ledger.Submit(ctx, tx)
	if !result.Success {
		return res, fmt.Errorf("submit transaction: %w", result.Err)
	}
	res.hash = result.Hash
	if err := a.config.Store.AttachLedgerReference(kind, eventID, result.Hash); err != nil {
		if errors.Is(err, models.ErrAlreadyAnchored) {
			// Another attempt recorded its reference first. The event keeps
			// that one and the transaction submitted here is a duplicate.
			stored, lookupErr := a.storedHash(kind, eventID)
			if lookupErr != nil {
				return res, errors.Join(
					fmt.Errorf("attach ledger reference: %w", err),
					lookupErr,
				)
			}
			a.logger.Warn(
				"event was anchored by another attempt",
				"kind", kind,
				"event_id", eventID,
				"hash", stored,
				"duplicate_hash", result.Hash,
			)
			res.hash = stored
			return res, fmt.Errorf("attach ledger reference: %w", err)
		}
		// The ledger holds a transaction the database does not know about
		a.logger.Error(
			"submitted transaction could not be recorded",
			"kind", kind,
			"event_id", eventID,
			"hash", result.Hash,
			"error", err,
		)
		return res, fmt.Errorf("attach ledger reference: %w", err)
	}
	return res, nil
}

// storedHash returns the ledger reference an event carries in the store
func (a *Anchorer) storedHash(
	kind models.AnchorKind,
	eventID uint,
) (string, error) {
	var ref *string
	switch kind {
	case models.AnchorKindPraise:
		praise, err := a.config.Store.GetPraise(eventID)
		if err != nil {
			return "", fmt.Errorf("load praise: %w", err)
		}
		ref = praise.LedgerTxHash
	case models.AnchorKindCooperation:
		coop, err := a.config.Store.GetCooperation(eventID)
		if err != nil {
			return "", fmt.Errorf("load cooperation: %w", err)
		}
		ref = coop.LedgerTxHash
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEvent, kind)
	}
	if ref == nil {
		return "", fmt.Errorf("%s %d has no ledger reference", kind, eventID)
	}
	return *ref, nil
}

// plan loads the event and decides who signs and who receives. An event that
// already carries a reference returns it with models.ErrAlreadyAnchored.
func (a *Anchorer) plan(
	kind models.AnchorKind,
	eventID uint,
) (*anchorPlan, string, error) {
	switch kind {
	case models.AnchorKindPraise:
		praise, err := a.config.Store.GetPraise(eventID)
		if err != nil {
			return nil, "", fmt.Errorf("load praise: %w", err)
		}
		if praise.Anchored() {
			return nil, *praise.LedgerTxHash, models.ErrAlreadyAnchored
		}
		msg, err := EncodeMessage(praise, a.config.MaxMessageSize)
		if err != nil {
			return nil, "", err
		}
		return &anchorPlan{
			signerID:    praise.FromUserID,
			recipientID: praise.ToUserID,
			message:     msg,
		}, "", nil
	case models.AnchorKindCooperation:
		coop, err := a.config.Store.GetCooperation(eventID)
		if err != nil {
			return nil, "", fmt.Errorf("load cooperation: %w", err)
		}
		if coop.Anchored() {
			return nil, *coop.LedgerTxHash, models.ErrAlreadyAnchored
		}
		if !coop.Completed() {
			return nil, "", ErrNotCompleted
		}
		msg, err := EncodeMessage(coop, a.config.MaxMessageSize)
		if err != nil {
			return nil, "", err
		}
		return &anchorPlan{
			signerID:    coop.InitiatorID,
			recipientID: cooperationRecipient(coop),
			recipient:   a.cooperationRecipient,
			message:     msg,
		}, "", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedEvent, kind)
	}
}

// cooperationRecipient picks the earliest-joined participant other than the
// initiator, falling back to the initiator for a single-member cooperation
func cooperationRecipient(coop *models.Cooperation) uint {
	var best *models.CooperationParticipant
	for i := range coop.Participants {
		p := &coop.Participants[i]
		if p.UserID == coop.InitiatorID {
			continue
		}
		if best == nil || p.JoinOrder < best.JoinOrder {
			best = p
		}
	}
	if best == nil {
		return coop.InitiatorID
	}
	return best.UserID
}

func (a *Anchorer) fail(
	kind models.AnchorKind,
	eventID uint,
	hash string,
	reason string,
	err error,
) {
	a.metrics.results.WithLabelValues(kind.String(), "failed", reason).Inc()
	a.logger.Warn(
		"event anchoring failed",
		"kind", kind,
		"event_id", eventID,
		"hash", hash,
		"reason", reason,
		"error", err,
	)
	if !errors.Is(err, models.ErrPraiseNotFound) &&
		!errors.Is(err, models.ErrCooperationNotFound) {
		if recErr := a.config.Store.RecordAnchorFailure(kind, eventID, err.Error()); recErr != nil {
			a.logger.Warn(
				"failed to record anchoring failure",
				"kind", kind,
				"event_id", eventID,
				"error", recErr,
			)
		}
	}
	a.publish(AnchorFailedEventType, AnchorFailedEvent{
		Kind:    kind,
		EventID: eventID,
		Reason:  reason,
		Err:     err,
	})
}

func (a *Anchorer) publish(eventType event.EventType, data any) {
	if a.config.EventBus == nil {
		return
	}
	a.config.EventBus.Publish(event.NewEvent(eventType, data))
}

// Dispatch runs the pipeline in the background on a context detached from
// the caller, bounded by the configured timeout. It returns false when
// anchoring is disabled or the anchorer is shutting down.
func (a *Anchorer) Dispatch(kind models.AnchorKind, eventID uint) bool {
	if a.config.Disabled {
		return false
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Warn(
			"dropping anchoring request during shutdown",
			"kind", kind,
			"event_id", eventID,
			"error", ErrShuttingDown,
		)
		return false
	}
	a.wg.Add(1)
	a.mu.Unlock()
	a.metrics.inFlight.Inc()
	go func() {
		defer a.wg.Done()
		defer a.metrics.inFlight.Dec()
		ctx, cancel := context.WithTimeout(
			context.Background(),
			a.config.Timeout,
		)
		defer cancel()
		a.Anchor(ctx, kind, eventID)
	}()
	return true
}

// Wait stops accepting dispatches and blocks until in-flight pipelines end
func (a *Anchorer) Wait() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.wg.Wait()
}
