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

// Package keyaccount provisions the ledger account of each user. Accounts are
// created lazily on first use and never change afterwards.
package keyaccount

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/symbol"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNetworkMismatch = errors.New("ledger account belongs to another network")
	ErrCorruptAccount  = errors.New("ledger account key does not match its address")
)

// Store is the relational boundary the provisioner needs
type Store interface {
	GetLedgerAccount(userID uint) (*models.LedgerAccount, error)
	CreateLedgerAccountIfAbsent(
		account *models.LedgerAccount,
	) (*models.LedgerAccount, error)
}

type Config struct {
	Logger  *slog.Logger
	Store   Store
	Network *symbol.Network
	Sealer  Sealer
	// Rand is the entropy source for new keys. Defaults to crypto/rand.
	Rand io.Reader
}

// Account is a provisioned ledger account. The private key stays sealed until
// KeyPair is called.
type Account struct {
	UserID    uint
	Network   *symbol.Network
	Address   symbol.Address
	PublicKey symbol.PublicKey
	CreatedAt time.Time
	sealed    []byte
	sealer    Sealer
}

// KeyPair unseals the private key
func (a *Account) KeyPair() (*symbol.KeyPair, error) {
	if len(a.sealed) == 0 || a.sealer == nil {
		return nil, symbol.ErrMissingKeyMaterial
	}
	privateKey, err := a.sealer.Unseal(a.sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", symbol.ErrMissingKeyMaterial, err)
	}
	kp, err := symbol.NewKeyPair(privateKey)
	if err != nil {
		return nil, err
	}
	if kp.PublicKey() != a.PublicKey {
		return nil, fmt.Errorf(
			"%w: user %d",
			ErrCorruptAccount,
			a.UserID,
		)
	}
	return kp, nil
}

type Provisioner struct {
	config Config
	logger *slog.Logger
	group  singleflight.Group
}

func NewProvisioner(cfg Config) (*Provisioner, error) {
	if cfg.Store == nil {
		return nil, errors.New("store must be provided")
	}
	if cfg.Network == nil {
		return nil, symbol.ErrUnknownNetwork
	}
	if cfg.Sealer == nil {
		cfg.Sealer = PlainSealer{}
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p := &Provisioner{
		config: cfg,
		logger: cfg.Logger.With("component", "keyaccount"),
	}
	if cfg.Sealer.Name() == SealerPlain {
		p.logger.Warn("ledger private keys are stored unencrypted")
	}
	return p, nil
}

// EnsureAccount returns the ledger account of a user, creating it on first
// use. Concurrent first calls for the same user observe the same account.
func (p *Provisioner) EnsureAccount(
	ctx context.Context,
	userID uint,
) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ret, err, _ := p.group.Do(
		strconv.FormatUint(uint64(userID), 10),
		func() (any, error) {
			return p.ensureAccount(userID)
		},
	)
	if err != nil {
		return nil, err
	}
	return ret.(*Account), nil
}

// LookupAccount returns an existing account without creating one
func (p *Provisioner) LookupAccount(
	ctx context.Context,
	userID uint,
) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, err := p.config.Store.GetLedgerAccount(userID)
	if err != nil {
		return nil, err
	}
	return p.fromModel(row)
}

func (p *Provisioner) ensureAccount(userID uint) (*Account, error) {
	row, err := p.config.Store.GetLedgerAccount(userID)
	if err == nil {
		return p.fromModel(row)
	}
	if !errors.Is(err, models.ErrLedgerAccountNotFound) {
		return nil, err
	}
	kp, err := symbol.GenerateKeyPair(p.config.Rand)
	if err != nil {
		return nil, err
	}
	sealed, err := p.config.Sealer.Seal(kp.PrivateKey())
	if err != nil {
		return nil, err
	}
	row, err = p.config.Store.CreateLedgerAccountIfAbsent(
		&models.LedgerAccount{
			UserID:     userID,
			Network:    p.config.Network.Name,
			PublicKey:  kp.PublicKey().String(),
			Address:    kp.Address(p.config.Network).String(),
			PrivateKey: sealed,
		},
	)
	if err != nil {
		return nil, err
	}
	if row.PublicKey == kp.PublicKey().String() {
		p.logger.Info(
			"created ledger account",
			"user_id", userID,
			"address", row.Address,
		)
	}
	return p.fromModel(row)
}

func (p *Provisioner) fromModel(row *models.LedgerAccount) (*Account, error) {
	if row.Network != p.config.Network.Name {
		return nil, fmt.Errorf(
			"%w: user %d has a %s account",
			ErrNetworkMismatch,
			row.UserID,
			row.Network,
		)
	}
	pub, err := symbol.ParsePublicKey(row.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptAccount, err)
	}
	addr, err := symbol.ParseNetworkAddress(p.config.Network, row.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptAccount, err)
	}
	if symbol.NewAddress(p.config.Network, pub) != addr {
		return nil, fmt.Errorf("%w: user %d", ErrCorruptAccount, row.UserID)
	}
	return &Account{
		UserID:    row.UserID,
		Network:   p.config.Network,
		Address:   addr,
		PublicKey: pub,
		CreatedAt: row.CreatedAt,
		sealed:    row.PrivateKey,
		sealer:    p.config.Sealer,
	}, nil
}
