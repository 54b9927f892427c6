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

package keyaccount

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/hometto/database/sops"
)

const (
	SealerPlain = "plain"
	SealerSops  = "sops"
)

var ErrUnknownSealer = errors.New("unknown sealer")

// Sealer protects private keys at rest
type Sealer interface {
	Name() string
	Seal(privateKey []byte) ([]byte, error)
	Unseal(sealed []byte) ([]byte, error)
}

// NewSealer returns the sealer with the given name. The master keys are only
// used by the sops sealer.
func NewSealer(name string, masterKeys sops.MasterKeys) (Sealer, error) {
	switch name {
	case "", SealerPlain:
		return PlainSealer{}, nil
	case SealerSops:
		return NewSopsSealer(masterKeys)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSealer, name)
	}
}

// PlainSealer stores private keys as uppercase hex without encryption
type PlainSealer struct{}

func (PlainSealer) Name() string {
	return SealerPlain
}

func (PlainSealer) Seal(privateKey []byte) ([]byte, error) {
	return []byte(strings.ToUpper(hex.EncodeToString(privateKey))), nil
}

func (PlainSealer) Unseal(sealed []byte) ([]byte, error) {
	return hex.DecodeString(string(sealed))
}

// SopsSealer wraps private keys in a SOPS envelope so the database never
// holds usable key material
type SopsSealer struct {
	masterKeys sops.MasterKeys
}

func NewSopsSealer(masterKeys sops.MasterKeys) (*SopsSealer, error) {
	if masterKeys == (sops.MasterKeys{}) {
		return nil, sops.ErrNoMasterKeys
	}
	return &SopsSealer{masterKeys: masterKeys}, nil
}

func (s *SopsSealer) Name() string {
	return SealerSops
}

func (s *SopsSealer) Seal(privateKey []byte) ([]byte, error) {
	sealed, err := sops.Encrypt(
		[]byte(strings.ToUpper(hex.EncodeToString(privateKey))),
		s.masterKeys,
	)
	if err != nil {
		return nil, fmt.Errorf("seal private key: %w", err)
	}
	return sealed, nil
}

func (s *SopsSealer) Unseal(sealed []byte) ([]byte, error) {
	plain, err := sops.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("unseal private key: %w", err)
	}
	return hex.DecodeString(string(plain))
}
