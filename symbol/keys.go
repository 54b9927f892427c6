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

package symbol

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMissingKeyMaterial = errors.New("missing key material")

// PublicKeySize is the size of a raw public key
const PublicKeySize = ed25519.PublicKeySize

// PublicKey is a raw Ed25519 public key
type PublicKey [PublicKeySize]byte

func (p PublicKey) String() string {
	return strings.ToUpper(hex.EncodeToString(p[:]))
}

// ParsePublicKey decodes a hex encoded public key
func ParsePublicKey(s string) (PublicKey, error) {
	var ret PublicKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("decode public key: %w", err)
	}
	if len(b) != len(ret) {
		return ret, fmt.Errorf(
			"decode public key: invalid length %d",
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

// KeyPair is an Ed25519 signing key. Symbol private keys are the 32-byte seed.
type KeyPair struct {
	privateKey ed25519.PrivateKey
	publicKey  PublicKey
}

// GenerateKeyPair creates a new key pair from the given entropy source, or
// crypto/rand when r is nil
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	if r == nil {
		r = rand.Reader
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return NewKeyPair(seed)
}

// NewKeyPair builds a key pair from a 32-byte private key
func NewKeyPair(privateKey []byte) (*KeyPair, error) {
	if len(privateKey) != ed25519.SeedSize {
		return nil, fmt.Errorf(
			"%w: private key must be %d bytes, got %d",
			ErrMissingKeyMaterial,
			ed25519.SeedSize,
			len(privateKey),
		)
	}
	priv := ed25519.NewKeyFromSeed(privateKey)
	ret := &KeyPair{privateKey: priv}
	copy(ret.publicKey[:], priv.Public().(ed25519.PublicKey))
	return ret, nil
}

// KeyPairFromPrivateKey builds a key pair from a hex encoded private key
func KeyPairFromPrivateKey(privateKeyHex string) (*KeyPair, error) {
	b, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: decode private key: %w",
			ErrMissingKeyMaterial,
			err,
		)
	}
	return NewKeyPair(b)
}

func (k *KeyPair) PublicKey() PublicKey {
	return k.publicKey
}

// PrivateKey returns a copy of the 32-byte private key
func (k *KeyPair) PrivateKey() []byte {
	return append([]byte(nil), k.privateKey.Seed()...)
}

// PrivateKeyHex returns the private key as uppercase hex, the form used by
// Symbol wallets
func (k *KeyPair) PrivateKeyHex() string {
	return strings.ToUpper(hex.EncodeToString(k.privateKey.Seed()))
}

// Address derives the account address on the given network
func (k *KeyPair) Address(network *Network) Address {
	return NewAddress(network, k.publicKey)
}

// Sign returns the Ed25519 signature of data
func (k *KeyPair) Sign(data []byte) []byte {
	return ed25519.Sign(k.privateKey, data)
}

func (k *KeyPair) hasKey() bool {
	return k != nil && len(k.privateKey) == ed25519.PrivateKeySize
}

// Verify checks an Ed25519 signature made by the holder of pub
func Verify(pub PublicKey, data []byte, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), data, sig)
}
