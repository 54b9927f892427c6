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
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Divisibility is the number of decimal places of the network currency
const Divisibility = 6

var ErrUnknownNetwork = errors.New("unknown network")

// Network holds the parameters that make signatures and addresses specific to
// one Symbol network
type Network struct {
	Name               string
	Identifier         byte
	GenerationHashSeed [32]byte
	CurrencyMosaicID   uint64
	// EpochAdjustment is the network epoch as seconds since the Unix epoch
	EpochAdjustment int64
}

var (
	Testnet = Network{
		Name:               "testnet",
		Identifier:         0x98,
		GenerationHashSeed: mustHash32("49D6E1CE276A85B70EAFE52349AACCA389302E7A9754BCF1221E79494FC665A4"),
		CurrencyMosaicID:   0x72C0212E67A08BCE,
		EpochAdjustment:    1667250467,
	}
	Mainnet = Network{
		Name:               "mainnet",
		Identifier:         0x68,
		GenerationHashSeed: mustHash32("57F7DA205008026C776CB6AED843393F04CD458E0AA2D9F1D5F31A402072B2D6"),
		CurrencyMosaicID:   0x6BED913FA20223F8,
		EpochAdjustment:    1615853185,
	}
)

var networks = []*Network{&Testnet, &Mainnet}

// NetworkByName looks up a well-known network. Matching is case insensitive.
func NetworkByName(name string) (*Network, error) {
	for _, n := range networks {
		if strings.EqualFold(n.Name, name) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
}

// NetworkByIdentifier returns the well-known network using the given address
// prefix byte
func NetworkByIdentifier(id byte) (*Network, error) {
	for _, n := range networks {
		if n.Identifier == id {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownNetwork, id)
}

// NetworkTime converts a wall clock time into milliseconds since the network
// epoch. Times before the epoch are clamped to zero.
func (n *Network) NetworkTime(t time.Time) uint64 {
	ms := t.UnixMilli() - n.EpochAdjustment*1000
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// WallTime converts milliseconds since the network epoch back to wall clock
// time
func (n *Network) WallTime(networkMillis uint64) time.Time {
	// #nosec G115
	return time.UnixMilli(n.EpochAdjustment*1000 + int64(networkMillis)).UTC()
}

// CurrencyMosaicHex returns the currency mosaic ID in the form the REST API
// reports it
func (n *Network) CurrencyMosaicHex() string {
	return fmt.Sprintf("%016X", n.CurrencyMosaicID)
}

func (n *Network) String() string {
	return n.Name
}

func mustHash32(s string) [32]byte {
	var ret [32]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(ret) {
		panic("invalid generation hash seed: " + s)
	}
	copy(ret[:], b)
	return ret
}
