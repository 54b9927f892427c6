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
	"bytes"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"
)

const (
	AddressSize        = 24
	AddressEncodedSize = 39
	addressChecksumLen = 3
)

var ErrInvalidAddress = errors.New("invalid address")

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Address is a decoded Symbol account address: network byte, 20-byte key
// hash and 3-byte checksum
type Address [AddressSize]byte

// NewAddress derives the address of a public key on the given network
func NewAddress(network *Network, pub PublicKey) Address {
	var ret Address
	keyHash := sha3.Sum256(pub[:])
	ripemd := ripemd160.New()
	ripemd.Write(keyHash[:])
	ret[0] = network.Identifier
	copy(ret[1:21], ripemd.Sum(nil))
	checksum := sha3.Sum256(ret[:21])
	copy(ret[21:], checksum[:addressChecksumLen])
	return ret
}

// ParseAddress decodes an address in its 39 character form. Lowercase and
// dash separated input is accepted.
func ParseAddress(s string) (Address, error) {
	var ret Address
	clean := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	if len(clean) != AddressEncodedSize {
		return ret, fmt.Errorf(
			"%w: expected %d characters, got %d",
			ErrInvalidAddress,
			AddressEncodedSize,
			len(clean),
		)
	}
	// 39 base32 characters carry 195 bits, pad to a whole 25 byte block
	decoded, err := addressEncoding.DecodeString(clean + "A")
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	copy(ret[:], decoded[:AddressSize])
	if !ret.checksumValid() {
		return ret, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	return ret, nil
}

// ParseNetworkAddress decodes an address and checks it belongs to network
func ParseNetworkAddress(network *Network, s string) (Address, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return addr, err
	}
	if addr[0] != network.Identifier {
		return addr, fmt.Errorf(
			"%w: address is not on %s",
			ErrInvalidAddress,
			network.Name,
		)
	}
	return addr, nil
}

// String returns the 39 character encoded form
func (a Address) String() string {
	var buf [AddressSize + 1]byte
	copy(buf[:], a[:])
	return addressEncoding.EncodeToString(buf[:])[:AddressEncodedSize]
}

// Pretty returns the dash separated form shown by wallets
func (a Address) Pretty() string {
	s := a.String()
	var sb strings.Builder
	for i := 0; i < len(s); i += 6 {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(s[i:min(i+6, len(s))])
	}
	return sb.String()
}

// NetworkIdentifier returns the network prefix byte
func (a Address) NetworkIdentifier() byte {
	return a[0]
}

// IsValidFor reports whether the address has a valid checksum and belongs to
// network
func (a Address) IsValidFor(network *Network) bool {
	return network != nil && a[0] == network.Identifier && a.checksumValid()
}

func (a Address) checksumValid() bool {
	checksum := sha3.Sum256(a[:21])
	return bytes.Equal(checksum[:addressChecksumLen], a[21:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
