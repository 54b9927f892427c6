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
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

const (
	TransferTransactionType    uint16 = 0x4154
	TransferTransactionVersion uint8  = 1

	// DefaultFee is the fixed fee in micro-units (0.001 XYM)
	DefaultFee uint64 = 1_000_000
	// DefaultDeadline is the validity window of a built transaction
	DefaultDeadline = 2 * time.Hour
	// MaxMessageSize is the largest message payload a node accepts,
	// including the message type marker
	MaxMessageSize = 1024

	// PlainMessageMarker prefixes unencrypted transfer messages
	PlainMessageMarker byte = 0x00

	signatureSize = 64
	// headerSize covers size, reserved, signature, signer and reserved
	headerSize = 4 + 4 + signatureSize + PublicKeySize + 4
	// transferBodySize covers everything up to the message bytes
	transferBodySize = 1 + 1 + 2 + 8 + 8 + AddressSize + 2 + 1 + 4 + 1
)

var (
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrMessageTooLarge  = errors.New("message too large")

	ErrMalformedTransaction = errors.New("malformed transaction")
)

// SignedTransaction is a serialized and signed transfer ready for submission
type SignedTransaction struct {
	Network   *Network
	Payload   []byte
	Hash      string
	Signer    PublicKey
	Recipient Address
	Message   []byte
	Fee       uint64
	Deadline  time.Time
}

// PayloadHex returns the payload as uppercase hex, the form the REST API
// expects
func (t *SignedTransaction) PayloadHex() string {
	return strings.ToUpper(hex.EncodeToString(t.Payload))
}

type transferOptions struct {
	fee      uint64
	deadline time.Duration
	clock    func() time.Time
}

type TransferOption func(*transferOptions)

// WithFee overrides the transaction fee in micro-units
func WithFee(fee uint64) TransferOption {
	return func(o *transferOptions) {
		o.fee = fee
	}
}

// WithDeadline overrides the validity window
func WithDeadline(d time.Duration) TransferOption {
	return func(o *transferOptions) {
		o.deadline = d
	}
}

// WithClock sets the time source used to compute the deadline
func WithClock(clock func() time.Time) TransferOption {
	return func(o *transferOptions) {
		o.clock = clock
	}
}

// BuildSignedTransfer builds a TransferTransactionV1 carrying message and no
// mosaics, signs it with sender and computes its hash. The message is
// embedded as a plain message without truncation.
func BuildSignedTransfer(
	network *Network,
	sender *KeyPair,
	recipient Address,
	message []byte,
	opts ...TransferOption,
) (*SignedTransaction, error) {
	if network == nil {
		return nil, ErrUnknownNetwork
	}
	if !sender.hasKey() {
		return nil, ErrMissingKeyMaterial
	}
	if !recipient.IsValidFor(network) {
		return nil, fmt.Errorf(
			"%w: %s is not a valid %s address",
			ErrInvalidRecipient,
			recipient.String(),
			network.Name,
		)
	}
	msgSize := 0
	if len(message) > 0 {
		msgSize = len(message) + 1
	}
	if msgSize > MaxMessageSize {
		return nil, fmt.Errorf(
			"%w: %d bytes exceeds %d",
			ErrMessageTooLarge,
			msgSize,
			MaxMessageSize,
		)
	}
	o := transferOptions{
		fee:      DefaultFee,
		deadline: DefaultDeadline,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	deadline := o.clock().Add(o.deadline)

	size := headerSize + transferBodySize + msgSize
	payload := make([]byte, size)
	// #nosec G115
	binary.LittleEndian.PutUint32(payload[0:], uint32(size))
	// Signature and signer are filled in after serialization
	pos := headerSize - PublicKeySize - 4
	copy(payload[pos:], sender.publicKey[:])
	pos = headerSize
	payload[pos] = TransferTransactionVersion
	payload[pos+1] = network.Identifier
	binary.LittleEndian.PutUint16(payload[pos+2:], TransferTransactionType)
	binary.LittleEndian.PutUint64(payload[pos+4:], o.fee)
	binary.LittleEndian.PutUint64(
		payload[pos+12:],
		network.NetworkTime(deadline),
	)
	pos += 20
	copy(payload[pos:], recipient[:])
	pos += AddressSize
	// #nosec G115
	binary.LittleEndian.PutUint16(payload[pos:], uint16(msgSize))
	// Mosaic count and reserved fields stay zero
	pos += 2 + 1 + 4 + 1
	if msgSize > 0 {
		payload[pos] = PlainMessageMarker
		copy(payload[pos+1:], message)
	}

	sig := sender.Sign(signingData(network, payload))
	copy(payload[8:], sig)

	return &SignedTransaction{
		Network:   network,
		Payload:   payload,
		Hash:      transactionHash(network, payload),
		Signer:    sender.publicKey,
		Recipient: recipient,
		Message:   append([]byte(nil), message...),
		Fee:       o.fee,
		Deadline:  network.WallTime(network.NetworkTime(deadline)),
	}, nil
}

// VerifySignature checks the payload signature against the embedded signer
func (t *SignedTransaction) VerifySignature() bool {
	if len(t.Payload) < headerSize {
		return false
	}
	var signer PublicKey
	copy(signer[:], t.Payload[headerSize-PublicKeySize-4:headerSize-4])
	return Verify(
		signer,
		signingData(t.Network, t.Payload),
		t.Payload[8:8+signatureSize],
	)
}

func signingData(network *Network, payload []byte) []byte {
	data := make([]byte, 0, len(network.GenerationHashSeed)+len(payload)-headerSize)
	data = append(data, network.GenerationHashSeed[:]...)
	return append(data, payload[headerSize:]...)
}

// DecodeTransfer parses a signed TransferTransactionV1 payload. The signature
// is not verified.
func DecodeTransfer(network *Network, payload []byte) (*SignedTransaction, error) {
	if network == nil {
		return nil, ErrUnknownNetwork
	}
	if len(payload) < headerSize+transferBodySize {
		return nil, fmt.Errorf(
			"%w: payload too short (%d bytes)",
			ErrMalformedTransaction,
			len(payload),
		)
	}
	if size := binary.LittleEndian.Uint32(payload[0:]); int(size) != len(payload) {
		return nil, fmt.Errorf(
			"%w: size field %d does not match payload length %d",
			ErrMalformedTransaction,
			size,
			len(payload),
		)
	}
	pos := headerSize
	if payload[pos] != TransferTransactionVersion ||
		binary.LittleEndian.Uint16(payload[pos+2:]) != TransferTransactionType {
		return nil, fmt.Errorf(
			"%w: not a transfer transaction",
			ErrMalformedTransaction,
		)
	}
	if payload[pos+1] != network.Identifier {
		return nil, fmt.Errorf(
			"%w: network 0x%02x does not match %s",
			ErrMalformedTransaction,
			payload[pos+1],
			network.Name,
		)
	}
	deadline := binary.LittleEndian.Uint64(payload[pos+12:])
	ret := &SignedTransaction{
		Network:  network,
		Payload:  append([]byte(nil), payload...),
		Hash:     transactionHash(network, payload),
		Fee:      binary.LittleEndian.Uint64(payload[pos+4:]),
		Deadline: network.WallTime(deadline),
	}
	copy(ret.Signer[:], payload[headerSize-PublicKeySize-4:])
	pos += 20
	copy(ret.Recipient[:], payload[pos:pos+AddressSize])
	pos += AddressSize
	msgSize := int(binary.LittleEndian.Uint16(payload[pos:]))
	mosaicCount := int(payload[pos+2])
	pos += 2 + 1 + 4 + 1 + mosaicCount*16
	if pos+msgSize != len(payload) {
		return nil, fmt.Errorf(
			"%w: message size %d does not fit payload",
			ErrMalformedTransaction,
			msgSize,
		)
	}
	if msgSize > 0 {
		ret.Message = append([]byte(nil), payload[pos+1:]...)
	}
	return ret, nil
}

// TransactionHash computes the hash of a signed payload on network
func TransactionHash(network *Network, payload []byte) (string, error) {
	if len(payload) < headerSize {
		return "", ErrMalformedTransaction
	}
	return transactionHash(network, payload), nil
}

// transactionHash is SHA3-256 over signature, signer, generation hash seed
// and the signed body
func transactionHash(network *Network, payload []byte) string {
	h := sha3.New256()
	h.Write(payload[8 : 8+signatureSize+PublicKeySize])
	h.Write(network.GenerationHashSeed[:])
	h.Write(payload[headerSize:])
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}
