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

package symbol_test

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/hometto/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

const (
	testRecipient = "TAQNAFPBUJYXFKY6WXEALVGR2LPBNPMWE3THSEA"
	testMessage   = "praise: stamp=star amount=1 from=1 to=2"
	// testMessage signed by testPrivateKey on testnet at
	// 2026-01-01T00:00:00Z with the default fee and deadline
	testTxHash    = "6F64407A8C87799DF7F4C9F3511828C943C9B0AF3981A754563BC9E698598A12"
	testTxPayload = "C8000000000000007377EA73A0F4AD3DDB0A04C486894F9D40CD69B7A09374F8" +
		"B727361BD276AA6D337A460DECE88ED0A9591502BB64BB5A6EB71D6C2B50A6B8" +
		"9E81AE5D90278A0ED75A980182B10AB7D54BFED3C964073A0EE172F3DAA62325" +
		"AF021A68F707511A000000000198544140420F000000000048546947170000009820" +
		"D015E1A27172AB1EB5C805D4D1D2DE16BD9626E6791028000000000000000070726169" +
		"73653A207374616D703D7374617220616D6F756E743D312066726F6D3D3120746F3D32"
)

func testClock() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func buildTestTransfer(
	t *testing.T,
	message string,
	opts ...symbol.TransferOption,
) *symbol.SignedTransaction {
	t.Helper()
	kp, err := symbol.KeyPairFromPrivateKey(testPrivateKey)
	require.NoError(t, err)
	recipient, err := symbol.ParseAddress(testRecipient)
	require.NoError(t, err)
	opts = append([]symbol.TransferOption{symbol.WithClock(testClock)}, opts...)
	tx, err := symbol.BuildSignedTransfer(
		&symbol.Testnet,
		kp,
		recipient,
		[]byte(message),
		opts...,
	)
	require.NoError(t, err)
	return tx
}

func TestBuildSignedTransferReferenceVector(t *testing.T) {
	tx := buildTestTransfer(t, testMessage)
	assert.Equal(t, testTxHash, tx.Hash)
	assert.Equal(t, testTxPayload, tx.PayloadHex())
	assert.True(t, testClock().Add(2*time.Hour).Equal(tx.Deadline))
	assert.Equal(t, symbol.DefaultFee, tx.Fee)
	assert.Equal(t, testPublicKey, tx.Signer.String())
	assert.True(t, tx.VerifySignature())
}

// TestReferenceVectorWireFormat checks the pinned payload against the
// published testnet generation hash seed with primitives independent of the
// package: the hash is SHA3-256 over signature, signer, seed and body, and
// the signature covers seed and body.
func TestReferenceVectorWireFormat(t *testing.T) {
	const testnetGenerationHashSeed = "49D6E1CE276A85B70EAFE52349AACCA389302E7A9754BCF1221E79494FC665A4"
	payload, err := hex.DecodeString(testTxPayload)
	require.NoError(t, err)
	seed, err := hex.DecodeString(testnetGenerationHashSeed)
	require.NoError(t, err)
	require.Len(t, payload, 200)
	signature := payload[8:72]
	signer := payload[72:104]
	body := payload[108:]
	assert.Equal(t, testPublicKey, strings.ToUpper(hex.EncodeToString(signer)))

	h := sha3.New256()
	h.Write(signature)
	h.Write(signer)
	h.Write(seed)
	h.Write(body)
	assert.Equal(t, testTxHash, strings.ToUpper(hex.EncodeToString(h.Sum(nil))))

	signed := append(append([]byte{}, seed...), body...)
	assert.True(t, ed25519.Verify(ed25519.PublicKey(signer), signed, signature))

	hash, err := symbol.TransactionHash(&symbol.Testnet, payload)
	require.NoError(t, err)
	assert.Equal(t, testTxHash, hash)
	tx, err := symbol.DecodeTransfer(&symbol.Testnet, payload)
	require.NoError(t, err)
	assert.Equal(t, testMessage, string(tx.Message))
	assert.Equal(t, testRecipient, tx.Recipient.String())
}

func TestBuildSignedTransferDeterministic(t *testing.T) {
	tx1 := buildTestTransfer(t, testMessage)
	tx2 := buildTestTransfer(t, testMessage)
	assert.Equal(t, tx1.Hash, tx2.Hash)
	assert.Equal(t, tx1.Payload, tx2.Payload)
	tx3 := buildTestTransfer(t, testMessage+"!")
	assert.NotEqual(t, tx1.Hash, tx3.Hash)
	tx4 := buildTestTransfer(t, testMessage, symbol.WithDeadline(time.Hour))
	assert.NotEqual(t, tx1.Hash, tx4.Hash)
}

func TestBuildSignedTransferLayout(t *testing.T) {
	tx := buildTestTransfer(
		t,
		"hello",
		symbol.WithFee(2_000_000),
		symbol.WithDeadline(time.Hour),
	)
	p := tx.Payload
	require.Len(t, p, 160+1+5)
	assert.Equal(t, uint32(len(p)), binary.LittleEndian.Uint32(p[0:]))
	assert.Equal(t, byte(1), p[108])
	assert.Equal(t, byte(0x98), p[109])
	assert.Equal(t, uint16(0x4154), binary.LittleEndian.Uint16(p[110:]))
	assert.Equal(t, uint64(2_000_000), binary.LittleEndian.Uint64(p[112:]))
	assert.Equal(
		t,
		symbol.Testnet.NetworkTime(testClock().Add(time.Hour)),
		binary.LittleEndian.Uint64(p[120:]),
	)
	recipient, err := symbol.ParseAddress(testRecipient)
	require.NoError(t, err)
	assert.Equal(t, recipient[:], p[128:152])
	assert.Equal(t, uint16(6), binary.LittleEndian.Uint16(p[152:]))
	// mosaic count
	assert.Equal(t, byte(0), p[154])
	assert.Equal(t, byte(0), p[160])
	assert.Equal(t, "hello", string(p[161:]))
}

func TestBuildSignedTransferEmptyMessage(t *testing.T) {
	tx := buildTestTransfer(t, "")
	require.Len(t, tx.Payload, 160)
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(tx.Payload[152:]))
	assert.True(t, tx.VerifySignature())
}

func TestBuildSignedTransferErrors(t *testing.T) {
	kp, err := symbol.KeyPairFromPrivateKey(testPrivateKey)
	require.NoError(t, err)
	recipient, err := symbol.ParseAddress(testRecipient)
	require.NoError(t, err)
	mainnetRecipient, err := symbol.ParseAddress(
		"NAQNAFPBUJYXFKY6WXEALVGR2LPBNPMWEZI2KYQ",
	)
	require.NoError(t, err)

	_, err = symbol.BuildSignedTransfer(&symbol.Testnet, nil, recipient, nil)
	assert.ErrorIs(t, err, symbol.ErrMissingKeyMaterial)

	_, err = symbol.BuildSignedTransfer(
		&symbol.Testnet,
		&symbol.KeyPair{},
		recipient,
		nil,
	)
	assert.ErrorIs(t, err, symbol.ErrMissingKeyMaterial)

	_, err = symbol.BuildSignedTransfer(
		&symbol.Testnet,
		kp,
		mainnetRecipient,
		nil,
	)
	assert.ErrorIs(t, err, symbol.ErrInvalidRecipient)

	_, err = symbol.BuildSignedTransfer(
		&symbol.Testnet,
		kp,
		symbol.Address{},
		nil,
	)
	assert.ErrorIs(t, err, symbol.ErrInvalidRecipient)

	_, err = symbol.BuildSignedTransfer(
		&symbol.Testnet,
		kp,
		recipient,
		[]byte(strings.Repeat("x", symbol.MaxMessageSize)),
	)
	assert.ErrorIs(t, err, symbol.ErrMessageTooLarge)

	_, err = symbol.BuildSignedTransfer(
		&symbol.Testnet,
		kp,
		recipient,
		[]byte(strings.Repeat("x", symbol.MaxMessageSize-1)),
	)
	assert.NoError(t, err)
}

func TestNetworkTime(t *testing.T) {
	epoch := time.Unix(symbol.Testnet.EpochAdjustment, 0)
	assert.Equal(t, uint64(0), symbol.Testnet.NetworkTime(epoch))
	assert.Equal(t, uint64(0), symbol.Testnet.NetworkTime(epoch.Add(-time.Hour)))
	assert.Equal(t, uint64(1500), symbol.Testnet.NetworkTime(epoch.Add(1500*time.Millisecond)))
	assert.True(t, symbol.Testnet.WallTime(1500).Equal(epoch.Add(1500*time.Millisecond)))
}

func TestDecodeTransfer(t *testing.T) {
	tx := buildTestTransfer(t, testMessage)
	decoded, err := symbol.DecodeTransfer(&symbol.Testnet, tx.Payload)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash, decoded.Hash)
	assert.Equal(t, tx.Signer, decoded.Signer)
	assert.Equal(t, tx.Recipient, decoded.Recipient)
	assert.Equal(t, testMessage, string(decoded.Message))
	assert.Equal(t, symbol.DefaultFee, decoded.Fee)
	assert.True(t, tx.Deadline.Equal(decoded.Deadline))
	assert.True(t, decoded.VerifySignature())

	hash, err := symbol.TransactionHash(&symbol.Testnet, tx.Payload)
	require.NoError(t, err)
	assert.Equal(t, testTxHash, hash)
}

func TestDecodeTransferMalformed(t *testing.T) {
	tx := buildTestTransfer(t, testMessage)
	_, err := symbol.DecodeTransfer(&symbol.Testnet, tx.Payload[:100])
	assert.ErrorIs(t, err, symbol.ErrMalformedTransaction)
	_, err = symbol.DecodeTransfer(&symbol.Testnet, tx.Payload[:len(tx.Payload)-1])
	assert.ErrorIs(t, err, symbol.ErrMalformedTransaction)
	_, err = symbol.DecodeTransfer(&symbol.Mainnet, tx.Payload)
	assert.ErrorIs(t, err, symbol.ErrMalformedTransaction)
	// A flipped byte in the body breaks the signature but still decodes
	tampered := append([]byte(nil), tx.Payload...)
	tampered[len(tampered)-1] ^= 0xff
	decoded, err := symbol.DecodeTransfer(&symbol.Testnet, tampered)
	require.NoError(t, err)
	assert.False(t, decoded.VerifySignature())
	assert.NotEqual(t, tx.Hash, decoded.Hash)
}
