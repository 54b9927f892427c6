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
	"strings"
	"testing"

	"github.com/blinklabs-io/hometto/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressDerivation(t *testing.T) {
	testDefs := []struct {
		network *symbol.Network
		pubKey  string
		address string
	}{
		{
			network: &symbol.Testnet,
			pubKey:  testPublicKey,
			address: "TBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ESDA7WA",
		},
		{
			network: &symbol.Mainnet,
			pubKey:  testPublicKey,
			address: "NBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ERJ4C2A",
		},
		{
			network: &symbol.Testnet,
			pubKey:  "03A107BFF3CE10BE1D70DD18E74BC09967E4D6309BA50D5F1DDC8664125531B8",
			address: "TAQNAFPBUJYXFKY6WXEALVGR2LPBNPMWE3THSEA",
		},
		{
			network: &symbol.Mainnet,
			pubKey:  "03A107BFF3CE10BE1D70DD18E74BC09967E4D6309BA50D5F1DDC8664125531B8",
			address: "NAQNAFPBUJYXFKY6WXEALVGR2LPBNPMWEZI2KYQ",
		},
	}
	for _, testDef := range testDefs {
		pub, err := symbol.ParsePublicKey(testDef.pubKey)
		require.NoError(t, err)
		addr := symbol.NewAddress(testDef.network, pub)
		assert.Equal(t, testDef.address, addr.String())
		assert.Len(t, addr.String(), symbol.AddressEncodedSize)
		assert.True(t, addr.IsValidFor(testDef.network))
		parsed, err := symbol.ParseAddress(testDef.address)
		require.NoError(t, err)
		assert.Equal(t, addr, parsed)
	}
}

func TestParseAddressForms(t *testing.T) {
	const want = "TBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ESDA7WA"
	addr, err := symbol.ParseAddress(want)
	require.NoError(t, err)
	pretty := addr.Pretty()
	assert.Equal(t, "TBDHG3-NHBCNL-OAAK4O-JFQALF-UZUTWN-E4ESDA-7WA", pretty)
	for _, input := range []string{
		pretty,
		strings.ToLower(want),
		" " + want + " ",
	} {
		parsed, err := symbol.ParseAddress(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, parsed.String())
	}
}

func TestParseAddressInvalid(t *testing.T) {
	testDefs := []string{
		"",
		"TBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ESDA7W",
		// checksum mismatch
		"TBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ESDA7XA",
		// not base32
		"TBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ESDA7W1",
	}
	for _, input := range testDefs {
		_, err := symbol.ParseAddress(input)
		assert.ErrorIs(t, err, symbol.ErrInvalidAddress, "input %q", input)
	}
}

func TestParseNetworkAddress(t *testing.T) {
	_, err := symbol.ParseNetworkAddress(
		&symbol.Testnet,
		"TBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ESDA7WA",
	)
	require.NoError(t, err)
	_, err = symbol.ParseNetworkAddress(
		&symbol.Mainnet,
		"TBDHG3NHBCNLOAAK4OJFQALFUZUTWNE4ESDA7WA",
	)
	assert.ErrorIs(t, err, symbol.ErrInvalidAddress)
}

func TestAddressText(t *testing.T) {
	var addr symbol.Address
	require.NoError(
		t,
		addr.UnmarshalText([]byte("TAQNAFPBUJYXFKY6WXEALVGR2LPBNPMWE3THSEA")),
	)
	text, err := addr.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "TAQNAFPBUJYXFKY6WXEALVGR2LPBNPMWE3THSEA", string(text))
	require.Error(t, addr.UnmarshalText([]byte("bogus")))
}
