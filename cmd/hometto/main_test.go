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

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/hometto/internal/test/mocknode"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygen(t *testing.T) {
	var buf bytes.Buffer
	seed := bytes.NewReader(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, keygen(&buf, &symbol.Mainnet, seed))

	var out keygenOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, symbol.Mainnet.Name, out.Network)
	kp, err := symbol.KeyPairFromPrivateKey(out.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey().String(), out.PublicKey)
	addr, err := symbol.ParseNetworkAddress(&symbol.Mainnet, out.Address)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(&symbol.Mainnet), addr)
}

func TestStatus(t *testing.T) {
	node := mocknode.New(t, &symbol.Testnet)
	client, err := ledgerclient.New(node.URL(), &symbol.Testnet)
	require.NoError(t, err)
	kp, err := symbol.GenerateKeyPair(bytes.NewReader(bytes.Repeat([]byte{0x07}, 32)))
	require.NoError(t, err)
	addr := kp.Address(&symbol.Testnet)
	node.SetBalance(addr, 1_250_000)

	var buf bytes.Buffer
	require.NoError(t, status(t.Context(), &buf, client, node.URL(), addr.String()))
	var out statusOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, out.Connected)
	assert.Equal(t, uint64(1000), out.Height)
	assert.Equal(t, "1.250000", out.Balance)
	assert.Empty(t, out.Error)
}

func TestStatusOffline(t *testing.T) {
	node := mocknode.New(t, &symbol.Testnet)
	node.SetOffline(true)
	client, err := ledgerclient.New(node.URL(), &symbol.Testnet)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = status(t.Context(), &buf, client, node.URL(), "")
	require.ErrorIs(t, err, ledgerclient.ErrNodeUnreachable)
	var out statusOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.False(t, out.Connected)
	assert.NotEmpty(t, out.Error)
}

func TestListPlugins(t *testing.T) {
	shouldExit, output := listPlugins("badger", "sqlite")
	assert.False(t, shouldExit)
	assert.Empty(t, output)

	shouldExit, output = listPlugins("list", "list")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available blob plugins:\n  badger: ")
	assert.Contains(t, output, "Available metadata plugins:\n")
	assert.Contains(t, output, "  sqlite: ")

	all := listAllPlugins()
	assert.Contains(t, all, "Blob Storage Plugins:")
	assert.Contains(t, all, "  postgres: ")
	assert.Contains(t, all, "  mysql: ")
}

func TestRootCommandFlags(t *testing.T) {
	root, err := newRootCommand()
	require.NoError(t, err)

	flags := root.PersistentFlags()
	for _, name := range []string{
		"debug",
		"config",
		"blob",
		"metadata",
		"metadata-sqlite-data-dir",
		"metadata-sqlite-busy-timeout",
		"metadata-postgres-dsn",
		"metadata-mysql-max-open-conns",
		"blob-badger-data-dir",
	} {
		assert.NotNil(t, flags.Lookup(name), "flag %s", name)
	}

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(
		t,
		names,
		[]string{"serve", "load", "keygen", "status", "reconcile", "list", "version"},
	)
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root, err := newRootCommand()
	require.NoError(t, err)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), programName+" ")
	assert.Contains(t, buf.String(), "commit")
}
