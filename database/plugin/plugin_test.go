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

package plugin_test

import (
	"testing"

	"github.com/blinklabs-io/hometto/database/plugin"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionDests struct {
	dataDir   string
	cacheSize uint64
	workers   int
	gc        bool
}

func registerOptionPlugin(t *testing.T) (string, *optionDests) {
	t.Helper()
	dests := &optionDests{}
	name := "options-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               name,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{
				Name:         "data-dir",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: ".hometto",
				Dest:         &dests.dataDir,
			},
			{
				Name:         "cache-size",
				Type:         plugin.PluginOptionTypeUint,
				DefaultValue: uint64(1024),
				Dest:         &dests.cacheSize,
			},
			{
				Name:         "workers",
				Type:         plugin.PluginOptionTypeInt,
				DefaultValue: 2,
				Dest:         &dests.workers,
			},
			{
				Name:         "gc",
				Type:         plugin.PluginOptionTypeBool,
				DefaultValue: true,
				Dest:         &dests.gc,
			},
		},
	})
	return name, dests
}

func TestSetPluginOption(t *testing.T) {
	name, dests := registerOptionPlugin(t)

	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", ""),
	)
	assert.Empty(t, dests.dataDir)

	// Wrong type
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", 123),
	)

	// Unknown options are ignored
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "does-not-exist", "x"),
	)

	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "cache-size", 42),
	)
	assert.Equal(t, uint64(42), dests.cacheSize)
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "cache-size", -1),
	)

	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "gc", false),
	)
	assert.False(t, dests.gc)

	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "nonexistent", "data-dir", "x"),
	)
}

func TestProcessEnvVars(t *testing.T) {
	name, dests := registerOptionPlugin(t)
	t.Setenv("HOMETTO_BLOB_"+envName(name)+"_DATA_DIR", "/tmp/blob")
	t.Setenv("HOMETTO_BLOB_"+envName(name)+"_WORKERS", "8")
	t.Setenv("HOMETTO_BLOB_"+envName(name)+"_GC", "false")

	require.NoError(t, plugin.ProcessEnvVars("hometto"))
	assert.Equal(t, "/tmp/blob", dests.dataDir)
	assert.Equal(t, 8, dests.workers)
	assert.False(t, dests.gc)
}

func TestProcessEnvVarsInvalidValue(t *testing.T) {
	name, _ := registerOptionPlugin(t)
	t.Setenv("HOMETTO_BLOB_"+envName(name)+"_WORKERS", "many")

	require.Error(t, plugin.ProcessEnvVars("hometto"))
}

func TestProcessConfig(t *testing.T) {
	name, dests := registerOptionPlugin(t)
	err := plugin.ProcessConfig(map[string]map[string]map[string]any{
		"blob": {
			name: {
				"data-dir":   "/var/lib/hometto",
				"cache-size": 2048,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/hometto", dests.dataDir)
	assert.Equal(t, uint64(2048), dests.cacheSize)
}

func TestPopulateCmdlineOptions(t *testing.T) {
	name, dests := registerOptionPlugin(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))

	require.NoError(
		t,
		fs.Parse([]string{"--blob-" + name + "-data-dir=/srv/blob"}),
	)
	assert.Equal(t, "/srv/blob", dests.dataDir)
	// Unset flags take their declared default
	assert.Equal(t, uint64(1024), dests.cacheSize)
	assert.True(t, dests.gc)
}

func TestStartPluginNotFound(t *testing.T) {
	_, err := plugin.StartPlugin(plugin.PluginTypeMetadata, "missing-"+t.Name())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func envName(pluginName string) string {
	ret := make([]rune, 0, len(pluginName))
	for _, r := range pluginName {
		switch {
		case r == '-':
			ret = append(ret, '_')
		case r >= 'a' && r <= 'z':
			ret = append(ret, r-'a'+'A')
		default:
			ret = append(ret, r)
		}
	}
	return string(ret)
}
