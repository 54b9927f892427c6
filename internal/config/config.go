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

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/hometto/database/plugin"
	"github.com/blinklabs-io/hometto/keyaccount"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "hometto.config"

// EnvPrefix prefixes every environment variable read by LoadConfig
const EnvPrefix = "hometto"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type tempConfig struct {
	Config   yaml.Node                 `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	Network              string        `yaml:"network"`
	NodeURL              string        `yaml:"nodeUrl"              split_words:"true"`
	DataDir              string        `yaml:"dataDir"              split_words:"true"`
	MetadataPlugin       string        `yaml:"metadataPlugin"       envconfig:"HOMETTO_DATABASE_METADATA_PLUGIN"`
	BlobPlugin           string        `yaml:"blobPlugin"           envconfig:"HOMETTO_DATABASE_BLOB_PLUGIN"`
	BindAddr             string        `yaml:"bindAddr"             split_words:"true"`
	KeySealer            string        `yaml:"keySealer"            split_words:"true"`
	CooperationRecipient string        `yaml:"cooperationRecipient" split_words:"true"`
	ShutdownTimeout      time.Duration `yaml:"shutdownTimeout"      split_words:"true"`
	LedgerTimeout        time.Duration `yaml:"ledgerTimeout"        split_words:"true"`
	CacheTTL             time.Duration `yaml:"cacheTtl"             envconfig:"CACHE_TTL"`
	DeadlineWindow       time.Duration `yaml:"deadlineWindow"       split_words:"true"`
	AnchorTimeout        time.Duration `yaml:"anchorTimeout"        split_words:"true"`
	ReconcileInterval    time.Duration `yaml:"reconcileInterval"    split_words:"true"`
	ReconcileMinAge      time.Duration `yaml:"reconcileMinAge"      split_words:"true"`
	LedgerRateLimit      float64       `yaml:"ledgerRateLimit"      split_words:"true"`
	TransactionFee       uint64        `yaml:"transactionFee"       split_words:"true"`
	LedgerRateBurst      int           `yaml:"ledgerRateBurst"      split_words:"true"`
	MaxHistoryPages      int           `yaml:"maxHistoryPages"      split_words:"true"`
	MaxMessageSize       int           `yaml:"maxMessageSize"       split_words:"true"`
	ReconcileMaxAttempts int           `yaml:"reconcileMaxAttempts" split_words:"true"`
	ApiPort              uint          `yaml:"apiPort"              split_words:"true"`
	MetricsPort          uint          `yaml:"metricsPort"          split_words:"true"`
	AnchorEnabled        bool          `yaml:"anchorEnabled"        split_words:"true"`
	ReconcileEnabled     bool          `yaml:"reconcileEnabled"     split_words:"true"`
	TracingEnabled       bool          `yaml:"tracingEnabled"       split_words:"true"`
	TracingStdout        bool          `yaml:"tracingStdout"        split_words:"true"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Network:              symbol.Testnet.Name,
		NodeURL:              "http://localhost:3000",
		DataDir:              ".hometto",
		MetadataPlugin:       DefaultMetadataPlugin,
		BlobPlugin:           DefaultBlobPlugin,
		BindAddr:             "0.0.0.0",
		KeySealer:            keyaccount.SealerPlain,
		ShutdownTimeout:      30 * time.Second,
		LedgerTimeout:        10 * time.Second,
		CacheTTL:             15 * time.Second,
		DeadlineWindow:       2 * time.Hour,
		AnchorTimeout:        30 * time.Second,
		ReconcileInterval:    time.Minute,
		ReconcileMinAge:      5 * time.Minute,
		LedgerRateBurst:      1,
		MaxHistoryPages:      100,
		MaxMessageSize:       symbol.MaxMessageSize - 1,
		ReconcileMaxAttempts: 5,
		ApiPort:              8080,
		MetricsPort:          12799,
		AnchorEnabled:        true,
		ReconcileEnabled:     true,
	}
}

// LoadConfig builds the configuration from the defaults, the YAML config
// file and then the environment. Without an explicit path the file is looked
// up in ~/.hometto/hometto.yaml and /etc/hometto/hometto.yaml.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".hometto", "hometto.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/hometto/hometto.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		if err := loadFile(configFile, cfg); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(EnvPrefix); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(configFile string, cfg *Config) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	// If config section exists, use it for main config. Decoding onto cfg
	// keeps the defaults of keys the file does not set.
	if tempCfg.Config.Kind != 0 {
		if err := tempCfg.Config.Decode(cfg); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Process plugin configurations
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			if name := pluginName(tempCfg.Database.Blob); name != "" {
				cfg.BlobPlugin = name
			}
			mergePluginConfig(pluginConfig, "blob", tempCfg.Database.Blob)
		}
		if tempCfg.Database.Metadata != nil {
			if name := pluginName(tempCfg.Database.Metadata); name != "" {
				cfg.MetadataPlugin = name
			}
			mergePluginConfig(pluginConfig, "metadata", tempCfg.Database.Metadata)
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// pluginName extracts and removes the plugin selector of a database section
func pluginName(section map[string]any) string {
	val, ok := section["plugin"]
	if !ok {
		return ""
	}
	name, ok := val.(string)
	if !ok {
		return ""
	}
	delete(section, "plugin")
	return name
}

func mergePluginConfig(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	section map[string]any,
) {
	typeConfig := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			typeConfig[k] = val
		case map[any]any:
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			typeConfig[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				pluginType,
				k,
				v,
			)
		}
	}
	// Merge with existing config instead of overwriting
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = typeConfig
	} else {
		maps.Copy(pluginConfig[pluginType], typeConfig)
	}
}

// Validate checks values that would otherwise fail late at startup
func (c *Config) Validate() error {
	network, err := symbol.NetworkByName(c.Network)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.NodeURL == "" {
		return fmt.Errorf("%w: nodeUrl is required", ErrInvalidConfig)
	}
	switch c.KeySealer {
	case keyaccount.SealerPlain, keyaccount.SealerSops:
	default:
		return fmt.Errorf(
			"%w: keySealer %q (must be %q or %q)",
			ErrInvalidConfig,
			c.KeySealer,
			keyaccount.SealerPlain,
			keyaccount.SealerSops,
		)
	}
	if c.MaxMessageSize <= 0 || c.MaxMessageSize >= symbol.MaxMessageSize {
		return fmt.Errorf(
			"%w: maxMessageSize must be between 1 and %d",
			ErrInvalidConfig,
			symbol.MaxMessageSize-1,
		)
	}
	if c.LedgerRateLimit < 0 {
		return fmt.Errorf("%w: ledgerRateLimit must not be negative", ErrInvalidConfig)
	}
	if c.CooperationRecipient != "" {
		if _, err := symbol.ParseNetworkAddress(network, c.CooperationRecipient); err != nil {
			return fmt.Errorf("%w: cooperationRecipient: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// SymbolNetwork returns the configured ledger network
func (c *Config) SymbolNetwork() *symbol.Network {
	network, err := symbol.NetworkByName(c.Network)
	if err != nil {
		return nil
	}
	return network
}
