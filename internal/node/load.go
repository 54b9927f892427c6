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

package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/internal/config"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRoster = errors.New("invalid roster")

// Roster is a class list to import
type Roster struct {
	Users []RosterUser `yaml:"users"`
}

type RosterUser struct {
	DisplayName string `yaml:"displayName"`
	Role        string `yaml:"role"`
}

// LoadRoster reads a roster YAML file. Users without a role are students.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	roster := &Roster{}
	if err := yaml.Unmarshal(data, roster); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoster, err)
	}
	for i := range roster.Users {
		user := &roster.Users[i]
		user.DisplayName = strings.TrimSpace(user.DisplayName)
		if user.DisplayName == "" {
			return nil, fmt.Errorf("%w: entry %d has no display name", ErrInvalidRoster, i)
		}
		if user.Role == "" {
			user.Role = models.RoleStudent
		}
		if !models.ValidRole(user.Role) {
			return nil, fmt.Errorf("%w: entry %d has unknown role %q", ErrInvalidRoster, i, user.Role)
		}
	}
	return roster, nil
}

// ImportRoster creates a user for every roster entry and provisions its
// ledger account
func (n *Node) ImportRoster(
	ctx context.Context,
	roster *Roster,
) ([]models.User, error) {
	ret := make([]models.User, 0, len(roster.Users))
	for _, entry := range roster.Users {
		user := models.User{
			DisplayName: entry.DisplayName,
			Role:        entry.Role,
		}
		if err := n.db.CreateUser(&user); err != nil {
			return ret, fmt.Errorf("create user %q: %w", entry.DisplayName, err)
		}
		account, err := n.accounts.EnsureAccount(ctx, user.ID)
		if err != nil {
			return ret, fmt.Errorf("provision ledger account for user %d: %w", user.ID, err)
		}
		n.logger.Info(
			"imported user",
			"user_id", user.ID,
			"display_name", user.DisplayName,
			"address", account.Address.String(),
			"component", "node",
		)
		ret = append(ret, user)
	}
	return ret, nil
}

// Load imports a roster file into the configured database
func Load(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	rosterPath string,
) error {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	roster, err := LoadRoster(rosterPath)
	if err != nil {
		return err
	}
	n, err := NewOffline(cfg, logger)
	if err != nil {
		return err
	}
	users, importErr := n.ImportRoster(ctx, roster)
	//nolint:contextcheck
	if err := n.Stop(context.Background()); err != nil {
		importErr = errors.Join(importErr, err)
	}
	if importErr != nil {
		return importErr
	}
	logger.Info(
		fmt.Sprintf("imported %d users from %s", len(users), rosterPath),
		"component", "node",
	)
	return nil
}
