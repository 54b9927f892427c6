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

package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnStringFromOptions(t *testing.T) {
	m, err := NewWithOptions(
		WithHost("db.local"),
		WithPort(3307),
		WithUser("app"),
		WithPassword("secret"),
		WithDatabase("classroom"),
	)
	require.NoError(t, err)
	dsn, dbName := m.connString()
	assert.Equal(t, "classroom", dbName)
	assert.Contains(t, dsn, "app:secret@tcp(db.local:3307)/classroom")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestConnStringExplicitDSN(t *testing.T) {
	m, err := NewWithOptions(
		WithDSN("app:pw@tcp(10.0.0.5:3306)/school?parseTime=true"),
	)
	require.NoError(t, err)
	dsn, dbName := m.connString()
	assert.Equal(t, "app:pw@tcp(10.0.0.5:3306)/school?parseTime=true", dsn)
	assert.Equal(t, "school", dbName)
}

func TestDSNHelpers(t *testing.T) {
	testDefs := []struct {
		dsn      string
		database string
		stripped string
		ok       bool
	}{
		{
			dsn:      "u:p@tcp(h:3306)/db?parseTime=true",
			database: "db",
			stripped: "u:p@tcp(h:3306)/?parseTime=true",
			ok:       true,
		},
		{
			dsn:      "u:p@tcp(h:3306)/db",
			database: "db",
			stripped: "u:p@tcp(h:3306)/",
			ok:       true,
		},
		{
			dsn:      "u:p@tcp(h:3306)/",
			database: "",
			stripped: "u:p@tcp(h:3306)/",
			ok:       false,
		},
	}
	for _, testDef := range testDefs {
		database, ok := parseMysqlDatabaseFromDSN(testDef.dsn)
		assert.Equal(t, testDef.ok, ok, testDef.dsn)
		assert.Equal(t, testDef.database, database, testDef.dsn)
		stripped, ok := stripDatabaseFromDSN(testDef.dsn)
		assert.True(t, ok)
		assert.Equal(t, testDef.stripped, stripped)
	}
}

func TestNewWithOptionsDefaults(t *testing.T) {
	m, err := NewWithOptions()
	require.NoError(t, err)
	assert.Equal(t, uint(3306), m.port)
	assert.Equal(t, "hometto", m.database)
	assert.NoError(t, m.Close())
}
