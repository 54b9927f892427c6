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

package mocknode_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/hometto/internal/test/mocknode"
	"github.com/blinklabs-io/hometto/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseReleasesHangingSubmit(t *testing.T) {
	node := mocknode.New(t, &symbol.Testnet)
	node.SetSubmitMode(mocknode.SubmitHang)

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		node.URL()+"/transactions",
		strings.NewReader(`{"payload":"00"}`),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err == nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.Equal(t, 1, node.Requests("PUT /transactions"))

	closed := make(chan struct{})
	go func() {
		node.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("node did not shut down with a hanging submission")
	}
	// Closing again is a no-op
	node.Close()
}

func TestSubmitHangWithOpenClient(t *testing.T) {
	node := mocknode.New(t, &symbol.Testnet)
	node.SetSubmitMode(mocknode.SubmitHang)

	errCh := make(chan error, 1)
	go func() {
		req, err := http.NewRequest(
			http.MethodPut,
			node.URL()+"/transactions",
			strings.NewReader(`{"payload":"00"}`),
		)
		if err != nil {
			errCh <- err
			return
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
		}
		errCh <- err
	}()
	require.Eventually(t, func() bool {
		return node.Requests("PUT /transactions") == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Closing the node must not wait on a client that never gives up
	done := make(chan struct{})
	go func() {
		node.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("node did not shut down with a connected client")
	}
	<-errCh
}
