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

package ledgerclient

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/hometto/symbol"
)

// Cache stores raw node responses for a short time. Any error from Get is
// treated as a miss. The badger blob store satisfies this interface.
type Cache interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, val []byte, ttl time.Duration) error
}

func (c *Client) cacheGet(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	val, err := c.cache.Get([]byte(key))
	if err != nil || val == nil {
		return nil, false
	}
	c.metrics.cacheHit.Inc()
	return val, true
}

func (c *Client) cacheSet(key string, val []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set([]byte(key), val, c.cacheTTL); err != nil {
		c.logger.Warn(
			"failed to cache node response",
			"key", key,
			"error", err,
		)
	}
}

// Invalidate makes cached balance and history responses of the given
// addresses unreachable. The keys of an address carry a generation that is
// bumped here, and entries of older generations expire with their TTL.
func (c *Client) Invalidate(addrs ...symbol.Address) {
	for _, addr := range addrs {
		gen, _ := c.cacheGens.LoadOrStore(addr, new(atomic.Uint64))
		gen.(*atomic.Uint64).Add(1)
	}
}

func (c *Client) addressCacheKey(kind string, addr symbol.Address) string {
	var gen uint64
	if v, ok := c.cacheGens.Load(addr); ok {
		gen = v.(*atomic.Uint64).Load()
	}
	return fmt.Sprintf("ledger:%s:%s:%d", kind, addr.String(), gen)
}
