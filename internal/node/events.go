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
	"github.com/blinklabs-io/hometto/anchor"
	"github.com/blinklabs-io/hometto/event"
)

// watchAnchors refreshes the ledger view of accounts touched by a newly
// anchored event. Cached balance and history of the signer and the recipient
// would otherwise hide the transaction until their TTL runs out.
func (n *Node) watchAnchors() {
	n.eventBus.SubscribeFunc(
		anchor.AnchoredEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(anchor.AnchoredEvent)
			if !ok {
				return
			}
			n.ledger.Invalidate(data.Signer, data.Recipient)
			n.logger.Debug(
				"refreshed ledger view of anchored accounts",
				"component", "node",
				"kind", data.Kind,
				"event_id", data.EventID,
				"hash", data.Hash,
			)
		},
	)
}
