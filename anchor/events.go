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

package anchor

import (
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/event"
	"github.com/blinklabs-io/hometto/symbol"
)

const (
	AnchoredEventType     event.EventType = "anchor.anchored"
	AnchorFailedEventType event.EventType = "anchor.failed"
)

// AnchoredEvent reports a transaction recorded on an event. Signer and
// Recipient are the accounts the transaction touched.
type AnchoredEvent struct {
	Kind      models.AnchorKind
	EventID   uint
	Hash      string
	Signer    symbol.Address
	Recipient symbol.Address
}

type AnchorFailedEvent struct {
	Kind    models.AnchorKind
	EventID uint
	Reason  string
	Err     error
}
