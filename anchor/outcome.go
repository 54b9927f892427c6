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
	"fmt"
	"time"

	"github.com/blinklabs-io/hometto/database/models"
)

// State is the position of an event in the anchoring lifecycle
type State int

const (
	// StateCreated means the event is committed and has no ledger reference
	StateCreated State = iota
	// StateAnchoring means a pipeline is building or submitting its transaction
	StateAnchoring
	// StateAnchored means the event carries a ledger reference
	StateAnchored
	// StateAnchorFailed means the last pipeline run gave up. The event keeps
	// no ledger reference and may be picked up by the reconciler.
	StateAnchorFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAnchoring:
		return "anchoring"
	case StateAnchored:
		return "anchored"
	case StateAnchorFailed:
		return "anchor_failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the result of one anchoring pipeline run. Err is informational:
// callers never need to act on it.
type Outcome struct {
	Kind     models.AnchorKind
	EventID  uint
	State    State
	Hash     string
	Reason   string
	Err      error
	Duration time.Duration
}

// Anchored reports whether the event ended up with a ledger reference
func (o Outcome) Anchored() bool {
	return o.State == StateAnchored
}
