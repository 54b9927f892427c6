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
	"context"
	"errors"

	"github.com/blinklabs-io/hometto/database"
	"github.com/blinklabs-io/hometto/ledgerclient"
	"github.com/blinklabs-io/hometto/symbol"
)

// Failure reasons used in logs and metrics
const (
	ReasonStorageUnavailable = "storage_unavailable"
	ReasonMissingKeyMaterial = "missing_key_material"
	ReasonInvalidRecipient   = "invalid_recipient"
	ReasonNodeRejected       = "node_rejected"
	ReasonNodeUnreachable    = "node_unreachable"
	ReasonTimeout            = "timeout"
	ReasonUnknown            = "unknown"
)

// Classify maps an anchoring error to a stable reason label. It returns an
// empty string for a nil error.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, database.ErrStorageUnavailable):
		return ReasonStorageUnavailable
	case errors.Is(err, symbol.ErrMissingKeyMaterial):
		return ReasonMissingKeyMaterial
	case errors.Is(err, symbol.ErrInvalidRecipient),
		errors.Is(err, symbol.ErrInvalidAddress):
		return ReasonInvalidRecipient
	case errors.Is(err, ledgerclient.ErrNodeRejected):
		return ReasonNodeRejected
	case errors.Is(err, ledgerclient.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ledgerclient.ErrNodeUnreachable):
		return ReasonNodeUnreachable
	default:
		return ReasonUnknown
	}
}
