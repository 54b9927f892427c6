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
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/symbol"
)

// DefaultMaxMessageSize leaves room for the plain message marker
const DefaultMaxMessageSize = symbol.MaxMessageSize - 1

var ErrUnsupportedEvent = errors.New("unsupported event type")

// EncodeMessage renders the ledger message of an event and truncates it to
// maxBytes without splitting a UTF-8 sequence. A non-positive maxBytes selects
// DefaultMaxMessageSize.
func EncodeMessage(evt any, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMessageSize
	}
	var sb strings.Builder
	switch e := evt.(type) {
	case *models.Praise:
		fmt.Fprintf(
			&sb,
			"praise: stamp=%s amount=%d from=%d to=%d",
			e.StampType,
			e.TokenAmount,
			e.FromUserID,
			e.ToUserID,
		)
		if e.Message != "" {
			sb.WriteString(" msg=")
			sb.WriteString(e.Message)
		}
	case *models.Cooperation:
		fmt.Fprintf(
			&sb,
			"cooperation: title=%s participants=%d id=%d",
			e.Title,
			participantCount(e),
			e.ID,
		)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedEvent, evt)
	}
	return []byte(truncateUTF8(sb.String(), maxBytes)), nil
}

func participantCount(c *models.Cooperation) int {
	if len(c.Participants) > 0 {
		return len(c.Participants)
	}
	return c.RequiredApprovals
}

// truncateUTF8 cuts s to at most maxBytes on a rune boundary
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
