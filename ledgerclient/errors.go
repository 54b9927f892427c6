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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
)

var (
	// ErrNodeRejected marks a structured error response from the node. The
	// transaction must be rebuilt before trying again.
	ErrNodeRejected = errors.New("node rejected request")
	// ErrNodeUnreachable covers transport failures and error responses
	// without a structured body
	ErrNodeUnreachable = errors.New("node unreachable")
	ErrTimeout         = errors.New("node request timed out")
	// ErrSequenceConsumed is yielded when a history sequence is ranged over
	// more than once
	ErrSequenceConsumed = errors.New("history sequence already consumed")
)

// Symbol REST error codes
const (
	CodeResourceNotFound = "ResourceNotFound"
	CodeInvalidArgument  = "InvalidArgument"
)

// NodeRejectedError carries the structured error body returned by the node
type NodeRejectedError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *NodeRejectedError) Error() string {
	return fmt.Sprintf(
		"node rejected request (status %d): %s: %s",
		e.StatusCode,
		e.Code,
		e.Message,
	)
}

func (e *NodeRejectedError) Is(target error) bool {
	return target == ErrNodeRejected
}

// IsNotFound reports whether err is a ResourceNotFound response
func IsNotFound(err error) bool {
	var rejected *NodeRejectedError
	return errors.As(err, &rejected) && rejected.Code == CodeResourceNotFound
}

func parseNodeError(statusCode int, body []byte) *NodeRejectedError {
	var tmp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &tmp); err != nil || tmp.Code == "" {
		return nil
	}
	return &NodeRejectedError{
		StatusCode: statusCode,
		Code:       tmp.Code,
		Message:    tmp.Message,
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNodeRejected):
		return "rejected"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "unreachable"
	}
}

// restyLogger routes resty's internal messages to slog
type restyLogger struct {
	logger *slog.Logger
}

func (l *restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
