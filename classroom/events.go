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

package classroom

import (
	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/event"
)

const (
	PraiseSentEventType           event.EventType = "classroom.praise_sent"
	CooperationCompletedEventType event.EventType = "classroom.cooperation_completed"
)

type PraiseSentEvent struct {
	Praise models.Praise
}

type CooperationCompletedEvent struct {
	Cooperation models.Cooperation
}
