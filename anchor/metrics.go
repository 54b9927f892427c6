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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type anchorMetrics struct {
	attempts      *prometheus.CounterVec
	results       *prometheus.CounterVec
	inFlight      prometheus.Gauge
	reconcileRuns prometheus.Counter
}

func (m *anchorMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.attempts = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hometto_anchor_attempts_total",
			Help: "anchoring pipeline runs by event kind",
		},
		[]string{"kind"},
	)
	m.results = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hometto_anchor_results_total",
			Help: "anchoring pipeline results by event kind, result and failure reason",
		},
		[]string{"kind", "result", "reason"},
	)
	m.inFlight = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "hometto_anchor_in_flight",
		Help: "dispatched anchoring pipelines that have not finished",
	})
	m.reconcileRuns = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "hometto_anchor_reconcile_runs_total",
		Help: "reconciler passes over unanchored events",
	})
}
