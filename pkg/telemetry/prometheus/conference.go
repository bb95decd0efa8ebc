// Copyright 2026 Peerconf, Inc.
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

package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const peerconfNamespace = "peerconf"

var (
	initOnce sync.Once

	promSessionsInitiated *prometheus.CounterVec
	promP2PSwitches       *prometheus.CounterVec
	promICERestarts       prometheus.Counter
	promConferenceFailed  *prometheus.CounterVec
	promParticipantTotal  prometheus.Gauge
)

// Init registers the conference metrics. Safe to call more than once.
func Init(clientID string) {
	initOnce.Do(func() {
		constLabels := prometheus.Labels{"client_id": clientID}

		promSessionsInitiated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   peerconfNamespace,
			Subsystem:   "session",
			Name:        "initiated_total",
			ConstLabels: constLabels,
		}, []string{"kind", "direction"})
		promP2PSwitches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   peerconfNamespace,
			Subsystem:   "session",
			Name:        "p2p_switch_total",
			ConstLabels: constLabels,
		}, []string{"direction"})
		promICERestarts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   peerconfNamespace,
			Subsystem:   "session",
			Name:        "ice_restart_total",
			ConstLabels: constLabels,
		})
		promConferenceFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   peerconfNamespace,
			Subsystem:   "conference",
			Name:        "failed_total",
			ConstLabels: constLabels,
		}, []string{"reason"})
		promParticipantTotal = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   peerconfNamespace,
			Subsystem:   "conference",
			Name:        "participant_total",
			ConstLabels: constLabels,
		})

		prometheus.MustRegister(promSessionsInitiated)
		prometheus.MustRegister(promP2PSwitches)
		prometheus.MustRegister(promICERestarts)
		prometheus.MustRegister(promConferenceFailed)
		prometheus.MustRegister(promParticipantTotal)
	})
}

func SessionInitiated(kind string, incoming bool) {
	if promSessionsInitiated == nil {
		return
	}
	direction := "outgoing"
	if incoming {
		direction = "incoming"
	}
	promSessionsInitiated.WithLabelValues(kind, direction).Inc()
}

func P2PSwitch(entered bool) {
	if promP2PSwitches == nil {
		return
	}
	direction := "leave"
	if entered {
		direction = "enter"
	}
	promP2PSwitches.WithLabelValues(direction).Inc()
}

func ICERestart() {
	if promICERestarts == nil {
		return
	}
	promICERestarts.Inc()
}

func ConferenceFailed(reason string) {
	if promConferenceFailed == nil {
		return
	}
	promConferenceFailed.WithLabelValues(reason).Inc()
}

func AddParticipant() {
	if promParticipantTotal == nil {
		return
	}
	promParticipantTotal.Inc()
}

func SubParticipant() {
	if promParticipantTotal == nil {
		return
	}
	promParticipantTotal.Dec()
}
