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

package conference

import (
	"github.com/peerconf/peerconf/pkg/logger"
)

// policyInput is a snapshot of everything the peer-to-peer admission decision
// depends on. Proactive evaluation on membership/property changes and inbound
// direct-offer validation consult the same predicate so the two paths cannot
// drift.
type policyInput struct {
	// non-hidden remote members currently present
	visiblePeers int
	// the sole peer when visiblePeers == 1
	peerID    string
	peerIsBot bool

	visitorCount  int
	transcribing  bool
	disabled      bool
	browserCapable bool
}

type admissionPolicy struct {
	log logger.Logger
}

func newAdmissionPolicy(log logger.Logger) *admissionPolicy {
	return &admissionPolicy{log: log.WithComponent("p2p-policy")}
}

// shouldBeInP2P decides whether the conference should be running its media
// over the direct session right now.
func (p *admissionPolicy) shouldBeInP2P(in policyInput) bool {
	if in.disabled || !in.browserCapable {
		return false
	}
	if in.visiblePeers != 1 {
		return false
	}
	if in.peerIsBot {
		return false
	}
	if in.visitorCount > 0 {
		return false
	}
	if in.transcribing {
		return false
	}
	return true
}

// isInitiator resolves the tie-break for who sends the direct-session invite:
// the side with the smaller id initiates. Equal ids violate the id-assignment
// invariant; this is logged and treated as "do not initiate" rather than
// crashing the coordinator.
func (p *admissionPolicy) isInitiator(localID, peerID string) (bool, error) {
	if localID == peerID {
		p.log.Errorw("tie-break ids compare equal", ErrTieBreakIdentical,
			"localID", localID,
			"peerID", peerID)
		return false, ErrTieBreakIdentical
	}
	return localID < peerID, nil
}
