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

import "errors"

var (
	ErrConferenceNameInvalid  = errors.New("conference name must be lowercase")
	ErrConferenceLeft         = errors.New("conference has already been left")
	ErrTrackAlreadyExists     = errors.New("a local track of this video type already exists")
	ErrIncompatibleVideoType  = errors.New("replacement track has a different video type")
	ErrTrackDisposed          = errors.New("track has been disposed")
	ErrTrackNotFound          = errors.New("track is not registered with this conference")
	ErrSourceNameReassigned   = errors.New("track source name can only be assigned once")
	ErrNoActiveSession        = errors.New("no active transport session")
	ErrSessionGone            = errors.New("remote side has already terminated the session")
	ErrTieBreakIdentical      = errors.New("local and remote ids compare equal in initiator tie-break")
	ErrInvalidMemberID        = errors.New("member id must not be empty")
)

// FailureReason is the machine-readable kind carried by a ConferenceFailed
// event. Reasons marked fatal terminate the conference; the coordinator emits
// at most one fatal failure and then runs best-effort local cleanup.
type FailureReason string

const (
	FailureReasonICEFailed            FailureReason = "ice-failed"
	FailureReasonOfferAnswerFailed    FailureReason = "offer-answer-failed"
	FailureReasonIncompatibleVersions FailureReason = "incompatible-server-versions"
	FailureReasonConferenceDestroyed  FailureReason = "conference-destroyed"
	FailureReasonAuthenticationNeeded FailureReason = "authentication-required"
	FailureReasonKicked               FailureReason = "kicked"
)

func (r FailureReason) Fatal() bool {
	switch r {
	case FailureReasonICEFailed,
		FailureReasonIncompatibleVersions,
		FailureReasonConferenceDestroyed,
		FailureReasonAuthenticationNeeded,
		FailureReasonKicked:
		return true
	}
	return false
}

// RejectReason is sent back to the peer when an inbound session offer is
// refused at the protocol layer. Never silently dropped.
type RejectReason string

const (
	RejectReasonIncompatibleMode RejectReason = "incompatible-mode"
	RejectReasonP2PDisabled      RejectReason = "p2p-disabled"
	RejectReasonDuplicateSession RejectReason = "duplicate-session"
	RejectReasonNotAllowed       RejectReason = "not-allowed"
	RejectReasonUnexpectedSender RejectReason = "unexpected-sender"
)
