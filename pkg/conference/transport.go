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
	"context"

	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"
)

type SessionKind string

const (
	SessionKindRelay SessionKind = "jvb"
	SessionKindP2P   SessionKind = "p2p"
)

// TerminationReason is the cooperative reason sent when tearing a session
// down. ReasonSuccess marks an orderly teardown; a concurrent termination
// from the remote side is benign in that case.
type TerminationReason string

const (
	ReasonSuccess           TerminationReason = "success"
	ReasonConnectivityError TerminationReason = "connectivity-error"
	ReasonDecline           TerminationReason = "decline"
	ReasonBusy              TerminationReason = "busy"
	ReasonGone              TerminationReason = "gone"
	ReasonSecurityError     TerminationReason = "security-error"
)

// SessionConnectivity are the ICE-level notifications a transport session
// delivers back into the coordinator.
type SessionConnectivity int

const (
	ConnectivityEstablished SessionConnectivity = iota
	ConnectivityInterrupted
	ConnectivityRestored
	ConnectivityFailed
)

func (c SessionConnectivity) String() string {
	switch c {
	case ConnectivityEstablished:
		return "established"
	case ConnectivityInterrupted:
		return "interrupted"
	case ConnectivityRestored:
		return "restored"
	case ConnectivityFailed:
		return "failed"
	}
	return "unknown"
}

// TransportSession is one negotiated media connection, relay or direct. ICE,
// SDP and codec mechanics live behind this interface; the coordinator only
// drives lifecycle and track membership.
type TransportSession interface {
	ID() string
	IsP2P() bool

	// responder path: accept a received offer with the given local tracks
	// attached
	AcceptOffer(ctx context.Context, offer webrtc.SessionDescription, tracks []*LocalTrack) error
	// initiator path
	Invite(ctx context.Context, tracks []*LocalTrack) error

	AddTracks(ctx context.Context, tracks []*LocalTrack) error
	RemoveTrack(ctx context.Context, track *LocalTrack) error
	ReplaceTrack(ctx context.Context, oldTrack, newTrack *LocalTrack) error

	// drop a departed participant's track from the session's view; a no-op
	// renegotiation-wise when the server rewrites sources
	RemoveRemoteTrack(ctx context.Context, track *RemoteTrack) error

	// suspend or resume media flow without tearing down signaling state;
	// used on the relay session while a direct session is active
	SetMediaTransferActive(ctx context.Context, active bool) error

	AddRemoteCandidates(ctx context.Context, candidates []webrtc.ICECandidateInit) error
	RestartICE(ctx context.Context) error

	Terminate(ctx context.Context, reason TerminationReason, description string, sendSignal bool) error
}

// SessionFactory creates outbound transport sessions. Only the direct
// session is ever initiated locally; the relay session always arrives as an
// incoming call from the focus.
type SessionFactory interface {
	CreateSession(ctx context.Context, kind SessionKind, remoteID string) (TransportSession, error)
}

// NegotiationMode tags an inbound offer with the SDP plan the sender used.
type NegotiationMode string

const (
	NegotiationModeUnified NegotiationMode = "unified"
	NegotiationModePlanB   NegotiationMode = "plan-b"
)

type SessionState int

const (
	SessionStateNone SessionState = iota
	SessionStatePending
	SessionStateEstablished
	SessionStateInterrupted
	SessionStateTerminated
)

func (s SessionState) String() string {
	switch s {
	case SessionStateNone:
		return "none"
	case SessionStatePending:
		return "pending"
	case SessionStateEstablished:
		return "established"
	case SessionStateInterrupted:
		return "interrupted"
	case SessionStateTerminated:
		return "terminated"
	}
	return "unknown"
}

// sessionSlot tracks one transport session and its negotiated state. The
// coordinator holds one slot per kind; a slot is nil while no session of that
// kind exists.
type sessionSlot struct {
	session   TransportSession
	state     SessionState
	remoteID  string
	initiator bool
}

func (s *sessionSlot) alive() bool {
	return s != nil && s.session != nil && s.state != SessionStateTerminated
}

// isBenignTerminationError reports whether a failure of a mutating session
// call can be ignored because the remote side terminated cooperatively first.
func isBenignTerminationError(err error, reason TerminationReason) bool {
	return reason == ReasonSuccess && errors.Is(err, ErrSessionGone)
}
