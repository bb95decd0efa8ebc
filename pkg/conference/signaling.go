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
	"time"

	"github.com/pion/webrtc/v3"
)

// SignalingChannel is the outbound command surface of the presence/signaling
// collaborator (a multi-user-chat abstraction). Inbound notifications are
// delivered by calling the On* methods of the Conference.
type SignalingChannel interface {
	Join(ctx context.Context, room string) error
	Leave(ctx context.Context) error

	SendPresenceUpdate(ctx context.Context, values map[string]string) error
	SetPresenceValue(ctx context.Context, key, value string) error
	RemovePresenceValue(ctx context.Context, key string) error

	// to == "" broadcasts
	SendMessage(ctx context.Context, to string, payload []byte) error

	SetSubject(ctx context.Context, subject string) error
	SetAffiliation(ctx context.Context, id string, moderator bool) error
	Kick(ctx context.Context, id, reason string) error
	MuteParticipant(ctx context.Context, id string, mediaType MediaType) error
}

// CapabilityResolver answers asynchronous capability queries for a member's
// full signaling address.
type CapabilityResolver interface {
	QueryCapabilities(ctx context.Context, fullID string) ([]string, error)
}

// QualityController applies bandwidth and quality shaping to the active
// transport session.
type QualityController interface {
	SetReceiverVideoConstraint(session TransportSession, maxFrameHeight int) error
	SetSenderVideoConstraint(session TransportSession, maxFrameHeight int) error
	SetLastN(session TransportSession, lastN int) error
}

// StatsCollector is started against a session once its offer is accepted and
// stopped when the session goes away.
type StatsCollector interface {
	Start(session TransportSession)
	Stop(session TransportSession)
}

// IncomingCall is an incoming-call notification: a freshly allocated session
// handle plus the remote offer.
type IncomingCall struct {
	Session   TransportSession
	Offer     webrtc.SessionDescription
	From      string
	Mode      NegotiationMode
	Timestamp time.Time
}
