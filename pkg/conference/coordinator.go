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

	"github.com/hashicorp/go-version"
	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"

	"github.com/peerconf/peerconf/pkg/telemetry/prometheus"
)

// Inbound notification surface. The signaling channel and the transport
// sessions call these methods; each handler validates, mutates conference
// state under the lock and emits events outside of it.

func (c *Conference) OnMemberJoined(info MemberInfo) {
	if c.left.IsBroken() {
		return
	}

	p, created := c.registry.upsertOnJoin(info)
	if !created {
		return
	}
	prometheus.AddParticipant()
	c.log.Infow("member joined", "memberID", info.ID, "hidden", info.Hidden)

	// the focus is expected to call us in once a second participant is there
	c.lock.Lock()
	needSITimer := !c.jvb.alive() && !c.siTimeoutFired
	c.lock.Unlock()
	if needSITimer {
		c.tasks.Schedule(taskSITimeout, c.conf.SessionInitiateTimeout, c.onSessionInitiateTimeout)
	}

	c.events.Emit(UserJoined{Participant: p})

	if len(info.Features) == 0 && info.FullID != "" && c.params.Capabilities != nil {
		go c.queryCapabilities(p)
	}
	c.recomputeDTMFSupport()
	c.maybeUpdateP2P(context.Background(), false)
}

func (c *Conference) OnMemberLeft(id, reason string) {
	if c.left.IsBroken() {
		return
	}

	p := c.registry.removeOnLeave(id)
	if p == nil {
		return
	}
	prometheus.SubParticipant()
	c.log.Infow("member left", "memberID", id, "reason", reason)

	removed := c.tracks.removeRemotesOf(id)
	c.dropRemoteTracksFromSessions(context.Background(), removed)
	for _, t := range removed {
		if c.isVisibleRemoteTrack(t) {
			c.events.Emit(TrackRemoved{Track: t})
		}
	}

	c.events.Emit(UserLeft{Participant: p, Reason: reason})

	c.recomputeDTMFSupport()
	c.maybeUpdateP2P(context.Background(), true)
}

// dropRemoteTracksFromSessions asks the owning session to detach a departed
// member's tracks. Skipped when the server rewrites sources itself.
func (c *Conference) dropRemoteTracksFromSessions(ctx context.Context, tracks []*RemoteTrack) {
	c.lock.Lock()
	rewriting := c.props.sourceRewriting
	jvb := c.jvb
	p2p := c.p2p
	c.lock.Unlock()
	if rewriting {
		return
	}

	for _, t := range tracks {
		slot := jvb
		if t.IsP2P() {
			slot = p2p
		}
		if !slot.alive() {
			continue
		}
		if err := slot.session.RemoveRemoteTrack(ctx, t); err != nil {
			c.log.Warnw("could not drop departed member's track", err,
				"ownerID", t.OwnerID(), "sourceName", t.SourceName())
		}
	}
}

// OnIncomingCall handles a session-initiate. Offers from the focus become the
// relay session; offers from the sole remote peer may become the direct
// session. Refused offers are always answered with an explicit reject reason.
func (c *Conference) OnIncomingCall(ctx context.Context, call IncomingCall) {
	if c.left.IsBroken() {
		c.rejectCall(ctx, call, RejectReasonNotAllowed)
		return
	}
	if call.From == c.conf.FocusIdentity {
		c.acceptRelayCall(ctx, call)
		return
	}
	c.handleDirectCall(ctx, call)
}

func (c *Conference) acceptRelayCall(ctx context.Context, call IncomingCall) {
	c.tasks.Cancel(taskSITimeout)

	c.lock.Lock()
	stale := c.jvb
	c.jvb = &sessionSlot{
		session:  call.Session,
		state:    SessionStatePending,
		remoteID: call.From,
	}
	c.lock.Unlock()

	if stale.alive() {
		// the focus re-invited us; the previous session is obsolete
		c.log.Infow("replacing relay session", "oldSessionID", stale.session.ID())
		if err := stale.session.Terminate(ctx, ReasonSuccess, "replaced by focus re-invite", false); err != nil {
			if !isBenignTerminationError(err, ReasonSuccess) {
				c.log.Warnw("could not terminate stale relay session", err)
			}
		}
	}

	if err := call.Session.AcceptOffer(ctx, call.Offer, c.tracks.localTracks()); err != nil {
		c.log.Errorw("could not accept relay offer", err, "sessionID", call.Session.ID())
		c.clearSlot(call.Session)
		c.events.Emit(ConferenceFailed{Reason: FailureReasonOfferAnswerFailed, Err: err})
		return
	}

	prometheus.SessionInitiated("jvb", true)
	if c.params.Stats != nil {
		c.params.Stats.Start(call.Session)
	}
	c.log.Infow("relay session accepted", "sessionID", call.Session.ID())
}

// handleDirectCall validates an inbound direct offer against a fixed order of
// reject reasons so a misbehaving peer gets a deterministic answer.
func (c *Conference) handleDirectCall(ctx context.Context, call IncomingCall) {
	if call.Mode == NegotiationModePlanB {
		c.rejectCall(ctx, call, RejectReasonIncompatibleMode)
		return
	}

	// validation and slot assignment share one critical section: a locally
	// initiated invite fired from the deferred timer must not be overwritten
	// by an offer that passed a stale duplicate check
	c.lock.Lock()
	in := c.policyInputLocked()
	var reject RejectReason
	var negotiatingWith string
	switch {
	case c.p2pDisabled || !c.params.SupportsP2P:
		reject = RejectReasonP2PDisabled
	case c.p2p.alive():
		reject = RejectReasonDuplicateSession
		negotiatingWith = c.p2p.remoteID
	case !c.policy.shouldBeInP2P(in):
		reject = RejectReasonNotAllowed
	case in.peerID != call.From:
		reject = RejectReasonUnexpectedSender
	default:
		c.p2p = &sessionSlot{
			session:  call.Session,
			state:    SessionStatePending,
			remoteID: call.From,
		}
	}
	c.lock.Unlock()

	if reject != "" {
		if reject == RejectReasonDuplicateSession {
			c.log.Debugw("direct session already negotiating", "peerID", negotiatingWith)
		}
		c.rejectCall(ctx, call, reject)
		return
	}

	if err := call.Session.AcceptOffer(ctx, call.Offer, c.tracks.localTracks()); err != nil {
		c.log.Warnw("could not accept direct offer", err, "from", call.From)
		c.clearSlot(call.Session)
		return
	}

	prometheus.SessionInitiated("p2p", true)
	if c.params.Stats != nil {
		c.params.Stats.Start(call.Session)
	}
	c.log.Infow("direct session accepted", "sessionID", call.Session.ID(), "from", call.From)
}

func (c *Conference) rejectCall(ctx context.Context, call IncomingCall, reason RejectReason) {
	c.log.Infow("rejecting incoming call", "from", call.From, "reason", string(reason))
	if err := call.Session.Terminate(ctx, ReasonDecline, string(reason), true); err != nil &&
		!errors.Is(err, ErrSessionGone) {
		c.log.Warnw("could not reject incoming call", err, "from", call.From)
	}
}

// OnCallAccepted marks an outbound invite as answered by the remote side.
func (c *Conference) OnCallAccepted(sessionID string) {
	c.lock.Lock()
	slot := c.slotForLocked(sessionID)
	if slot != nil && slot.state == SessionStatePending {
		slot.state = SessionStateEstablished
	}
	c.lock.Unlock()
}

// OnCallEnded handles a remote session-terminate. A direct session ending
// falls back to the relay; the relay ending for any reason other than an
// orderly local teardown is terminal for the conference.
func (c *Conference) OnCallEnded(sessionID string, reason TerminationReason, description string) {
	if c.left.IsBroken() {
		return
	}

	c.lock.Lock()
	var isP2P bool
	switch {
	case c.p2p.alive() && c.p2p.session.ID() == sessionID:
		isP2P = true
	case c.jvb.alive() && c.jvb.session.ID() == sessionID:
		isP2P = false
	default:
		c.lock.Unlock()
		return
	}
	c.lock.Unlock()

	c.log.Infow("session ended by remote", "sessionID", sessionID,
		"p2p", isP2P, "reason", string(reason), "description", description)

	if isP2P {
		c.teardownDirectSession(context.Background(), ReasonSuccess, "remote ended", false)
		return
	}

	c.lock.Lock()
	var ended TransportSession
	if c.jvb != nil && c.jvb.session != nil {
		ended = c.jvb.session
	}
	c.lock.Unlock()
	if ended != nil && c.params.Stats != nil {
		c.params.Stats.Stop(ended)
	}
	c.clearSlotByID(sessionID)

	switch reason {
	case ReasonSuccess, ReasonGone:
		c.emitFatalFailure(FailureReasonConferenceDestroyed, nil)
	case ReasonSecurityError:
		c.emitFatalFailure(FailureReasonAuthenticationNeeded, nil)
	default:
		c.emitFatalFailure(FailureReasonICEFailed, nil)
	}
}

// OnTransportInfo routes trickled remote candidates to the owning session.
func (c *Conference) OnTransportInfo(ctx context.Context, sessionID string, candidates []webrtc.ICECandidateInit) {
	c.lock.Lock()
	slot := c.slotForLocked(sessionID)
	var session TransportSession
	if slot.alive() {
		session = slot.session
	}
	c.lock.Unlock()

	if session == nil {
		c.log.Debugw("transport info for unknown session", "sessionID", sessionID)
		return
	}
	if err := session.AddRemoteCandidates(ctx, candidates); err != nil {
		c.log.Warnw("could not add remote candidates", err, "sessionID", sessionID)
	}
}

// OnPropertiesChanged applies a focus properties notification. The bridge
// version is checked against the configured floor exactly once per value.
func (c *Conference) OnPropertiesChanged(props map[string]string) {
	if c.left.IsBroken() {
		return
	}

	c.lock.Lock()
	prevVersion := c.props.bridgeVersion
	c.props.apply(props)
	bridgeVersion := c.props.bridgeVersion
	c.lock.Unlock()

	c.events.Emit(PropertiesChanged{Properties: props})

	if bridgeVersion != prevVersion && bridgeVersion != "" && c.conf.MinBridgeVersion != "" {
		if err := c.checkBridgeVersion(bridgeVersion); err != nil {
			c.emitFatalFailure(FailureReasonIncompatibleVersions, err)
			return
		}
	}

	c.maybeUpdateP2P(context.Background(), false)
}

func (c *Conference) checkBridgeVersion(bridgeVersion string) error {
	current, err := version.NewVersion(bridgeVersion)
	if err != nil {
		// unparsable version is reported, not fatal
		c.log.Warnw("unparsable bridge version", err, "version", bridgeVersion)
		return nil
	}
	minimum, err := version.NewVersion(c.conf.MinBridgeVersion)
	if err != nil {
		c.log.Warnw("unparsable minimum bridge version", err, "version", c.conf.MinBridgeVersion)
		return nil
	}
	if current.LessThan(minimum) {
		return errors.Errorf("bridge version %s is older than required %s", bridgeVersion, c.conf.MinBridgeVersion)
	}
	return nil
}

func (c *Conference) OnRoleChanged(id string, role Role) {
	p := c.registry.get(id)
	if p == nil || !p.setRole(role) {
		return
	}
	c.events.Emit(RoleChanged{ID: id, Role: role})
}

func (c *Conference) OnDisplayNameChanged(id, name string) {
	p := c.registry.get(id)
	if p == nil || !p.setDisplayName(name) {
		return
	}
	c.events.Emit(DisplayNameChanged{ID: id, Name: name})
}

func (c *Conference) OnBotTypeChanged(id, botType string) {
	p := c.registry.get(id)
	if p == nil || !p.setBotType(botType) {
		return
	}
	c.events.Emit(BotTypeChanged{ID: id, BotType: botType})
	// a bot peer is never a direct-session peer
	c.maybeUpdateP2P(context.Background(), false)
}

func (c *Conference) OnMemberFeaturesChanged(id string, features []string) {
	p := c.registry.get(id)
	if p == nil || !p.setFeatures(features) {
		return
	}
	c.recomputeDTMFSupport()
}

// OnMemberSourceUpdated applies a presence source update and reflects mute
// state onto the matching remote track.
func (c *Conference) OnMemberSourceUpdated(id string, mediaType MediaType, sourceName string, info SourceInfo) {
	p := c.registry.get(id)
	if p == nil {
		return
	}
	p.setSourceInfo(mediaType, sourceName, info)

	for _, t := range c.tracks.remoteTracks() {
		if t.OwnerID() != id || t.SourceName() != sourceName {
			continue
		}
		if t.setMuted(info.Muted) && c.isVisibleRemoteTrack(t) {
			c.events.Emit(TrackMuteChanged{Remote: t})
		}
	}
}

func (c *Conference) OnDominantSpeakerChanged(id string) {
	c.events.Emit(DominantSpeakerChanged{ID: id})
}

// OnMutedRemotely applies a moderator-initiated mute. The mute sticks to the
// media type, so a replacement track arrives muted too until the user
// explicitly unmutes.
func (c *Conference) OnMutedRemotely(ctx context.Context, mediaType MediaType) {
	c.lock.Lock()
	c.focusMuted[mediaType] = true
	c.lock.Unlock()

	for _, t := range c.tracks.localTracks() {
		if t.MediaType() != mediaType || t.IsMuted() {
			continue
		}
		t.SetMuted(true)
		c.events.Emit(TrackMuteChanged{Local: t})
	}
	pass := &renegotiationPass{}
	c.sendPresenceOnce(ctx, pass)
}

func (c *Conference) OnKicked(reason string) {
	c.emitFatalFailure(FailureReasonKicked, errors.Errorf("kicked: %s", reason))
}

func (c *Conference) OnConferenceDestroyed(reason string) {
	c.emitFatalFailure(FailureReasonConferenceDestroyed, errors.Errorf("destroyed: %s", reason))
}

func (c *Conference) OnAuthenticationRequired() {
	c.emitFatalFailure(FailureReasonAuthenticationNeeded, nil)
}

// OnSessionConnectivityChanged is the ICE-level intake from both sessions.
// Interruptions are only surfaced for the active session; the dormant relay
// session degrading while a direct session carries media is invisible to
// consumers.
func (c *Conference) OnSessionConnectivityChanged(session TransportSession, conn SessionConnectivity) {
	if c.left.IsBroken() {
		return
	}
	c.log.Debugw("session connectivity changed",
		"sessionID", session.ID(), "p2p", session.IsP2P(), "connectivity", conn.String())

	switch conn {
	case ConnectivityEstablished:
		c.onSessionEstablished(session)
	case ConnectivityInterrupted:
		c.setSlotState(session, SessionStateInterrupted)
		if c.isActiveSession(session) {
			c.events.Emit(ConnectionInterrupted{})
		}
	case ConnectivityRestored:
		c.setSlotState(session, SessionStateEstablished)
		if !session.IsP2P() {
			c.retry.Reset()
			c.tasks.Cancel(taskICERetry)
		}
		if c.isActiveSession(session) {
			c.events.Emit(ConnectionRestored{})
		}
	case ConnectivityFailed:
		c.onSessionFailed(session)
	}
}

func (c *Conference) onSessionEstablished(session TransportSession) {
	c.setSlotState(session, SessionStateEstablished)
	if !session.IsP2P() {
		c.retry.Reset()
		return
	}
	// the direct session only becomes authoritative once media can flow
	c.activateDirectSession(context.Background())
}

func (c *Conference) onSessionFailed(session TransportSession) {
	if session.IsP2P() {
		// direct connectivity failure is never fatal; the relay takes over
		c.log.Infow("direct session failed, falling back to relay", "sessionID", session.ID())
		c.teardownDirectSession(context.Background(), ReasonConnectivityError, "ice failed", true)
		return
	}

	delay, ok := c.retry.NextDelay()
	if !ok {
		c.emitFatalFailure(FailureReasonICEFailed,
			errors.Errorf("relay ice failed after %d restart attempts", c.retry.Failures()))
		return
	}
	c.log.Infow("scheduling relay ice restart",
		"attempt", c.retry.Failures(), "delay", delay.String())
	c.tasks.Schedule(taskICERetry, delay, func() {
		s := c.relaySession()
		if s == nil {
			return
		}
		prometheus.ICERestart()
		if err := s.RestartICE(context.Background()); err != nil {
			c.log.Warnw("ice restart failed", err, "sessionID", s.ID())
			c.onSessionFailed(s)
		}
	})
}

// OnRemoteTrack registers a track received over a session. Only tracks of the
// active session are surfaced; the dormant session's tracks are tracked
// silently and surface when visibility swaps.
func (c *Conference) OnRemoteTrack(track *RemoteTrack) {
	if c.left.IsBroken() {
		return
	}
	c.tracks.registerRemote(track)
	if c.isVisibleRemoteTrack(track) {
		c.events.Emit(TrackAdded{Track: track})
	}
}

func (c *Conference) OnRemoteTrackRemoved(track *RemoteTrack) {
	if !c.tracks.unregisterRemote(track) {
		return
	}
	if c.isVisibleRemoteTrack(track) {
		c.events.Emit(TrackRemoved{Track: track})
	}
}

func (c *Conference) isVisibleRemoteTrack(track *RemoteTrack) bool {
	return track.IsP2P() == c.p2pActive.Load()
}

// maybeUpdateP2P re-evaluates the admission policy. triggeredByDeparture
// delays re-entry so a page reload by the remaining peer does not cause a
// switch flap; any later evaluation that no longer wants a direct session
// cancels the pending timer.
func (c *Conference) maybeUpdateP2P(ctx context.Context, triggeredByDeparture bool) {
	if c.left.IsBroken() {
		return
	}

	c.lock.Lock()
	in := c.policyInputLocked()
	directAlive := c.p2p.alive()
	c.lock.Unlock()

	want := c.policy.shouldBeInP2P(in)

	if !want {
		c.tasks.Cancel(taskDeferredP2P)
		if directAlive {
			c.log.Infow("leaving direct session", "peers", in.visiblePeers)
			c.teardownDirectSession(ctx, ReasonSuccess, "policy", true)
		}
		return
	}

	if directAlive || c.p2pActive.Load() {
		return
	}

	if triggeredByDeparture && c.conf.P2P.BackToP2PDelay > 0 {
		c.tasks.Schedule(taskDeferredP2P, c.conf.P2P.BackToP2PDelay, func() {
			c.maybeUpdateP2P(context.Background(), false)
		})
		return
	}

	initiator, err := c.policy.isInitiator(c.params.LocalID, in.peerID)
	if err != nil || !initiator {
		// the peer with the smaller id sends the invite; we wait for it
		return
	}
	c.startDirectSession(ctx, in.peerID)
}

func (c *Conference) policyInputLocked() policyInput {
	in := policyInput{
		visiblePeers:   c.registry.visibleCount(),
		visitorCount:   c.props.visitorCount,
		transcribing:   c.props.transcribing,
		disabled:       c.p2pDisabled,
		browserCapable: c.params.SupportsP2P,
	}
	if peer := c.registry.soleVisiblePeer(); peer != nil {
		in.peerID = peer.ID()
		in.peerIsBot = peer.BotType() != ""
	}
	return in
}

func (c *Conference) startDirectSession(ctx context.Context, peerID string) {
	session, err := c.params.Sessions.CreateSession(ctx, SessionKindP2P, peerID)
	if err != nil {
		c.log.Warnw("could not create direct session", err, "peerID", peerID)
		return
	}

	c.lock.Lock()
	if c.p2p.alive() {
		c.lock.Unlock()
		// the peer's invite won the race
		if err := session.Terminate(ctx, ReasonSuccess, "superseded", false); err != nil &&
			!isBenignTerminationError(err, ReasonSuccess) {
			c.log.Warnw("could not discard superseded direct session", err)
		}
		return
	}
	c.p2p = &sessionSlot{
		session:   session,
		state:     SessionStatePending,
		remoteID:  peerID,
		initiator: true,
	}
	c.lock.Unlock()

	if err := session.Invite(ctx, c.tracks.localTracks()); err != nil {
		c.log.Warnw("direct session invite failed", err, "peerID", peerID)
		c.clearSlot(session)
		return
	}
	prometheus.SessionInitiated("p2p", false)
	if c.params.Stats != nil {
		c.params.Stats.Start(session)
	}
	c.log.Infow("direct session invited", "sessionID", session.ID(), "peerID", peerID)
}

// activateDirectSession makes the direct session authoritative: relay media
// is suspended and consumer-visible tracks swap in one ordered burst.
func (c *Conference) activateDirectSession(ctx context.Context) {
	c.lock.Lock()
	if c.p2pActive.Load() || !c.p2p.alive() {
		c.lock.Unlock()
		return
	}
	jvb := c.jvb
	c.p2pActive.Store(true)
	c.lock.Unlock()

	if jvb.alive() {
		if err := jvb.session.SetMediaTransferActive(ctx, false); err != nil {
			c.log.Warnw("could not suspend relay media", err)
		}
	}

	prometheus.P2PSwitch(true)
	c.log.Infow("direct session active")
	for _, t := range c.tracks.remoteTracksOn(false) {
		c.events.Emit(TrackRemoved{Track: t})
	}
	for _, t := range c.tracks.remoteTracksOn(true) {
		c.events.Emit(TrackAdded{Track: t})
	}
	c.events.Emit(P2PStatusChanged{Active: true})
}

// teardownDirectSession terminates the direct session and, if it was
// authoritative, resumes relay media and swaps visibility back.
func (c *Conference) teardownDirectSession(ctx context.Context, reason TerminationReason, description string, sendSignal bool) {
	c.lock.Lock()
	slot := c.p2p
	c.p2p = nil
	wasActive := c.p2pActive.Swap(false)
	jvb := c.jvb
	c.lock.Unlock()

	if slot.alive() {
		if c.params.Stats != nil {
			c.params.Stats.Stop(slot.session)
		}
		if err := slot.session.Terminate(ctx, reason, description, sendSignal); err != nil {
			if !isBenignTerminationError(err, reason) {
				c.log.Warnw("direct session terminate failed", err, "sessionID", slot.session.ID())
			}
		}
		slot.state = SessionStateTerminated
		c.log.Infow("direct session closed",
			"sessionID", slot.session.ID(),
			"peerID", slot.remoteID,
			"initiator", slot.initiator,
			"reason", string(reason))
	}

	// the direct session's remote tracks die with it
	var orphaned []*RemoteTrack
	for _, t := range c.tracks.remoteTracksOn(true) {
		c.tracks.unregisterRemote(t)
		orphaned = append(orphaned, t)
	}

	if !wasActive {
		return
	}

	if jvb.alive() {
		if err := jvb.session.SetMediaTransferActive(ctx, true); err != nil {
			c.log.Warnw("could not resume relay media", err)
		}
	}

	prometheus.P2PSwitch(false)
	c.log.Infow("fell back to relay session", "reason", string(reason))
	for _, t := range orphaned {
		c.events.Emit(TrackRemoved{Track: t})
	}
	for _, t := range c.tracks.remoteTracksOn(false) {
		c.events.Emit(TrackAdded{Track: t})
	}
	c.events.Emit(P2PStatusChanged{Active: false})
}

func (c *Conference) onSessionInitiateTimeout() {
	c.lock.Lock()
	fire := !c.jvb.alive() && !c.siTimeoutFired && c.registry.count() > 0
	if fire {
		c.siTimeoutFired = true
	}
	c.lock.Unlock()
	if !fire {
		return
	}
	c.log.Warnw("no session initiate received from focus", nil,
		"timeout", c.conf.SessionInitiateTimeout.String())
	c.events.Emit(SessionInitiateTimeout{})
}

func (c *Conference) queryCapabilities(p *Participant) {
	features, err := c.params.Capabilities.QueryCapabilities(context.Background(), p.FullID())
	if err != nil {
		c.log.Debugw("capability query failed", "memberID", p.ID(), "error", err)
		return
	}
	if p.setFeatures(features) {
		c.recomputeDTMFSupport()
	}
}

// recomputeDTMFSupport updates the aggregate: supported when at least one
// remote member is present and every one of them advertises the feature.
// A late capability answer must not emit against a left conference.
func (c *Conference) recomputeDTMFSupport() {
	if c.left.IsBroken() {
		return
	}
	members := c.registry.list()
	supported := len(members) > 0
	for _, p := range members {
		if !p.HasFeature(FeatureDTMF) {
			supported = false
			break
		}
	}

	c.lock.Lock()
	changed := c.dtmfSupported != supported
	c.dtmfSupported = supported
	c.lock.Unlock()
	if changed {
		c.events.Emit(DTMFSupportChanged{Supported: supported})
	}
}

// slot plumbing

func (c *Conference) slotForLocked(sessionID string) *sessionSlot {
	if c.jvb != nil && c.jvb.session != nil && c.jvb.session.ID() == sessionID {
		return c.jvb
	}
	if c.p2p != nil && c.p2p.session != nil && c.p2p.session.ID() == sessionID {
		return c.p2p
	}
	return nil
}

func (c *Conference) setSlotState(session TransportSession, state SessionState) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if slot := c.slotForLocked(session.ID()); slot != nil {
		slot.state = state
	}
}

func (c *Conference) clearSlot(session TransportSession) {
	c.clearSlotByID(session.ID())
}

func (c *Conference) clearSlotByID(sessionID string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.jvb != nil && c.jvb.session != nil && c.jvb.session.ID() == sessionID {
		c.jvb = nil
		return
	}
	if c.p2p != nil && c.p2p.session != nil && c.p2p.session.ID() == sessionID {
		c.p2p = nil
		c.p2pActive.Store(false)
	}
}

func (c *Conference) relaySession() TransportSession {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.jvb.alive() {
		return c.jvb.session
	}
	return nil
}
