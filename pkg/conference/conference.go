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
	"strings"
	"sync"

	"github.com/frostbyte73/core"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/peerconf/peerconf/pkg/config"
	"github.com/peerconf/peerconf/pkg/logger"
	"github.com/peerconf/peerconf/pkg/telemetry/prometheus"
)

type ConferenceParams struct {
	// conference name; must be lowercase
	Name string
	// stable opaque id of the local user on the signaling channel
	LocalID string

	Config    *config.Config
	Signaling SignalingChannel
	Sessions  SessionFactory

	// optional collaborators
	Capabilities CapabilityResolver
	Quality      QualityController
	Stats        StatsCollector
	Logger       logger.Logger

	// whether the runtime is able to run a direct session at all; external
	// constraint determined by the embedding application
	SupportsP2P bool
}

// Conference is the aggregate root coordinating the signaling channel with
// the relay and the optional direct transport session. It owns the
// participant registry, the track set and both session slots; no other
// component mutates them.
type Conference struct {
	params ConferenceParams
	conf   *config.Config
	log    logger.Logger

	lock     sync.Mutex
	registry *participantRegistry
	tracks   *trackSet
	jvb      *sessionSlot
	p2p      *sessionSlot

	// the sole source of truth for which session is authoritative; every
	// path that needs "the active session" derives it from this flag via
	// activeSessionLocked, never by inspecting session existence
	p2pActive atomic.Bool

	// administrative switch, flipped by the embedding application
	p2pDisabled bool

	policy *admissionPolicy
	retry  *retrySupervisor
	tasks  *taskGroup
	events *eventBus

	// one queue per media type keeps at most one track mutation in flight
	// per logical slot
	trackOps map[MediaType]*opsQueue

	startMuted     StartMutedPolicy
	props          conferenceProperties
	dtmfSupported  bool
	focusMuted     map[MediaType]bool
	siTimeoutFired bool

	left        core.Fuse
	fatalFailed atomic.Bool
}

// NewConference validates the name and wires the coordinator. It performs no
// network action; Join does.
func NewConference(params ConferenceParams) (*Conference, error) {
	if params.Name == "" || params.Name != strings.ToLower(params.Name) {
		return nil, ErrConferenceNameInvalid
	}
	if params.LocalID == "" {
		return nil, ErrInvalidMemberID
	}
	if params.Config == nil {
		params.Config = config.DefaultConfig()
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}

	// instance id distinguishes rejoins of the same conference in logs
	instanceID := uuid.NewString()[:8]
	log := params.Logger.WithValues("conference", params.Name, "confID", instanceID)
	prometheus.Init(params.LocalID)

	c := &Conference{
		params:   params,
		conf:     params.Config,
		log:      log,
		registry: newParticipantRegistry(params.LocalID, params.Config.FocusIdentity),
		tracks:   newTrackSet(params.LocalID),
		policy:   newAdmissionPolicy(log),
		retry:    newRetrySupervisor(params.Config.ICE.RetryBaseDelay, params.Config.ICE.MaxRetries),
		tasks:    newTaskGroup(),
		events:   newEventBus(),
		trackOps: map[MediaType]*opsQueue{
			MediaTypeAudio: newOpsQueue(),
			MediaTypeVideo: newOpsQueue(),
		},
		focusMuted:  make(map[MediaType]bool),
		p2pDisabled: !params.Config.P2P.Enabled,
		left:        core.NewFuse(),
	}
	return c, nil
}

func (c *Conference) Name() string {
	return c.params.Name
}

func (c *Conference) LocalID() string {
	return c.params.LocalID
}

// Subscribe registers an event handler; the returned function removes it.
func (c *Conference) Subscribe(fn func(Event)) func() {
	return c.events.Subscribe(fn)
}

// IsP2PActive reports whether the direct session currently carries the
// conference media.
func (c *Conference) IsP2PActive() bool {
	return c.p2pActive.Load()
}

func (c *Conference) GetParticipant(id string) *Participant {
	return c.registry.get(id)
}

func (c *Conference) GetParticipants() []*Participant {
	return c.registry.list()
}

func (c *Conference) GetLocalTracks() []*LocalTrack {
	return c.tracks.localTracks()
}

// GetRemoteTracks returns the remote tracks of the active session only.
func (c *Conference) GetRemoteTracks() []*RemoteTrack {
	return c.tracks.remoteTracksOn(c.p2pActive.Load())
}

// IsDTMFSupported reports the aggregate over all participants' capabilities.
func (c *Conference) IsDTMFSupported() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.dtmfSupported
}

func (c *Conference) Join(ctx context.Context) error {
	if c.left.IsBroken() {
		return ErrConferenceLeft
	}
	if err := c.params.Signaling.Join(ctx, c.params.Name); err != nil {
		return errors.Wrap(err, "could not join signaling channel")
	}
	return nil
}

// Leave cancels all pending timers before tearing down sessions, so no stale
// callback fires against a disposed conference. Cleanup is best-effort:
// failures are logged but local state always reaches "left".
func (c *Conference) Leave(ctx context.Context) error {
	var err error
	c.left.Once(func() {
		err = c.doLeave(ctx)
	})
	return err
}

func (c *Conference) doLeave(ctx context.Context) error {
	c.tasks.CancelAll()
	for _, q := range c.trackOps {
		q.Stop()
	}

	c.lock.Lock()
	p2pSlot := c.p2p
	jvbSlot := c.jvb
	c.p2p = nil
	c.jvb = nil
	c.p2pActive.Store(false)
	c.lock.Unlock()

	var firstErr error
	for _, slot := range []*sessionSlot{p2pSlot, jvbSlot} {
		if !slot.alive() {
			continue
		}
		if c.params.Stats != nil {
			c.params.Stats.Stop(slot.session)
		}
		if err := slot.session.Terminate(ctx, ReasonSuccess, "conference left", true); err != nil {
			if !isBenignTerminationError(err, ReasonSuccess) {
				c.log.Warnw("session terminate failed on leave", err, "sessionID", slot.session.ID())
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		slot.state = SessionStateTerminated
	}

	if err := c.params.Signaling.Leave(ctx); err != nil {
		c.log.Warnw("signaling leave failed", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// activeSessionLocked derives the authoritative session from the p2pActive
// flag. This is the single place that inspects it.
func (c *Conference) activeSessionLocked() TransportSession {
	if c.p2pActive.Load() {
		if c.p2p.alive() {
			return c.p2p.session
		}
		return nil
	}
	if c.jvb.alive() {
		return c.jvb.session
	}
	return nil
}

func (c *Conference) activeSession() TransportSession {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.activeSessionLocked()
}

func (c *Conference) isActiveSession(s TransportSession) bool {
	active := c.activeSession()
	return active != nil && active.ID() == s.ID()
}

// aliveSessions returns every structurally existing session, active or not;
// track mutations are applied to all of them.
func (c *Conference) aliveSessions() []TransportSession {
	c.lock.Lock()
	defer c.lock.Unlock()
	var sessions []TransportSession
	if c.jvb.alive() {
		sessions = append(sessions, c.jvb.session)
	}
	if c.p2p.alive() {
		sessions = append(sessions, c.p2p.session)
	}
	return sessions
}

// AddTrack registers a local track with the conference and attaches it to
// every existing session. Adding a track that is already added resolves
// without a duplicate registration or a second event.
func (c *Conference) AddTrack(ctx context.Context, track *LocalTrack) error {
	if track == nil {
		return nil
	}
	if c.tracks.hasLocal(track) {
		return nil
	}
	return c.ReplaceTrack(ctx, nil, track)
}

func (c *Conference) RemoveTrack(ctx context.Context, track *LocalTrack) error {
	if track == nil {
		return nil
	}
	return c.ReplaceTrack(ctx, track, nil)
}

// ReplaceTrack swaps oldTrack for newTrack as one coordinated operation
// across every existing session; either side may be nil. Operations for the
// same media type are serialized so two replacements of the same logical
// slot can never interleave.
func (c *Conference) ReplaceTrack(ctx context.Context, oldTrack, newTrack *LocalTrack) error {
	if oldTrack == nil && newTrack == nil {
		return nil
	}
	mediaType := MediaTypeAudio
	if t := firstTrack(oldTrack, newTrack); t != nil {
		mediaType = t.MediaType()
	}

	errCh := make(chan error, 1)
	queued := c.trackOps[mediaType].Enqueue(func() {
		errCh <- c.doReplaceTrack(ctx, oldTrack, newTrack)
	})
	if !queued {
		return ErrConferenceLeft
	}
	return <-errCh
}

func firstTrack(tracks ...*LocalTrack) *LocalTrack {
	for _, t := range tracks {
		if t != nil {
			return t
		}
	}
	return nil
}

func (c *Conference) doReplaceTrack(ctx context.Context, oldTrack, newTrack *LocalTrack) error {
	// operations drained after leave fail fast instead of touching sessions
	if c.left.IsBroken() {
		return ErrConferenceLeft
	}

	// validation is synchronous and mutates nothing on failure
	if oldTrack != nil && oldTrack.IsDisposed() {
		return ErrTrackDisposed
	}
	if newTrack != nil && newTrack.IsDisposed() {
		return ErrTrackDisposed
	}
	if oldTrack != nil && newTrack != nil {
		if oldTrack.MediaType() != newTrack.MediaType() ||
			oldTrack.VideoType() != newTrack.VideoType() {
			return ErrIncompatibleVideoType
		}
	}
	if oldTrack != nil && !c.tracks.hasLocal(oldTrack) {
		return ErrTrackNotFound
	}
	if newTrack != nil && c.tracks.hasLocal(newTrack) {
		return nil
	}
	if oldTrack == nil && newTrack != nil {
		if err := c.tracks.canRegisterLocal(newTrack); err != nil {
			return err
		}
	}

	// the source name must be in place before any session attaches the
	// track; a replacement inherits the old track's name so the logical
	// slot keeps its identity across renegotiations
	if newTrack != nil {
		if oldTrack != nil && oldTrack.SourceName() != "" {
			if err := newTrack.setSourceName(oldTrack.SourceName()); err != nil {
				return err
			}
		} else if newTrack.SourceName() == "" {
			if err := c.tracks.assignSourceName(newTrack); err != nil {
				return err
			}
		}
	}

	if err := c.applyToSessions(ctx, oldTrack, newTrack); err != nil {
		return err
	}

	if c.left.IsBroken() {
		return ErrConferenceLeft
	}

	// all legs resolved: apply one atomic state update
	if oldTrack != nil {
		c.tracks.unregisterLocal(oldTrack)
	}
	if newTrack != nil {
		if err := c.tracks.registerLocal(newTrack); err != nil {
			return err
		}
	}

	pass := &renegotiationPass{}
	c.sendPresenceOnce(ctx, pass)

	if oldTrack != nil {
		c.events.Emit(LocalTrackRemoved{Track: oldTrack})
	}
	if newTrack != nil {
		c.events.Emit(LocalTrackAdded{Track: newTrack})
		if c.isFocusMuted(newTrack.MediaType()) {
			// an administrative mute stays in effect across replacement
			newTrack.SetMuted(true)
			c.events.Emit(TrackMuteChanged{Local: newTrack})
		}
	}
	return nil
}

// applyToSessions runs the per-session leg of a track mutation on every
// existing session in parallel and joins before anything is mutated.
func (c *Conference) applyToSessions(ctx context.Context, oldTrack, newTrack *LocalTrack) error {
	sessions := c.aliveSessions()
	if len(sessions) == 0 {
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, s := range sessions {
		s := s
		eg.Go(func() error {
			switch {
			case oldTrack != nil && newTrack != nil:
				return s.ReplaceTrack(ctx, oldTrack, newTrack)
			case newTrack != nil:
				return s.AddTracks(ctx, []*LocalTrack{newTrack})
			default:
				return s.RemoveTrack(ctx, oldTrack)
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return errors.Wrap(err, "track operation failed on a session")
	}
	return nil
}

// SetTrackMuted changes a local track's mute state and publishes it. An
// explicit unmute also lifts a moderator-initiated mute for that media type.
func (c *Conference) SetTrackMuted(ctx context.Context, track *LocalTrack, muted bool) error {
	if track == nil || !c.tracks.hasLocal(track) {
		return ErrTrackNotFound
	}
	if track.IsMuted() == muted {
		return nil
	}
	if !muted {
		c.lock.Lock()
		delete(c.focusMuted, track.MediaType())
		c.lock.Unlock()
	}
	track.SetMuted(muted)
	pass := &renegotiationPass{}
	c.sendPresenceOnce(ctx, pass)
	c.events.Emit(TrackMuteChanged{Local: track})
	return nil
}

func (c *Conference) isFocusMuted(mediaType MediaType) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.focusMuted[mediaType]
}

// renegotiationPass deduplicates presence sends within one renegotiation.
// The consumed marker makes the single-use contract explicit.
type renegotiationPass struct {
	presenceSent bool
}

func (c *Conference) sendPresenceOnce(ctx context.Context, pass *renegotiationPass) {
	if pass.presenceSent {
		return
	}
	pass.presenceSent = true
	if err := c.params.Signaling.SendPresenceUpdate(ctx, c.presenceValues()); err != nil {
		c.log.Warnw("could not send presence update", err)
	}
}

// presenceValues renders the local source info advertised out-of-band. Muted
// video tracks keep a placeholder entry so a future unmute needs no
// renegotiation surprises.
func (c *Conference) presenceValues() map[string]string {
	values := make(map[string]string)
	for _, t := range c.tracks.localTracks() {
		key := "source:" + t.SourceName()
		state := "active"
		if t.IsMuted() {
			state = "muted"
		}
		if t.VideoType() != VideoTypeNone {
			state += ";videoType=" + string(t.VideoType())
		}
		values[key] = state
	}
	return values
}

func (c *Conference) SetStartMutedPolicy(ctx context.Context, policy StartMutedPolicy) error {
	c.lock.Lock()
	if c.startMuted == policy {
		// idempotence contract: no event, no presence churn
		c.lock.Unlock()
		return nil
	}
	c.startMuted = policy
	c.lock.Unlock()

	if err := c.params.Signaling.SetPresenceValue(ctx, "startmuted", policy.encode()); err != nil {
		c.log.Warnw("could not publish start-muted policy", err)
	}
	c.events.Emit(StartMutedPolicyChanged{Policy: policy})
	return nil
}

func (c *Conference) GetStartMutedPolicy() StartMutedPolicy {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.startMuted
}

func (c *Conference) SetSubject(ctx context.Context, subject string) error {
	return c.params.Signaling.SetSubject(ctx, subject)
}

func (c *Conference) GrantModerator(ctx context.Context, id string) error {
	return c.params.Signaling.SetAffiliation(ctx, id, true)
}

func (c *Conference) RevokeModerator(ctx context.Context, id string) error {
	return c.params.Signaling.SetAffiliation(ctx, id, false)
}

func (c *Conference) Kick(ctx context.Context, id, reason string) error {
	return c.params.Signaling.Kick(ctx, id, reason)
}

func (c *Conference) MuteParticipant(ctx context.Context, id string, mediaType MediaType) error {
	return c.params.Signaling.MuteParticipant(ctx, id, mediaType)
}

func (c *Conference) SendEndpointMessage(ctx context.Context, to string, payload []byte) error {
	return c.params.Signaling.SendMessage(ctx, to, payload)
}

func (c *Conference) BroadcastEndpointMessage(ctx context.Context, payload []byte) error {
	return c.params.Signaling.SendMessage(ctx, "", payload)
}

// quality shaping is delegated to the external controller, gated through the
// active session

func (c *Conference) SetReceiverVideoConstraint(maxFrameHeight int) error {
	s := c.activeSession()
	if s == nil {
		return ErrNoActiveSession
	}
	if c.params.Quality == nil {
		return nil
	}
	return c.params.Quality.SetReceiverVideoConstraint(s, maxFrameHeight)
}

func (c *Conference) SetSenderVideoConstraint(maxFrameHeight int) error {
	s := c.activeSession()
	if s == nil {
		return ErrNoActiveSession
	}
	if c.params.Quality == nil {
		return nil
	}
	return c.params.Quality.SetSenderVideoConstraint(s, maxFrameHeight)
}

func (c *Conference) SetLastN(lastN int) error {
	s := c.activeSession()
	if s == nil {
		return ErrNoActiveSession
	}
	if c.params.Quality == nil {
		return nil
	}
	return c.params.Quality.SetLastN(s, lastN)
}

// SetP2PEnabled flips the administrative switch and re-evaluates the
// admission policy.
func (c *Conference) SetP2PEnabled(enabled bool) {
	c.lock.Lock()
	changed := c.p2pDisabled == enabled
	c.p2pDisabled = !enabled
	c.lock.Unlock()
	if changed {
		c.maybeUpdateP2P(context.Background(), false)
	}
}

func (c *Conference) emitFatalFailure(reason FailureReason, err error) {
	if c.fatalFailed.Swap(true) {
		// exactly one terminal failure event per conference
		return
	}
	c.log.Errorw("conference failed", err, "reason", reason)
	prometheus.ConferenceFailed(string(reason))
	c.events.Emit(ConferenceFailed{Reason: reason, Err: err})

	// best-effort local cleanup; a failing leave must not stop us from
	// reaching "left"
	if err := c.Leave(context.Background()); err != nil {
		c.log.Warnw("cleanup after fatal failure", err)
	}
}
