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
	"sync"
)

// Event is the closed set of conference notifications. Consumers subscribe
// once and switch on the concrete type; there is no string-keyed dispatch.
type Event interface {
	isConferenceEvent()
}

type TrackAdded struct {
	Track *RemoteTrack
}

type TrackRemoved struct {
	Track *RemoteTrack
}

type LocalTrackAdded struct {
	Track *LocalTrack
}

type LocalTrackRemoved struct {
	Track *LocalTrack
}

type TrackMuteChanged struct {
	// exactly one of Local/Remote is set
	Local  *LocalTrack
	Remote *RemoteTrack
}

type UserJoined struct {
	Participant *Participant
}

type UserLeft struct {
	Participant *Participant
	Reason      string
}

type DisplayNameChanged struct {
	ID   string
	Name string
}

type RoleChanged struct {
	ID   string
	Role Role
}

type BotTypeChanged struct {
	ID      string
	BotType string
}

type DominantSpeakerChanged struct {
	ID string
}

type ConferenceFailed struct {
	Reason FailureReason
	Err    error
}

type ConnectionInterrupted struct{}

type ConnectionRestored struct{}

type P2PStatusChanged struct {
	Active bool
}

type DTMFSupportChanged struct {
	Supported bool
}

type StartMutedPolicyChanged struct {
	Policy StartMutedPolicy
}

type PropertiesChanged struct {
	Properties map[string]string
}

// SessionInitiateTimeout is a diagnostic event emitted once when the focus
// has not initiated a relay session within the configured window while two or
// more participants are present. Pure observability; never causes a state
// transition.
type SessionInitiateTimeout struct{}

func (TrackAdded) isConferenceEvent()              {}
func (TrackRemoved) isConferenceEvent()            {}
func (LocalTrackAdded) isConferenceEvent()         {}
func (LocalTrackRemoved) isConferenceEvent()       {}
func (TrackMuteChanged) isConferenceEvent()        {}
func (UserJoined) isConferenceEvent()              {}
func (UserLeft) isConferenceEvent()                {}
func (DisplayNameChanged) isConferenceEvent()      {}
func (RoleChanged) isConferenceEvent()             {}
func (BotTypeChanged) isConferenceEvent()          {}
func (DominantSpeakerChanged) isConferenceEvent()  {}
func (ConferenceFailed) isConferenceEvent()        {}
func (ConnectionInterrupted) isConferenceEvent()   {}
func (ConnectionRestored) isConferenceEvent()      {}
func (P2PStatusChanged) isConferenceEvent()        {}
func (DTMFSupportChanged) isConferenceEvent()      {}
func (StartMutedPolicyChanged) isConferenceEvent() {}
func (PropertiesChanged) isConferenceEvent()       {}
func (SessionInitiateTimeout) isConferenceEvent()  {}

// eventBus fans events out to subscribers. Emission is serialized so
// subscribers observe events in the order the coordinator produced them.
type eventBus struct {
	lock     sync.RWMutex
	emitLock sync.Mutex
	nextID   int
	handlers map[int]func(Event)
}

func newEventBus() *eventBus {
	return &eventBus{
		handlers: make(map[int]func(Event)),
	}
}

func (b *eventBus) Subscribe(fn func(Event)) func() {
	b.lock.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	b.lock.Unlock()

	return func() {
		b.lock.Lock()
		delete(b.handlers, id)
		b.lock.Unlock()
	}
}

func (b *eventBus) Emit(ev Event) {
	b.lock.RLock()
	handlers := make([]func(Event), 0, len(b.handlers))
	for _, fn := range b.handlers {
		handlers = append(handlers, fn)
	}
	b.lock.RUnlock()

	b.emitLock.Lock()
	defer b.emitLock.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}
