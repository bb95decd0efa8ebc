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

type Role string

const (
	RoleNone      Role = "none"
	RoleModerator Role = "moderator"
)

// FeatureDTMF is the capability string advertised by endpoints that can
// receive DTMF tones.
const FeatureDTMF = "urn:xmpp:jingle:dtmf:0"

// SourceInfo is per-media-type source state a participant advertises
// out-of-band.
type SourceInfo struct {
	Muted     bool
	VideoType VideoType
}

// MemberInfo is the payload of a member-joined notification from the
// signaling channel.
type MemberInfo struct {
	ID          string
	DisplayName string
	Role        Role
	Hidden      bool
	StatsID     string
	BotType     string
	FullID      string
	Features    []string
	IsReplacing bool
}

// Participant is the registry record for one remote conference member.
// Created on member-joined, destroyed on member-left or kick. Mutated only by
// the coordinator in response to signaling notifications.
type Participant struct {
	lock sync.RWMutex

	id          string
	displayName string
	role        Role
	hidden      bool
	statsID     string
	botType     string
	fullID      string
	features    map[string]struct{}
	sources     map[MediaType]map[string]SourceInfo
	isReplacing bool
}

func newParticipant(info MemberInfo) *Participant {
	p := &Participant{
		id:          info.ID,
		displayName: info.DisplayName,
		role:        info.Role,
		hidden:      info.Hidden,
		statsID:     info.StatsID,
		botType:     info.BotType,
		fullID:      info.FullID,
		features:    make(map[string]struct{}, len(info.Features)),
		sources:     make(map[MediaType]map[string]SourceInfo),
		isReplacing: info.IsReplacing,
	}
	for _, f := range info.Features {
		p.features[f] = struct{}{}
	}
	return p
}

func (p *Participant) ID() string {
	return p.id
}

func (p *Participant) DisplayName() string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.displayName
}

func (p *Participant) Role() Role {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.role
}

func (p *Participant) IsHidden() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.hidden
}

func (p *Participant) BotType() string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.botType
}

func (p *Participant) StatsID() string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.statsID
}

func (p *Participant) FullID() string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.fullID
}

func (p *Participant) IsReplacing() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.isReplacing
}

func (p *Participant) HasFeature(feature string) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	_, ok := p.features[feature]
	return ok
}

func (p *Participant) SourceInfo(mediaType MediaType, sourceName string) (SourceInfo, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	info, ok := p.sources[mediaType][sourceName]
	return info, ok
}

func (p *Participant) setRole(role Role) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.role == role {
		return false
	}
	p.role = role
	return true
}

func (p *Participant) setDisplayName(name string) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.displayName == name {
		return false
	}
	p.displayName = name
	return true
}

func (p *Participant) setBotType(botType string) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.botType == botType {
		return false
	}
	p.botType = botType
	return true
}

func (p *Participant) setFeatures(features []string) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	changed := len(features) != len(p.features)
	next := make(map[string]struct{}, len(features))
	for _, f := range features {
		if _, ok := p.features[f]; !ok {
			changed = true
		}
		next[f] = struct{}{}
	}
	if !changed {
		return false
	}
	p.features = next
	return true
}

func (p *Participant) setSourceInfo(mediaType MediaType, sourceName string, info SourceInfo) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.sources[mediaType] == nil {
		p.sources[mediaType] = make(map[string]SourceInfo)
	}
	p.sources[mediaType][sourceName] = info
}

// participantRegistry maps participant ids to records. Join notifications for
// the local user or the focus service identity are ignored: the signaling
// channel's own service identity must never become a participant.
type participantRegistry struct {
	lock sync.RWMutex

	localID string
	focusID string
	members map[string]*Participant
}

func newParticipantRegistry(localID, focusID string) *participantRegistry {
	return &participantRegistry{
		localID: localID,
		focusID: focusID,
		members: make(map[string]*Participant),
	}
}

// upsertOnJoin creates the record. Returns (nil, false) for ignored
// identities, (existing, false) when the member was already known.
func (r *participantRegistry) upsertOnJoin(info MemberInfo) (*Participant, bool) {
	if info.ID == "" || info.ID == r.localID || info.ID == r.focusID {
		return nil, false
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if p, ok := r.members[info.ID]; ok {
		return p, false
	}
	p := newParticipant(info)
	r.members[info.ID] = p
	return p, true
}

// removeOnLeave detaches and returns the record, nil if unknown.
func (r *participantRegistry) removeOnLeave(id string) *Participant {
	r.lock.Lock()
	defer r.lock.Unlock()
	p := r.members[id]
	delete(r.members, id)
	return p
}

func (r *participantRegistry) get(id string) *Participant {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.members[id]
}

func (r *participantRegistry) list() []*Participant {
	r.lock.RLock()
	defer r.lock.RUnlock()
	members := make([]*Participant, 0, len(r.members))
	for _, p := range r.members {
		members = append(members, p)
	}
	return members
}

func (r *participantRegistry) count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.members)
}

// visibleCount counts members that are not hidden; hidden members never
// factor into the peer-to-peer admission decision.
func (r *participantRegistry) visibleCount() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	n := 0
	for _, p := range r.members {
		if !p.IsHidden() {
			n++
		}
	}
	return n
}

// soleVisiblePeer returns the only non-hidden member, or nil if there are
// zero or more than one.
func (r *participantRegistry) soleVisiblePeer() *Participant {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var sole *Participant
	for _, p := range r.members {
		if p.IsHidden() {
			continue
		}
		if sole != nil {
			return nil
		}
		sole = p
	}
	return sole
}
