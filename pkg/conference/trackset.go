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

// trackSet owns local and remote track bookkeeping, independent of which
// transport session carries a track. Mutated only by the coordinator.
type trackSet struct {
	lock sync.RWMutex

	localID string
	locals  []*LocalTrack
	// remote tracks grouped by owning participant
	remotes map[string][]*RemoteTrack

	// test-only override for the duplicate video constraint
	allowMultipleVideo bool
}

func newTrackSet(localID string) *trackSet {
	return &trackSet{
		localID: localID,
		remotes: make(map[string][]*RemoteTrack),
	}
}

func (s *trackSet) hasLocal(track *LocalTrack) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for _, t := range s.locals {
		if t == track {
			return true
		}
	}
	return false
}

func (s *trackSet) localTracks() []*LocalTrack {
	s.lock.RLock()
	defer s.lock.RUnlock()
	tracks := make([]*LocalTrack, len(s.locals))
	copy(tracks, s.locals)
	return tracks
}

// canRegisterLocal reports whether the track would be accepted, without
// mutating anything. A second local video track is rejected unless the video
// types differ.
func (s *trackSet) canRegisterLocal(track *LocalTrack) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.canRegisterLocalLocked(track)
}

func (s *trackSet) canRegisterLocalLocked(track *LocalTrack) error {
	if track.MediaType() != MediaTypeVideo || s.allowMultipleVideo {
		return nil
	}
	for _, t := range s.locals {
		if t.MediaType() == MediaTypeVideo && t.VideoType() == track.VideoType() {
			return ErrTrackAlreadyExists
		}
	}
	return nil
}

// assignSourceName names an unregistered track ahead of session attachment;
// a later registerLocal keeps the name.
func (s *trackSet) assignSourceName(track *LocalTrack) error {
	s.lock.RLock()
	ordinal := 0
	for _, t := range s.locals {
		if t.MediaType() == track.MediaType() {
			ordinal++
		}
	}
	s.lock.RUnlock()
	return track.setSourceName(sourceNameFor(s.localID, track.MediaType(), ordinal))
}

// registerLocal adds the track and assigns its source name if none is
// assigned yet. No state is mutated on rejection.
func (s *trackSet) registerLocal(track *LocalTrack) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, t := range s.locals {
		if t == track {
			return nil
		}
	}
	if err := s.canRegisterLocalLocked(track); err != nil {
		return err
	}

	if track.SourceName() == "" {
		// derived from the count of existing local tracks of the same type
		ordinal := 0
		for _, t := range s.locals {
			if t.MediaType() == track.MediaType() {
				ordinal++
			}
		}
		if err := track.setSourceName(sourceNameFor(s.localID, track.MediaType(), ordinal)); err != nil {
			return err
		}
	}

	s.locals = append(s.locals, track)
	return nil
}

func (s *trackSet) unregisterLocal(track *LocalTrack) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, t := range s.locals {
		if t == track {
			s.locals = append(s.locals[:i], s.locals[i+1:]...)
			return true
		}
	}
	return false
}

func (s *trackSet) registerRemote(track *RemoteTrack) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.remotes[track.OwnerID()] = append(s.remotes[track.OwnerID()], track)
}

func (s *trackSet) unregisterRemote(track *RemoteTrack) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	owned := s.remotes[track.OwnerID()]
	for i, t := range owned {
		if t == track {
			owned = append(owned[:i], owned[i+1:]...)
			if len(owned) == 0 {
				delete(s.remotes, track.OwnerID())
			} else {
				s.remotes[track.OwnerID()] = owned
			}
			return true
		}
	}
	return false
}

// removeRemotesOf detaches and returns all remote tracks owned by a departed
// participant.
func (s *trackSet) removeRemotesOf(ownerID string) []*RemoteTrack {
	s.lock.Lock()
	defer s.lock.Unlock()
	removed := s.remotes[ownerID]
	delete(s.remotes, ownerID)
	return removed
}

func (s *trackSet) remoteTracks() []*RemoteTrack {
	s.lock.RLock()
	defer s.lock.RUnlock()
	var tracks []*RemoteTrack
	for _, owned := range s.remotes {
		tracks = append(tracks, owned...)
	}
	return tracks
}

// remoteTracksOn returns the remote tracks carried by the direct session
// (p2p true) or the relay session (p2p false).
func (s *trackSet) remoteTracksOn(p2p bool) []*RemoteTrack {
	s.lock.RLock()
	defer s.lock.RUnlock()
	var tracks []*RemoteTrack
	for _, owned := range s.remotes {
		for _, t := range owned {
			if t.IsP2P() == p2p {
				tracks = append(tracks, t)
			}
		}
	}
	return tracks
}
