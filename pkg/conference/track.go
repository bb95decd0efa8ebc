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
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

type MediaType string

const (
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"
)

// shorthand used in deterministic source names
func (m MediaType) letter() string {
	if m == MediaTypeAudio {
		return "a"
	}
	return "v"
}

type VideoType string

const (
	VideoTypeNone    VideoType = ""
	VideoTypeCamera  VideoType = "camera"
	VideoTypeDesktop VideoType = "desktop"
)

// LocalTrack is a locally captured media track registered with the conference
// via AddTrack. The source name is assigned exactly once, before any transport
// session attaches the track, and survives replacement of the underlying
// track in the same logical slot.
type LocalTrack struct {
	mediaType MediaType
	videoType VideoType

	muted    atomic.Bool
	disposed atomic.Bool

	lock       sync.Mutex
	sourceName string
}

func NewLocalTrack(mediaType MediaType, videoType VideoType) *LocalTrack {
	return &LocalTrack{
		mediaType: mediaType,
		videoType: videoType,
	}
}

func (t *LocalTrack) MediaType() MediaType { return t.mediaType }
func (t *LocalTrack) VideoType() VideoType { return t.videoType }
func (t *LocalTrack) IsMuted() bool        { return t.muted.Load() }
func (t *LocalTrack) SetMuted(muted bool)  { t.muted.Store(muted) }
func (t *LocalTrack) IsDisposed() bool     { return t.disposed.Load() }

// Dispose marks the track unusable. Operating on a disposed track fails with
// ErrTrackDisposed.
func (t *LocalTrack) Dispose() { t.disposed.Store(true) }

func (t *LocalTrack) SourceName() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.sourceName
}

func (t *LocalTrack) setSourceName(name string) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.sourceName == name {
		return nil
	}
	if t.sourceName != "" {
		return ErrSourceNameReassigned
	}
	t.sourceName = name
	return nil
}

// RemoteTrack is a track received from another participant over one of the
// two transport sessions. Every remote track belongs to exactly one session
// at any time.
type RemoteTrack struct {
	mediaType  MediaType
	videoType  VideoType
	ownerID    string
	sourceName string
	p2p        bool

	muted atomic.Bool
}

func NewRemoteTrack(ownerID, sourceName string, mediaType MediaType, videoType VideoType, p2p bool) *RemoteTrack {
	return &RemoteTrack{
		mediaType:  mediaType,
		videoType:  videoType,
		ownerID:    ownerID,
		sourceName: sourceName,
		p2p:        p2p,
	}
}

func (t *RemoteTrack) MediaType() MediaType { return t.mediaType }
func (t *RemoteTrack) VideoType() VideoType { return t.videoType }
func (t *RemoteTrack) OwnerID() string      { return t.ownerID }
func (t *RemoteTrack) SourceName() string   { return t.sourceName }
func (t *RemoteTrack) IsP2P() bool          { return t.p2p }
func (t *RemoteTrack) IsMuted() bool        { return t.muted.Load() }

func (t *RemoteTrack) setMuted(muted bool) bool {
	return t.muted.Swap(muted) != muted
}

func sourceNameFor(localID string, mediaType MediaType, ordinal int) string {
	return fmt.Sprintf("%s-%s%d", localID, mediaType.letter(), ordinal)
}
