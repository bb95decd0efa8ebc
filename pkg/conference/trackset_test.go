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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackSetLocal(t *testing.T) {
	t.Run("assigns deterministic source names", func(t *testing.T) {
		s := newTrackSet("alice")

		audio := NewLocalTrack(MediaTypeAudio, VideoTypeNone)
		video := NewLocalTrack(MediaTypeVideo, VideoTypeCamera)
		require.NoError(t, s.registerLocal(audio))
		require.NoError(t, s.registerLocal(video))

		require.Equal(t, "alice-a0", audio.SourceName())
		require.Equal(t, "alice-v0", video.SourceName())
	})

	t.Run("ordinal counts existing tracks of the same type", func(t *testing.T) {
		s := newTrackSet("alice")
		s.allowMultipleVideo = true

		first := NewLocalTrack(MediaTypeVideo, VideoTypeCamera)
		second := NewLocalTrack(MediaTypeVideo, VideoTypeDesktop)
		require.NoError(t, s.registerLocal(first))
		require.NoError(t, s.registerLocal(second))

		require.Equal(t, "alice-v0", first.SourceName())
		require.Equal(t, "alice-v1", second.SourceName())
	})

	t.Run("source name is assigned exactly once", func(t *testing.T) {
		track := NewLocalTrack(MediaTypeAudio, VideoTypeNone)
		require.NoError(t, track.setSourceName("alice-a0"))
		require.NoError(t, track.setSourceName("alice-a0"))
		require.ErrorIs(t, track.setSourceName("alice-a1"), ErrSourceNameReassigned)
		require.Equal(t, "alice-a0", track.SourceName())
	})

	t.Run("rejects second video track of the same video type", func(t *testing.T) {
		s := newTrackSet("alice")

		camera := NewLocalTrack(MediaTypeVideo, VideoTypeCamera)
		require.NoError(t, s.registerLocal(camera))

		dup := NewLocalTrack(MediaTypeVideo, VideoTypeCamera)
		require.ErrorIs(t, s.registerLocal(dup), ErrTrackAlreadyExists)
		// rejection mutates nothing
		require.Empty(t, dup.SourceName())
		require.Len(t, s.localTracks(), 1)

		desktop := NewLocalTrack(MediaTypeVideo, VideoTypeDesktop)
		require.NoError(t, s.registerLocal(desktop))
	})

	t.Run("register is idempotent per track instance", func(t *testing.T) {
		s := newTrackSet("alice")
		track := NewLocalTrack(MediaTypeAudio, VideoTypeNone)
		require.NoError(t, s.registerLocal(track))
		require.NoError(t, s.registerLocal(track))
		require.Len(t, s.localTracks(), 1)
	})

	t.Run("unregister", func(t *testing.T) {
		s := newTrackSet("alice")
		track := NewLocalTrack(MediaTypeAudio, VideoTypeNone)
		require.NoError(t, s.registerLocal(track))
		require.True(t, s.unregisterLocal(track))
		require.False(t, s.unregisterLocal(track))
		require.False(t, s.hasLocal(track))
	})
}

func TestTrackSetRemote(t *testing.T) {
	t.Run("groups by owner", func(t *testing.T) {
		s := newTrackSet("alice")

		bobAudio := NewRemoteTrack("bob", "bob-a0", MediaTypeAudio, VideoTypeNone, false)
		bobVideo := NewRemoteTrack("bob", "bob-v0", MediaTypeVideo, VideoTypeCamera, false)
		carolAudio := NewRemoteTrack("carol", "carol-a0", MediaTypeAudio, VideoTypeNone, false)
		s.registerRemote(bobAudio)
		s.registerRemote(bobVideo)
		s.registerRemote(carolAudio)

		removed := s.removeRemotesOf("bob")
		require.ElementsMatch(t, []*RemoteTrack{bobAudio, bobVideo}, removed)
		require.ElementsMatch(t, []*RemoteTrack{carolAudio}, s.remoteTracks())
	})

	t.Run("filters by carrying session", func(t *testing.T) {
		s := newTrackSet("alice")

		relay := NewRemoteTrack("bob", "bob-a0", MediaTypeAudio, VideoTypeNone, false)
		direct := NewRemoteTrack("bob", "bob-a0", MediaTypeAudio, VideoTypeNone, true)
		s.registerRemote(relay)
		s.registerRemote(direct)

		require.ElementsMatch(t, []*RemoteTrack{relay}, s.remoteTracksOn(false))
		require.ElementsMatch(t, []*RemoteTrack{direct}, s.remoteTracksOn(true))
	})

	t.Run("unregister single remote", func(t *testing.T) {
		s := newTrackSet("alice")
		track := NewRemoteTrack("bob", "bob-a0", MediaTypeAudio, VideoTypeNone, false)
		s.registerRemote(track)
		require.True(t, s.unregisterRemote(track))
		require.False(t, s.unregisterRemote(track))
		require.Empty(t, s.remoteTracks())
	})
}
