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
	"strconv"
)

// server-advertised conference property keys
const (
	PropVisitorCount      = "visitor-count"
	PropTranscribing      = "transcription-enabled"
	PropBridgeCount       = "bridge-count"
	PropBridgeVersion     = "bridge-version"
	PropAudioSendersLimit = "audio-senders-limit"
	PropVideoSendersLimit = "video-senders-limit"
	PropSourceRewriting   = "supports-source-rewriting"
)

// conferenceProperties is the parsed aggregate state the focus advertises via
// properties-changed notifications.
type conferenceProperties struct {
	visitorCount      int
	transcribing      bool
	bridgeCount       int
	bridgeVersion     string
	audioSendersLimit int
	videoSendersLimit int
	// server can rewrite remote descriptions, so a departed member's tracks
	// only need their source/owner tags cleared instead of a renegotiation
	sourceRewriting bool
}

func (p *conferenceProperties) apply(props map[string]string) {
	for key, value := range props {
		switch key {
		case PropVisitorCount:
			if n, err := strconv.Atoi(value); err == nil {
				p.visitorCount = n
			}
		case PropTranscribing:
			p.transcribing = value == "true"
		case PropBridgeCount:
			if n, err := strconv.Atoi(value); err == nil {
				p.bridgeCount = n
			}
		case PropBridgeVersion:
			p.bridgeVersion = value
		case PropAudioSendersLimit:
			if n, err := strconv.Atoi(value); err == nil {
				p.audioSendersLimit = n
			}
		case PropVideoSendersLimit:
			if n, err := strconv.Atoi(value); err == nil {
				p.videoSendersLimit = n
			}
		case PropSourceRewriting:
			p.sourceRewriting = value == "true"
		}
	}
}

// StartMutedPolicy asks new joiners to start with the given media muted.
type StartMutedPolicy struct {
	Audio bool
	Video bool
}

func (p StartMutedPolicy) encode() string {
	return "audio=" + strconv.FormatBool(p.Audio) + ";video=" + strconv.FormatBool(p.Video)
}
