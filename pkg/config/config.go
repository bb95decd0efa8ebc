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

package config

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrBackToP2PDelayNegative = errors.New("p2p back_to_p2p_delay must not be negative")
	ErrICERetriesNegative     = errors.New("ice max_retries must not be negative")
)

// Config holds everything the conference coordinator needs at construction.
// There are no ambient defaults read elsewhere; collaborators receive the
// relevant sub-config explicitly.
type Config struct {
	P2P     P2PConfig     `yaml:"p2p,omitempty"`
	ICE     ICEConfig     `yaml:"ice,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`

	// how long to wait for the focus to initiate a relay session once a
	// second participant is present, before emitting a diagnostic event
	SessionInitiateTimeout time.Duration `yaml:"session_initiate_timeout,omitempty"`

	// oldest media relay version the client can negotiate with; empty
	// disables the check
	MinBridgeVersion string `yaml:"min_bridge_version,omitempty"`

	// identity of the conference focus service on the signaling channel
	FocusIdentity string `yaml:"focus_identity,omitempty"`
}

type P2PConfig struct {
	Enabled bool `yaml:"enabled"`

	// delay before switching back to a direct session after a third
	// participant departs, to ride out transient churn such as reloads
	BackToP2PDelay time.Duration `yaml:"back_to_p2p_delay,omitempty"`
}

type ICEConfig struct {
	// floor of the exponential backoff between relay ICE restart attempts
	RetryBaseDelay time.Duration `yaml:"retry_base_delay,omitempty"`
	// restarts attempted before the interruption is escalated to fatal
	MaxRetries int `yaml:"max_retries,omitempty"`
}

type LoggingConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		P2P: P2PConfig{
			Enabled:        true,
			BackToP2PDelay: 5 * time.Second,
		},
		ICE: ICEConfig{
			RetryBaseDelay: time.Second,
			MaxRetries:     3,
		},
		SessionInitiateTimeout: 10 * time.Second,
		FocusIdentity:          "focus",
	}
}

// NewConfig returns the default config overridden by the YAML string, if any.
func NewConfig(confString string) (*Config, error) {
	conf := DefaultConfig()
	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), conf); err != nil {
			return nil, errors.Wrap(err, "could not parse config")
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) Validate() error {
	if c.P2P.BackToP2PDelay < 0 {
		return ErrBackToP2PDelayNegative
	}
	if c.ICE.MaxRetries < 0 {
		return ErrICERetriesNegative
	}
	if c.ICE.RetryBaseDelay <= 0 {
		c.ICE.RetryBaseDelay = time.Second
	}
	return nil
}
