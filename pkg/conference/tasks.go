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
	"time"
)

// named timer slots owned by the conference
const (
	taskDeferredP2P = "deferred-p2p"
	taskSITimeout   = "session-initiate-timeout"
	taskICERetry    = "ice-retry"
)

// taskGroup owns the conference's deferred timers. Scheduling a name that is
// already pending replaces it; leaving the conference cancels the whole group
// so no stale callback can fire against a disposed conference.
type taskGroup struct {
	lock    sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func newTaskGroup() *taskGroup {
	return &taskGroup{
		timers: make(map[string]*time.Timer),
	}
}

func (g *taskGroup) Schedule(name string, delay time.Duration, f func()) {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.stopped {
		return
	}
	if t, ok := g.timers[name]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		g.lock.Lock()
		if g.stopped || g.timers[name] != timer {
			// cancelled or replaced while waiting to run
			g.lock.Unlock()
			return
		}
		delete(g.timers, name)
		g.lock.Unlock()
		f()
	})
	g.timers[name] = timer
}

func (g *taskGroup) Cancel(name string) {
	g.lock.Lock()
	defer g.lock.Unlock()
	if t, ok := g.timers[name]; ok {
		t.Stop()
		delete(g.timers, name)
	}
}

func (g *taskGroup) Pending(name string) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	_, ok := g.timers[name]
	return ok
}

// CancelAll stops every pending timer and rejects future scheduling.
func (g *taskGroup) CancelAll() {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.stopped = true
	for name, t := range g.timers {
		t.Stop()
		delete(g.timers, name)
	}
}
