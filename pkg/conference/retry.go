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

// retrySupervisor tracks consecutive relay ICE failures and hands out
// exponentially growing restart delays until the budget is exhausted. A
// successful restoration resets the counter. The actual timer lives in the
// conference task group so it is cancelled with everything else on leave.
type retrySupervisor struct {
	lock sync.Mutex

	baseDelay  time.Duration
	maxRetries int
	failures   int
}

func newRetrySupervisor(baseDelay time.Duration, maxRetries int) *retrySupervisor {
	return &retrySupervisor{
		baseDelay:  baseDelay,
		maxRetries: maxRetries,
	}
}

// NextDelay records a failure and returns the backoff before the next
// restart attempt. ok is false once the retry budget is exhausted, at which
// point the interruption is no longer recoverable.
func (r *retrySupervisor) NextDelay() (delay time.Duration, ok bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.failures >= r.maxRetries {
		return 0, false
	}
	delay = r.baseDelay << r.failures
	r.failures++
	return delay, true
}

func (r *retrySupervisor) Reset() {
	r.lock.Lock()
	r.failures = 0
	r.lock.Unlock()
}

func (r *retrySupervisor) Failures() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.failures
}
