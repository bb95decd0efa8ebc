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

	"github.com/gammazero/deque"
)

// opsQueue runs operations strictly one at a time, in FIFO order. The
// coordinator keeps one queue per media type so a second track replacement
// for the same logical slot can never interleave with one still in flight.
type opsQueue struct {
	lock    sync.Mutex
	ops     deque.Deque[func()]
	running bool
	stopped bool
}

func newOpsQueue() *opsQueue {
	return &opsQueue{}
}

// Enqueue reports false when the queue has been stopped and the operation
// will never run.
func (q *opsQueue) Enqueue(op func()) bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.stopped {
		return false
	}
	q.ops.PushBack(op)
	if !q.running {
		q.running = true
		go q.run()
	}
	return true
}

func (q *opsQueue) run() {
	for {
		q.lock.Lock()
		if q.ops.Len() == 0 {
			q.running = false
			q.lock.Unlock()
			return
		}
		op := q.ops.PopFront()
		q.lock.Unlock()

		op()
	}
}

// Stop refuses new operations. Ones already accepted still run to completion
// so every caller waiting on an accepted operation is signalled exactly once.
func (q *opsQueue) Stop() {
	q.lock.Lock()
	q.stopped = true
	q.lock.Unlock()
}
