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
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestTaskGroup(t *testing.T) {
	t.Run("scheduled task fires once", func(t *testing.T) {
		g := newTaskGroup()
		fired := atomic.NewInt32(0)
		g.Schedule("task", time.Millisecond, func() { fired.Inc() })

		require.Eventually(t, func() bool {
			return fired.Load() == 1
		}, time.Second, time.Millisecond)
		require.False(t, g.Pending("task"))
	})

	t.Run("rescheduling replaces the pending timer", func(t *testing.T) {
		g := newTaskGroup()
		first := atomic.NewBool(false)
		second := atomic.NewBool(false)
		g.Schedule("task", 50*time.Millisecond, func() { first.Store(true) })
		g.Schedule("task", time.Millisecond, func() { second.Store(true) })

		require.Eventually(t, func() bool {
			return second.Load()
		}, time.Second, time.Millisecond)
		time.Sleep(100 * time.Millisecond)
		require.False(t, first.Load())
	})

	t.Run("cancel prevents firing", func(t *testing.T) {
		g := newTaskGroup()
		fired := atomic.NewBool(false)
		g.Schedule("task", 10*time.Millisecond, func() { fired.Store(true) })
		require.True(t, g.Pending("task"))
		g.Cancel("task")
		require.False(t, g.Pending("task"))

		time.Sleep(30 * time.Millisecond)
		require.False(t, fired.Load())
	})

	t.Run("cancel all rejects future scheduling", func(t *testing.T) {
		g := newTaskGroup()
		fired := atomic.NewBool(false)
		g.Schedule("task", 10*time.Millisecond, func() { fired.Store(true) })
		g.CancelAll()
		g.Schedule("late", time.Millisecond, func() { fired.Store(true) })

		time.Sleep(30 * time.Millisecond)
		require.False(t, fired.Load())
		require.False(t, g.Pending("late"))
	})
}
