// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagchain/corenode/co"
)

func TestSignalBroadcastBeforeWait(t *testing.T) {
	const payload = "payload"
	var sig co.Signal
	sig.Broadcast(payload)

	var ws []co.Waiter
	for i := 0; i < 10; i++ {
		ws = append(ws, sig.NewWaiter())
	}

	var noWaiters int
	for _, w := range ws {
		select {
		case <-w.C():
		default:
			noWaiters++
		}
	}
	assert.Equal(t, 10, noWaiters)
}

func TestSignalBroadcastAfterWait(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	const numberOfWaiters = 10
	for i := 0; i < numberOfWaiters; i++ {
		ws = append(ws, sig.NewWaiter())
	}

	const payload = "payload"
	sig.Broadcast(payload)

	validateSourceForWaiters(t, numberOfWaiters, payload, ws)
}

func TestSignalBroadcastConsecutiveValues(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	const numberOfWaiters = 10
	for i := 0; i < numberOfWaiters; i++ {
		ws = append(ws, sig.NewWaiter())
	}

	// Each waiter is a buffered channel of depth 1 fed by a non-blocking send,
	// so a later broadcast is dropped while an earlier one is unread; the
	// waiters are drained after every broadcast.
	for i := 0; i < numberOfWaiters; i++ {
		source := strconv.Itoa(i)
		sig.Broadcast(source)
		validateSourceForWaiters(t, numberOfWaiters, source, ws)
	}
}

func TestSignalNotifiesOneWaiterOnly(t *testing.T) {
	var sig co.Signal
	w1 := sig.NewWaiter()
	w2 := sig.NewWaiter()

	sig.Signal("leader")

	var notified int
	select {
	case <-w1.C():
		notified++
	default:
	}
	select {
	case <-w2.C():
		notified++
	default:
	}
	assert.Equal(t, 1, notified)
}

func validateSourceForWaiters(t *testing.T, numberOfWaiters int, want string, ws []co.Waiter) {
	var signalled int
	for _, w := range ws {
		select {
		case info := <-w.C():
			signalled++
			assert.Equal(t, want, info.Source)
		default:
		}
	}
	assert.Equal(t, numberOfWaiters, signalled)
}
