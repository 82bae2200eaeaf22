package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArmFiresOnExpiry(t *testing.T) {
	table := NewTable(1)
	var fired atomic.Bool
	done := make(chan struct{})

	table.Arm(0, 10*time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
	assert.True(t, fired.Load())
}

func TestCancelFiresCallbackPromptly(t *testing.T) {
	table := NewTable(1)
	var fired atomic.Bool
	done := make(chan struct{})

	table.Arm(0, time.Hour, func() {
		fired.Store(true)
		close(done)
	})
	table.Cancel(0)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancel did not fire callback promptly")
	}
	assert.True(t, fired.Load())
}

func TestCancelFiresExactlyOnce(t *testing.T) {
	table := NewTable(1)
	var calls atomic.Int32
	done := make(chan struct{})

	table.Arm(0, time.Hour, func() {
		calls.Add(1)
		close(done)
	})
	table.Cancel(0)
	table.Cancel(0)
	table.Cancel(0)

	<-done
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCancelOnIdleSlotIsNoop(t *testing.T) {
	table := NewTable(1)
	assert.NotPanics(t, func() {
		table.Cancel(0)
	})
}

func TestRearmReplacesPreviousAttempt(t *testing.T) {
	table := NewTable(1)
	var firstFired, secondFired atomic.Bool
	secondDone := make(chan struct{})

	table.Arm(0, time.Hour, func() { firstFired.Store(true) })
	table.Arm(0, 10*time.Millisecond, func() {
		secondFired.Store(true)
		close(secondDone)
	})

	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("second attempt's callback did not fire")
	}
	assert.True(t, secondFired.Load())
	assert.False(t, firstFired.Load())
}

func TestSlotsAreIndependent(t *testing.T) {
	table := NewTable(2)
	var slot0Fired, slot1Fired atomic.Bool
	done0 := make(chan struct{})

	table.Arm(0, 10*time.Millisecond, func() {
		slot0Fired.Store(true)
		close(done0)
	})
	table.Arm(1, time.Hour, func() { slot1Fired.Store(true) })

	<-done0
	assert.True(t, slot0Fired.Load())
	assert.False(t, slot1Fired.Load())
}
