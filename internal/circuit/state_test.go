package circuit

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestState_StartsOnline(t *testing.T) {
	s := NewState("postgres", quietLogger())

	assert.False(t, s.IsOffline())
	assert.Equal(t, Online, s.Status())
	assert.True(t, s.TrippedAt().IsZero())
}

func TestState_MarkOfflineIsTerminal(t *testing.T) {
	s := NewState("postgres", quietLogger())
	s.MarkOffline(errors.New("dial tcp: connection refused"))

	assert.True(t, s.IsOffline())
	assert.Equal(t, "OFFLINE", s.Status().String())
	assert.False(t, s.TrippedAt().IsZero())

	s.MarkOffline(nil)
	assert.True(t, s.IsOffline())
}

// TestState_ConcurrentTrip tests that racing writers fire callbacks exactly once
func TestState_ConcurrentTrip(t *testing.T) {
	s := NewState("redis", quietLogger())
	var fired int32
	s.OnOffline(func(error) { atomic.AddInt32(&fired, 1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.MarkOffline(errors.New("timeout"))
		}()
	}
	wg.Wait()

	assert.True(t, s.IsOffline())
	assert.Equal(t, int32(1), fired)
}

func TestState_IndependentInstances(t *testing.T) {
	a := NewState("a", quietLogger())
	b := NewState("b", quietLogger())
	a.MarkOffline(nil)

	assert.True(t, a.IsOffline())
	assert.False(t, b.IsOffline())
}
