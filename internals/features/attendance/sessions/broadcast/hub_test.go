package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce_backend/internals/features/attendance/sessions/model"
)

func receive(t *testing.T, s *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-s.C():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestHubFansOutToMatchingSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(8)
	go h.Run(ctx)

	mine := uuid.New()
	all := h.Subscribe(4, nil)
	onlyMine := h.Subscribe(4, func(ev Event) bool { return ev.EmployeeID == mine })
	defer all.Close()
	defer onlyMine.Close()

	other := uuid.New()
	h.Publish(other, EventCheckedIn, model.AttendanceSessionModel{AttendanceSessionEmployeeID: other})
	h.Publish(mine, EventCheckedIn, model.AttendanceSessionModel{AttendanceSessionEmployeeID: mine})

	assert.Equal(t, other, receive(t, all).EmployeeID)
	assert.Equal(t, mine, receive(t, all).EmployeeID)
	assert.Equal(t, mine, receive(t, onlyMine).EmployeeID)
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub(1) // no dispatcher running

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(uuid.New(), EventCheckedOut, model.AttendanceSessionModel{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestPublishSnapshotIsCopied(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(4)
	go h.Run(ctx)
	sub := h.Subscribe(4, nil)
	defer sub.Close()

	s := model.AttendanceSessionModel{AttendanceSessionStatus: model.SessionCheckedIn}
	h.Publish(uuid.New(), EventCheckedIn, s)
	s.AttendanceSessionStatus = model.SessionCheckedOut

	ev := receive(t, sub)
	require.NotNil(t, ev.Session)
	assert.Equal(t, model.SessionCheckedIn, ev.Session.AttendanceSessionStatus)
}

func TestRunClosesSubscriptionsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(4)
	sub := h.Subscribe(1, nil)

	stopped := make(chan struct{})
	go func() { h.Run(ctx); close(stopped) }()
	cancel()
	<-stopped

	_, ok := <-sub.C()
	assert.False(t, ok)
	sub.Close() // idempotent
}
