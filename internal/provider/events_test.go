package provider

import (
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/unimag/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []models.AuthEvent
}

func (r *recorder) record(change models.AuthChange) {
	r.mu.Lock()
	r.events = append(r.events, change.Event)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []models.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuthEvent(nil), r.events...)
}

func TestHub_Subscribe(t *testing.T) {
	hub := NewHub()

	unsubscribe := hub.Subscribe(func(models.AuthChange) {})
	defer unsubscribe()

	assert.Equal(t, 1, hub.Len())
}

func TestHub_PublishInOrder(t *testing.T) {
	hub := NewHub()
	rec := &recorder{}
	unsubscribe := hub.Subscribe(rec.record)
	defer unsubscribe()

	hub.Publish(models.EventSignedIn, &models.Session{})
	hub.Publish(models.EventTokenRefreshed, &models.Session{})
	hub.Publish(models.EventSignedOut, nil)

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []models.AuthEvent{
		models.EventSignedIn,
		models.EventTokenRefreshed,
		models.EventSignedOut,
	}, rec.snapshot())
}

func TestHub_MultipleSubscribers(t *testing.T) {
	hub := NewHub()
	first, second := &recorder{}, &recorder{}
	defer hub.Subscribe(first.record)()
	defer hub.Subscribe(second.record)()

	hub.Publish(models.EventSignedIn, &models.Session{})

	require.Eventually(t, func() bool {
		return len(first.snapshot()) == 1 && len(second.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	rec := &recorder{}
	unsubscribe := hub.Subscribe(rec.record)

	unsubscribe()
	unsubscribe()
	hub.Publish(models.EventSignedIn, &models.Session{})

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.Equal(t, 0, hub.Len())
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()

	assert.NotPanics(t, func() {
		hub.Publish(models.EventSignedOut, nil)
	})
}

func TestHub_PublishDoesNotWaitForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	release := make(chan struct{})
	var mu sync.Mutex
	var got []int

	unsubscribe := hub.Subscribe(func(change models.AuthChange) {
		<-release
		mu.Lock()
		got = append(got, int(change.Session.ExpiresAt.Unix()))
		mu.Unlock()
	})
	defer unsubscribe()

	const backlog = 500
	published := make(chan struct{})
	go func() {
		for i := 0; i < backlog; i++ {
			hub.Publish(models.EventTokenRefreshed, &models.Session{ExpiresAt: time.Unix(int64(i), 0)})
		}
		close(published)
	}()

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked behind a busy subscriber")
	}

	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == backlog
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		require.Equal(t, i, v)
	}
}
