package provider

import (
	"sync"

	"github.com/dimitrije/unimag/internal/models"
	"github.com/google/uuid"
)

// subscriber queues changes without bound so a publisher never waits on a
// slow handler.
type subscriber struct {
	id      string
	fn      func(models.AuthChange)
	mu      sync.Mutex
	pending []models.AuthChange
	wake    chan struct{}
	done    chan struct{}
}

func (s *subscriber) push(change models.AuthChange) {
	s.mu.Lock()
	s.pending = append(s.pending, change)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) next() (models.AuthChange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return models.AuthChange{}, false
	}
	change := s.pending[0]
	s.pending[0] = models.AuthChange{}
	s.pending = s.pending[1:]
	return change, true
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.wake:
		case <-s.done:
			return
		}
		for {
			change, ok := s.next()
			if !ok {
				break
			}
			select {
			case <-s.done:
				return
			default:
			}
			s.fn(change)
		}
	}
}

// Hub fans auth changes out to subscribers. Each subscriber receives changes
// in publish order on its own goroutine.
type Hub struct {
	subscribers map[string]*subscriber
	mu          sync.RWMutex
	// publishMu keeps one global order across concurrent publishers.
	publishMu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*subscriber)}
}

// Subscribe registers fn and returns a function that releases it. The
// release function is safe to call more than once.
func (h *Hub) Subscribe(fn func(models.AuthChange)) func() {
	sub := &subscriber{
		id:   uuid.New().String(),
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()

	go sub.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, sub.id)
			h.mu.Unlock()
			close(sub.done)
		})
	}
}

// Publish queues the change for every subscriber and returns without waiting
// for delivery. Callers may hold their own locks.
func (h *Hub) Publish(event models.AuthEvent, session *models.Session) {
	change := models.AuthChange{Event: event, Session: session}

	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.push(change)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
