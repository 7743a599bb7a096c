package api

import (
	"sync"
	"time"

	"railmail-service/internal/usecase"

	"github.com/google/uuid"
)

// Batch is an uploaded set of parsed tickets awaiting review
type Batch struct {
	ID        string
	CreatedAt time.Time
	Failures  []string
	Message   string

	mu      sync.Mutex
	session *usecase.ReviewSession
}

// BatchStore keeps review sessions between requests. Batches expire after
// ttl.
type BatchStore struct {
	mu      sync.Mutex
	batches map[string]*Batch
	ttl     time.Duration
	now     func() time.Time
}

// NewBatchStore creates an empty store
func NewBatchStore(ttl time.Duration) *BatchStore {
	return &BatchStore{
		batches: make(map[string]*Batch),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create registers a session and returns its batch
func (s *BatchStore) Create(session *usecase.ReviewSession, failures []string, message string) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	b := &Batch{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
		Failures:  failures,
		Message:   message,
		session:   session,
	}
	s.batches[b.ID] = b
	return b
}

// Get returns a live batch
func (s *BatchStore) Get(id string) (*Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok || s.expired(b) {
		delete(s.batches, id)
		return nil, false
	}
	return b, true
}

// Delete removes a batch
func (s *BatchStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
}

// Len returns the number of stored batches
func (s *BatchStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *BatchStore) expired(b *Batch) bool {
	return s.ttl > 0 && s.now().Sub(b.CreatedAt) > s.ttl
}

func (s *BatchStore) evictLocked() {
	for id, b := range s.batches {
		if s.expired(b) {
			delete(s.batches, id)
		}
	}
}

// Do runs fn with exclusive access to the batch's session
func (b *Batch) Do(fn func(*usecase.ReviewSession) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.session)
}
