package classotp

import (
	"context"
	"sync"
	"time"
)

// Session is the single live class code window.
type Session struct {
	ID        string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TotalUses int // always len(used-by set)
}

// Live reports whether the code can still be reused by an issuer at now.
func (s *Session) Live(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Expired reports whether a redemption at now must be rejected.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the single-slot holder of the class code session. Implementations must make
// CreateIfAbsent and Reserve atomic so concurrent requests agree on one session and one
// redemption per student.
type Store interface {
	// Current returns the stored session, expired or not, or nil when the slot is empty.
	Current(ctx context.Context) (*Session, error)
	// CreateIfAbsent stores s unless a session live at now is present. It returns the
	// session that ends up in the slot and whether it is s.
	CreateIfAbsent(ctx context.Context, s Session, now time.Time) (*Session, bool, error)
	// Invalidate empties the slot if it still holds session id.
	Invalidate(ctx context.Context, id string) error
	// Reserve adds registerNo to the used-by set of session id. It returns false when the
	// student is already in the set and errSessionReplaced when id is no longer current.
	Reserve(ctx context.Context, id, registerNo string) (bool, error)
	// Release undoes a Reserve whose redemption did not complete.
	Release(ctx context.Context, id, registerNo string) error
	// Uses returns the size of the used-by set of session id.
	Uses(ctx context.Context, id string) (int, error)
}

// MemoryStore keeps the session in process memory. Suitable for a single instance.
type MemoryStore struct {
	mu      sync.Mutex
	current *Session
	usedBy  map[string]struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) snapshot() *Session {
	s := *m.current
	s.TotalUses = len(m.usedBy)
	return &s
}

// Current returns a copy of the stored session.
func (m *MemoryStore) Current(_ context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, nil
	}
	return m.snapshot(), nil
}

// CreateIfAbsent replaces an empty or expired slot with s.
func (m *MemoryStore) CreateIfAbsent(_ context.Context, s Session, now time.Time) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.Live(now) {
		return m.snapshot(), false, nil
	}
	s.TotalUses = 0
	m.current = &s
	m.usedBy = make(map[string]struct{})
	return m.snapshot(), true, nil
}

// Invalidate clears the slot when it still holds id.
func (m *MemoryStore) Invalidate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.ID == id {
		m.current = nil
		m.usedBy = nil
	}
	return nil
}

// Reserve is a test-and-set on the used-by set.
func (m *MemoryStore) Reserve(_ context.Context, id, registerNo string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ID != id {
		return false, errSessionReplaced
	}
	if _, ok := m.usedBy[registerNo]; ok {
		return false, nil
	}
	m.usedBy[registerNo] = struct{}{}
	return true, nil
}

// Release removes registerNo from the used-by set of id.
func (m *MemoryStore) Release(_ context.Context, id, registerNo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.ID == id {
		delete(m.usedBy, registerNo)
	}
	return nil
}

// Uses returns how many students redeemed session id.
func (m *MemoryStore) Uses(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ID != id {
		return 0, errSessionReplaced
	}
	return len(m.usedBy), nil
}
