package watch

import "sync"

// SeenSet records listing fingerprints already alerted on. It grows
// monotonically, lives in process memory only, and resets on restart.
// A fingerprint enters the set if and only if an alert for it was
// dispatched successfully. The mutex exists for the ops server, which
// reads the count from outside the loop goroutine.
type SeenSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewSeenSet constructs an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

// Seen reports whether the fingerprint has been alerted on.
func (s *SeenSet) Seen(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[fingerprint]
	return ok
}

// Add records a fingerprint after a successful dispatch.
func (s *SeenSet) Add(fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[fingerprint] = struct{}{}
}

// Len returns the number of fingerprints recorded.
func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
