package dispatch

import "sync"

// Selection is the set of pending orders chosen for the next route plus the
// chosen driver. Insertion order is kept for display; membership is a set.
type Selection struct {
	mu     sync.Mutex
	ids    []int64
	driver int64
}

// Toggle adds id if absent and removes it if present. It reports whether id
// is selected afterwards.
func (s *Selection) Toggle(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return false
		}
	}
	s.ids = append(s.ids, id)
	return true
}

func (s *Selection) Contains(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the selected order ids.
func (s *Selection) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// SetDriver chooses the driver; 0 means none.
func (s *Selection) SetDriver(id int64) {
	s.mu.Lock()
	s.driver = id
	s.mu.Unlock()
}

// Driver returns the chosen driver id, 0 when none.
func (s *Selection) Driver() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver
}

// Clear empties the selection and the driver choice.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.ids = nil
	s.driver = 0
	s.mu.Unlock()
}
