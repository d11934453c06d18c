package resource

import (
	"errors"
	"sync"
)

var (
	ErrClosed        = errors.New("resource store closed")
	ErrUnknownHandle = errors.New("unknown handle")
	ErrBorrowed      = errors.New("handle has outstanding borrows")
)

// Store is the slot array behind a Table. Handle h names slot h-1. Freed
// slots are reused most recently freed first, so a handle value can come
// back after its entry is dropped.
type Store struct {
	slots  []slot
	free   []Handle
	live   int
	mu     sync.RWMutex
	closed bool
}

type slot struct {
	value   any
	typeID  uint32
	borrows uint32
	used    bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		slots: make([]slot, 0, 64),
		free:  make([]Handle, 0, 16),
	}
}

// at returns the occupied slot for h, or nil. Callers hold mu.
func (s *Store) at(h Handle) *slot {
	if h == 0 || int(h) > len(s.slots) {
		return nil
	}
	sl := &s.slots[h-1]
	if !sl.used {
		return nil
	}
	return sl
}

// Create stores value under a new handle.
func (s *Store) Create(typeID uint32, value any) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	sl := slot{value: value, typeID: typeID, used: true}
	s.live++
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[h-1] = sl
		return h, nil
	}
	s.slots = append(s.slots, sl)
	return Handle(len(s.slots)), nil
}

// Get returns the value stored under h and its type ID.
func (s *Store) Get(h Handle) (any, uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl := s.at(h)
	if sl == nil {
		return nil, 0, false
	}
	return sl.value, sl.typeID, true
}

// Drop frees h. It fails with ErrBorrowed while borrows are outstanding.
func (s *Store) Drop(h Handle) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.at(h)
	if sl == nil {
		return nil, ErrUnknownHandle
	}
	if sl.borrows > 0 {
		return nil, ErrBorrowed
	}
	v := sl.value
	*sl = slot{}
	s.free = append(s.free, h)
	s.live--
	return v, nil
}

// Borrow pins h and returns the new borrow count.
func (s *Store) Borrow(h Handle) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.at(h)
	if sl == nil {
		return 0, false
	}
	sl.borrows++
	return sl.borrows, true
}

// ReturnBorrow releases one borrow on h and returns how many remain.
func (s *Store) ReturnBorrow(h Handle) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.at(h)
	if sl == nil || sl.borrows == 0 {
		return 0, false
	}
	sl.borrows--
	return sl.borrows, true
}

// Borrows returns the outstanding borrow count of h.
func (s *Store) Borrows(h Handle) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl := s.at(h)
	if sl == nil {
		return 0, false
	}
	return sl.borrows, true
}

// Len returns the number of occupied slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Each calls fn for every occupied slot in handle order until fn returns
// false. fn runs with the store read-locked and must not modify it.
func (s *Store) Each(fn func(h Handle, typeID uint32, value any) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.slots {
		sl := &s.slots[i]
		if sl.used && !fn(Handle(i+1), sl.typeID, sl.value) {
			return
		}
	}
}

// drain closes the store and returns a drop event for every entry that was
// still occupied, borrowed or not.
func (s *Store) drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var dropped []Event
	for i := range s.slots {
		if sl := &s.slots[i]; sl.used {
			dropped = append(dropped, Event{
				Value:  sl.value,
				Handle: Handle(i + 1),
				TypeID: sl.typeID,
				Type:   EventDropped,
			})
		}
	}
	s.slots = nil
	s.free = nil
	s.live = 0
	return dropped
}
