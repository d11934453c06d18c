package resource

import (
	"sync"
)

// UnifiedTable is a Store that reports lifecycle changes to observers.
// Observers run synchronously on the goroutine that made the change, after
// the store lock is released.
type UnifiedTable struct {
	store     *Store
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *UnifiedTable {
	return &UnifiedTable{store: NewStore()}
}

// Insert adds a value and returns its handle, or 0 once the table is closed.
func (t *UnifiedTable) Insert(typeID uint32, value any) Handle {
	h, err := t.store.Create(typeID, value)
	if err != nil {
		return 0
	}
	t.notify(Event{Type: EventCreated, Handle: h, TypeID: typeID, Value: value})
	return h
}

// Get retrieves a value by handle.
func (t *UnifiedTable) Get(h Handle) (any, bool) {
	v, _, ok := t.store.Get(h)
	return v, ok
}

func (t *UnifiedTable) typed(h Handle, typeID uint32) (any, bool) {
	v, got, ok := t.store.Get(h)
	if !ok || got != typeID {
		return nil, false
	}
	return v, true
}

// Remove drops an entry and returns its value. It fails while the entry is
// borrowed.
func (t *UnifiedTable) Remove(h Handle) (any, bool) {
	_, typeID, _ := t.store.Get(h)
	v, err := t.store.Drop(h)
	if err != nil {
		return nil, false
	}
	t.notify(Event{Type: EventDropped, Handle: h, TypeID: typeID, Value: v})
	return v, true
}

// Borrow pins an entry. Remove fails while borrows are outstanding.
func (t *UnifiedTable) Borrow(h Handle) bool {
	n, ok := t.store.Borrow(h)
	if !ok {
		return false
	}
	v, typeID, _ := t.store.Get(h)
	t.notify(Event{Type: EventBorrowed, Handle: h, TypeID: typeID, Value: v, Borrows: n})
	return true
}

// ReturnBorrow releases one borrow and returns the remaining count.
func (t *UnifiedTable) ReturnBorrow(h Handle) (uint32, bool) {
	n, ok := t.store.ReturnBorrow(h)
	if !ok {
		return 0, false
	}
	v, typeID, _ := t.store.Get(h)
	t.notify(Event{Type: EventBorrowReturned, Handle: h, TypeID: typeID, Value: v, Borrows: n})
	return n, true
}

// Borrows returns the outstanding borrow count of h.
func (t *UnifiedTable) Borrows(h Handle) (uint32, bool) {
	return t.store.Borrows(h)
}

// Subscribe adds an observer for lifecycle events.
func (t *UnifiedTable) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of entries.
func (t *UnifiedTable) Len() int {
	return t.store.Len()
}

// Close drops every entry, borrowed or not, and reports each as dropped.
// Later inserts fail. Close is idempotent.
func (t *UnifiedTable) Close() error {
	for _, e := range t.store.drain() {
		t.notify(e)
	}
	return nil
}

func (t *UnifiedTable) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
