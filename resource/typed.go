package resource

// Typed is a view over a UnifiedTable restricted to one type ID and one Go
// value type.
type Typed[T any] struct {
	table  *UnifiedTable
	typeID uint32
}

// NewTyped returns a typed view of table for typeID.
func NewTyped[T any](table *UnifiedTable, typeID uint32) *Typed[T] {
	return &Typed[T]{table: table, typeID: typeID}
}

// Insert adds a value and returns its handle.
func (t *Typed[T]) Insert(value T) Handle {
	return t.table.Insert(t.typeID, value)
}

// Get retrieves a value by handle. Entries of other types are not visible.
func (t *Typed[T]) Get(handle Handle) (T, bool) {
	var zero T
	v, ok := t.table.typed(handle, t.typeID)
	if !ok {
		return zero, false
	}
	tv, ok := v.(T)
	if !ok {
		return zero, false
	}
	return tv, true
}

// Remove drops an entry and returns (value, true) if found.
func (t *Typed[T]) Remove(handle Handle) (T, bool) {
	var zero T
	if _, ok := t.table.typed(handle, t.typeID); !ok {
		return zero, false
	}
	v, ok := t.table.Remove(handle)
	if !ok {
		return zero, false
	}
	tv, _ := v.(T)
	return tv, true
}

// Borrow pins an entry of this type.
func (t *Typed[T]) Borrow(handle Handle) bool {
	if _, ok := t.table.typed(handle, t.typeID); !ok {
		return false
	}
	return t.table.Borrow(handle)
}

// ReturnBorrow releases one borrow and returns the remaining count.
func (t *Typed[T]) ReturnBorrow(handle Handle) (uint32, bool) {
	if _, ok := t.table.typed(handle, t.typeID); !ok {
		return 0, false
	}
	return t.table.ReturnBorrow(handle)
}

// Borrows returns the outstanding borrow count of an entry of this type.
func (t *Typed[T]) Borrows(handle Handle) (uint32, bool) {
	if _, ok := t.table.typed(handle, t.typeID); !ok {
		return 0, false
	}
	return t.table.Borrows(handle)
}

// Len returns the number of active entries of this type.
func (t *Typed[T]) Len() int {
	n := 0
	t.table.store.Each(func(_ Handle, typeID uint32, _ any) bool {
		if typeID == t.typeID {
			n++
		}
		return true
	})
	return n
}

// Each iterates over active entries of this type.
func (t *Typed[T]) Each(fn func(Handle, T) bool) {
	t.table.store.Each(func(h Handle, typeID uint32, v any) bool {
		if typeID != t.typeID {
			return true
		}
		tv, ok := v.(T)
		if !ok {
			return true
		}
		return fn(h, tv)
	})
}

// Table returns the underlying table.
func (t *Typed[T]) Table() *UnifiedTable {
	return t.table
}
