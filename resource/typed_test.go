package resource

import "testing"

type callback struct{ name string }

func TestTyped_IsolatesTypeIDs(t *testing.T) {
	table := NewTable()
	listeners := NewTyped[*callback](table, 1)
	objects := NewTyped[string](table, 2)

	cb := &callback{name: "click"}
	h := listeners.Insert(cb)
	o := objects.Insert("node")

	got, ok := listeners.Get(h)
	if !ok || got != cb {
		t.Fatal("Get returned wrong listener")
	}
	if _, ok := listeners.Get(o); ok {
		t.Fatal("listener view must not see object entries")
	}
	if _, ok := objects.Remove(h); ok {
		t.Fatal("object view must not remove listener entries")
	}

	if listeners.Len() != 1 || objects.Len() != 1 {
		t.Fatalf("Len = %d/%d, want 1/1", listeners.Len(), objects.Len())
	}
}

func TestTyped_BorrowAndEach(t *testing.T) {
	table := NewTable()
	listeners := NewTyped[*callback](table, 1)

	a := listeners.Insert(&callback{name: "a"})
	listeners.Insert(&callback{name: "b"})

	if !listeners.Borrow(a) {
		t.Fatal("Borrow failed")
	}
	if _, ok := listeners.Remove(a); ok {
		t.Fatal("Remove should fail while borrowed")
	}
	if n, ok := listeners.Borrows(a); !ok || n != 1 {
		t.Fatalf("Borrows = %d, %v", n, ok)
	}
	if _, ok := NewTyped[string](table, 2).Borrows(a); ok {
		t.Fatal("Borrows visible through another type's view")
	}
	if n, ok := listeners.ReturnBorrow(a); !ok || n != 0 {
		t.Fatalf("ReturnBorrow = %d, %v", n, ok)
	}

	var names []string
	listeners.Each(func(_ Handle, cb *callback) bool {
		names = append(names, cb.name)
		return true
	})
	if len(names) != 2 {
		t.Fatalf("Each visited %d entries, want 2", len(names))
	}

	if _, ok := listeners.Remove(a); !ok {
		t.Fatal("Remove failed after borrow returned")
	}
	if listeners.Table() != table {
		t.Fatal("Table() mismatch")
	}
}
