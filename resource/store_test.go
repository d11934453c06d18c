package resource

import (
	"errors"
	"testing"
)

func TestStore_HandleReuse(t *testing.T) {
	s := NewStore()

	a, _ := s.Create(1, "a")
	b, _ := s.Create(1, "b")
	if a == 0 || b == 0 || a == b {
		t.Fatalf("handles = %d, %d", a, b)
	}

	if _, err := s.Drop(a); err != nil {
		t.Fatal(err)
	}
	c, _ := s.Create(2, "c")
	if c != a {
		t.Fatalf("freed handle %d not reused, got %d", a, c)
	}
	v, typeID, ok := s.Get(c)
	if !ok || v != "c" || typeID != 2 {
		t.Fatalf("Get = %v, %d, %v", v, typeID, ok)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestStore_DropErrors(t *testing.T) {
	s := NewStore()
	h, _ := s.Create(1, "x")

	if _, err := s.Drop(h + 1); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("Drop of unknown handle = %v", err)
	}
	if _, err := s.Drop(0); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("Drop(0) = %v", err)
	}

	if n, ok := s.Borrow(h); !ok || n != 1 {
		t.Fatalf("Borrow = %d, %v", n, ok)
	}
	if _, err := s.Drop(h); !errors.Is(err, ErrBorrowed) {
		t.Fatalf("Drop while borrowed = %v", err)
	}
	if n, ok := s.Borrows(h); !ok || n != 1 {
		t.Fatalf("Borrows = %d, %v", n, ok)
	}
	if n, ok := s.ReturnBorrow(h); !ok || n != 0 {
		t.Fatalf("ReturnBorrow = %d, %v", n, ok)
	}
	if _, err := s.Drop(h); err != nil {
		t.Fatalf("Drop after borrow returned: %v", err)
	}
	if _, err := s.Drop(h); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("double Drop = %v", err)
	}
}

func TestStore_EachInHandleOrder(t *testing.T) {
	s := NewStore()
	for _, v := range []string{"a", "b", "c", "d"} {
		s.Create(1, v)
	}
	s.Drop(2)

	var got []Handle
	s.Each(func(h Handle, _ uint32, _ any) bool {
		got = append(got, h)
		return true
	})
	if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 4 {
		t.Fatalf("Each visited %v", got)
	}

	n := 0
	s.Each(func(Handle, uint32, any) bool {
		n++
		return false
	})
	if n != 1 {
		t.Fatalf("Each did not stop early: %d calls", n)
	}
}

func TestStore_Closed(t *testing.T) {
	s := NewStore()
	s.Create(1, "a")

	if got := s.drain(); len(got) != 1 {
		t.Fatalf("drain returned %d events", len(got))
	}
	if got := s.drain(); got != nil {
		t.Fatalf("second drain returned %v", got)
	}
	if _, err := s.Create(1, "b"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Create after close = %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d after close", s.Len())
	}
}

func TestEventType_String(t *testing.T) {
	tests := map[EventType]string{
		EventCreated:        "created",
		EventDropped:        "dropped",
		EventBorrowed:       "borrowed",
		EventBorrowReturned: "borrow_returned",
		EventType(99):       "unknown",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}
