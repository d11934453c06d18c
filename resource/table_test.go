package resource

import (
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestUnifiedTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(1, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok || val != "test" {
		t.Fatalf("Get = %v, %v", val, ok)
	}
	if _, ok := table.typed(h, 2); ok {
		t.Fatal("lookup with the wrong type ID should fail")
	}

	val, ok = table.Remove(h)
	if !ok || val != "test" {
		t.Fatalf("Remove = %v, %v", val, ok)
	}
	if _, ok := table.Get(h); ok {
		t.Fatal("Get succeeded after Remove")
	}
	if table.Len() != 0 {
		t.Fatalf("Len = %d after Remove", table.Len())
	}
}

func TestUnifiedTable_ObserverSequence(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(7, "cb")
	if !table.Borrow(h) || !table.Borrow(h) {
		t.Fatal("Borrow failed")
	}
	if _, ok := table.Remove(h); ok {
		t.Fatal("Remove should fail while borrowed")
	}
	table.ReturnBorrow(h)
	table.ReturnBorrow(h)
	if _, ok := table.ReturnBorrow(h); ok {
		t.Fatal("ReturnBorrow past zero should fail")
	}
	if _, ok := table.Remove(h); !ok {
		t.Fatal("Remove should succeed once borrows are returned")
	}

	want := []struct {
		typ     EventType
		borrows uint32
	}{
		{EventCreated, 0},
		{EventBorrowed, 1},
		{EventBorrowed, 2},
		{EventBorrowReturned, 1},
		{EventBorrowReturned, 0},
		{EventDropped, 0},
	}
	if len(obs.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(obs.events), len(want))
	}
	for i, e := range obs.events {
		if e.Type != want[i].typ || e.Borrows != want[i].borrows {
			t.Fatalf("event %d = %s/%d, want %s/%d", i, e.Type, e.Borrows, want[i].typ, want[i].borrows)
		}
		if e.Handle != h || e.TypeID != 7 || e.Value != "cb" {
			t.Fatalf("event %d = %+v", i, e)
		}
	}
}

func TestUnifiedTable_FailedOperationsAreSilent(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	if table.Borrow(42) {
		t.Fatal("Borrow of an unknown handle succeeded")
	}
	if _, ok := table.Remove(42); ok {
		t.Fatal("Remove of an unknown handle succeeded")
	}
	if _, ok := table.Borrows(0); ok {
		t.Fatal("handle 0 is never valid")
	}
	if len(obs.events) != 0 {
		t.Fatalf("failed operations notified %d events", len(obs.events))
	}
}

func TestUnifiedTable_CloseReportsDrops(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	a := table.Insert(1, "a")
	b := table.Insert(1, "b")
	table.Borrow(b)
	obs.events = nil

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if len(obs.events) != 2 {
		t.Fatalf("Close notified %d events, want 2", len(obs.events))
	}
	for i, want := range []Handle{a, b} {
		if e := obs.events[i]; e.Type != EventDropped || e.Handle != want {
			t.Fatalf("event %d = %+v", i, e)
		}
	}
	if table.Len() != 0 {
		t.Fatalf("Len = %d after Close", table.Len())
	}

	if err := table.Close(); err != nil {
		t.Fatal("second Close failed")
	}
	if len(obs.events) != 2 {
		t.Fatal("second Close notified again")
	}
	if h := table.Insert(1, "c"); h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
}
