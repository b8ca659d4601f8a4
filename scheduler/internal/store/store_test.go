package store

import "testing"

func TestStoreUpsertGetDelete(t *testing.T) {
	s := New[int]()

	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected missing key to report not-ok")
	}

	s.Upsert("a", 1)
	v, ok := s.Get("a")
	if !ok || v != 1 {
		t.Fatalf("got (%v, %v), want (1, true)", v, ok)
	}

	s.Upsert("a", 2)
	v, _ = s.Get("a")
	if v != 2 {
		t.Fatalf("upsert did not replace value, got %v", v)
	}

	if !s.Delete("a") {
		t.Fatalf("expected delete of present key to return true")
	}
	if s.Delete("a") {
		t.Fatalf("expected delete of absent key to return false")
	}
}

func TestStoreEnumerate(t *testing.T) {
	s := New[string]()
	s.Upsert("1", "one")
	s.Upsert("2", "two")
	s.Upsert("3", "three")

	ids := s.Enumerate()
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}
	if s.Len() != 3 {
		t.Fatalf("got len %d, want 3", s.Len())
	}
}

func TestStorePointerElementActsAsGetMut(t *testing.T) {
	type node struct{ status string }

	s := New[*node]()
	s.Upsert("n1", &node{status: "starting"})

	n, ok := s.Get("n1")
	if !ok {
		t.Fatalf("expected n1 to be present")
	}
	n.status = "running"

	n2, _ := s.Get("n1")
	if n2.status != "running" {
		t.Fatalf("mutation through pointer element did not persist, got %q", n2.status)
	}
}
