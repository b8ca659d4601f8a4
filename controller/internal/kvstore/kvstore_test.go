package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "kv.db")
	s, err := New(Config{Driver: "sqlite", DSN: dsn, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "namespace.demo", []byte(`{"name":"demo"}`)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "namespace.demo")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatalf("Get() reported not-found for a key just written")
	}
	if string(got) != `{"name":"demo"}` {
		t.Fatalf("Get() = %q, want %q", got, `{"name":"demo"}`)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(context.Background(), "does.not.exist")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Fatalf("Get() reported found for a key never written")
	}
}

func TestDeleteThenGetNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "workload.default.web", []byte(`{}`)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := s.Delete(ctx, "workload.default.web"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	_, ok, err := s.Get(ctx, "workload.default.web")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Fatalf("Get() reported found after Delete()")
	}
}

func TestGetAllReturnsOnlyMatchingPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	writes := map[string]string{
		"workload.default.web":    `{"name":"web"}`,
		"workload.default.worker": `{"name":"worker"}`,
		"instance.default.web-1":  `{"id":"web-1"}`,
	}
	for k, v := range writes {
		if err := s.Put(ctx, k, []byte(v)); err != nil {
			t.Fatalf("Put(%q) failed: %v", k, err)
		}
	}

	got, err := s.GetAll(ctx, "workload.")
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetAll() returned %d entries, want 2: %v", len(got), got)
	}
	if _, ok := got["instance.default.web-1"]; ok {
		t.Fatalf("GetAll(\"workload.\") unexpectedly matched an instance key")
	}
}

func TestPutOverwritesExistingKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "node.abc", []byte("v1")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := s.Put(ctx, "node.abc", []byte("v2")); err != nil {
		t.Fatalf("Put() overwrite failed: %v", err)
	}
	got, ok, err := s.Get(ctx, "node.abc")
	if err != nil || !ok {
		t.Fatalf("Get() after overwrite failed: ok=%v err=%v", ok, err)
	}
	if string(got) != "v2" {
		t.Fatalf("Get() = %q, want %q", got, "v2")
	}
}
