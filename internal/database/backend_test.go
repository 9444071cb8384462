package database

import (
	"context"
	"errors"
	"testing"
)

// exerciseBackend runs the shared Backend contract against b.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if _, err := b.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := Put(ctx, b, "doc", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := b.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"v":1}` {
		t.Errorf("Expected {\"v\":1}, got %s", got)
	}

	err = b.Write(ctx, PutOp("doc", []byte(`{"v":2}`)), PutOp("session", []byte(`{"role":"pharmacy"}`)))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, _ = b.Get(ctx, "doc")
	if string(got) != `{"v":2}` {
		t.Errorf("Expected overwritten document, got %s", got)
	}

	if err := Delete(ctx, b, "session"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := b.Get(ctx, "session"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected deleted key to be missing, got %v", err)
	}

	if err := Delete(ctx, b, "never-written"); err != nil {
		t.Errorf("Deleting a missing key should succeed, got %v", err)
	}

	if err := b.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	exerciseBackend(t, b)
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	value := []byte("abc")
	if err := Put(ctx, b, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'z'

	got, _ := b.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Stored value was aliased: %s", got)
	}
}

func TestMemoryBackendClosed(t *testing.T) {
	b := NewMemoryBackend()
	b.Close()

	if err := b.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := Put(context.Background(), b, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestBadgerBackend(t *testing.T) {
	b, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	defer b.Close()

	exerciseBackend(t, b)
}

func TestBadgerBackendPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := OpenBadger(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := Put(ctx, b, "state", []byte(`{"version":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b, err = OpenBadger(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	got, err := b.Get(ctx, "state")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != `{"version":1}` {
		t.Errorf("Unexpected value after reopen: %s", got)
	}
}
