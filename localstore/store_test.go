package localstore

import (
	"context"
	"testing"
)

// storeContract exercises the behavior every adapter must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v, err=%v; want absent, nil", ok, err)
	}

	if err := store.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := store.Get(ctx, "token")
	if err != nil || !ok || v != "abc" {
		t.Fatalf("Get(token) = %q, %v, %v; want abc, true, nil", v, ok, err)
	}

	// Overwrite replaces the slot.
	if err := store.Set(ctx, "token", "xyz"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if v, _, _ := store.Get(ctx, "token"); v != "xyz" {
		t.Fatalf("Get after overwrite = %q, want xyz", v)
	}

	// An empty value is present, not absent.
	if err := store.Set(ctx, "empty", ""); err != nil {
		t.Fatalf("Set(empty) error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "empty"); !ok {
		t.Fatal("empty value should be present")
	}

	if err := store.Remove(ctx, "token"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "token"); ok {
		t.Fatal("value should be gone after Remove")
	}

	// Removing an absent key is not an error.
	if err := store.Remove(ctx, "token"); err != nil {
		t.Fatalf("Remove(absent) error = %v", err)
	}
}

func TestMemory(t *testing.T) {
	storeContract(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer store.Close()

	storeContract(t, store)
}

func TestSQLite_PersistsAcrossHandles(t *testing.T) {
	path := t.TempDir() + "/kv.db"

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(context.Background(), "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}
