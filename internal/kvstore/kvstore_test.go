package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetSetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.GetItem(ctx, "k"); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := m.SetItem(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := m.GetItem(ctx, "k"); !ok || v != "v" {
		t.Fatalf("get = %q ok=%v", v, ok)
	}
	if err := m.RemoveItem(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := m.GetItem(ctx, "k"); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestMemoryFailHook(t *testing.T) {
	boom := errors.New("boom")
	m := NewMemory()
	m.Fail = func(op, key string) error {
		if op == "SetItem" {
			return boom
		}
		return nil
	}
	if err := m.SetItem(context.Background(), "k", "v"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
