// Package storetest checks that a store.Documents backend honours the
// shared contract.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/JorgeHRP/renato-bi/pkg/store"
)

// Run exercises docs. The backend must start empty.
func Run(t *testing.T, docs store.Documents) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing document", func(t *testing.T) {
		_, err := docs.Get(ctx, store.CollectionRecords, "nope")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		if err := docs.Put(ctx, store.CollectionRecords, "a1", []byte(`{"v":1}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := docs.Put(ctx, store.CollectionRecords, "a1", []byte(`{"v":2}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := docs.Get(ctx, store.CollectionRecords, "a1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `{"v":2}` {
			t.Errorf("got %s, want the second write", got)
		}
	})

	t.Run("collections are separate", func(t *testing.T) {
		if _, err := docs.Get(ctx, store.CollectionCompanies, "a1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound across collections, got %v", err)
		}
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		for _, id := range []string{"c3", "c1", "c2"} {
			if err := docs.Put(ctx, store.CollectionCompanies, id, []byte(`"`+id+`"`)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}
		list, err := docs.List(ctx, store.CollectionCompanies)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 3 || string(list[0]) != `"c1"` || string(list[2]) != `"c3"` {
			t.Errorf("unexpected list: %q", list)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := docs.Delete(ctx, store.CollectionCompanies, "c2"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := docs.Delete(ctx, store.CollectionCompanies, "c2"); err != nil {
			t.Fatalf("second Delete failed: %v", err)
		}
		if _, err := docs.Get(ctx, store.CollectionCompanies, "c2"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		list, err := docs.List(ctx, store.CollectionCompanies)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 2 {
			t.Errorf("expected 2 documents left, got %d", len(list))
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		list, err := docs.List(ctx, "empty")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected nothing, got %d documents", len(list))
		}
	})
}
