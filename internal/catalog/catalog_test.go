package catalog_test

import (
	"testing"

	"stagehand/internal/catalog"
)

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := catalog.New([]catalog.Product{
		{Name: "Lamp", Scene: "A"},
		{Name: "lamp", Scene: "B"},
	})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	c, err := catalog.New([]catalog.Product{{Name: "Cosmic Glow Lamp", Scene: "Product_Lamp"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p, ok := c.Lookup("  cosmic glow lamp ")
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if p.Scene != "Product_Lamp" {
		t.Fatalf("scene = %q", p.Scene)
	}
	if _, ok := c.Lookup("hoodie"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestStoreReplaceKeepsOldSnapshot(t *testing.T) {
	first, err := catalog.New([]catalog.Product{{Name: "Lamp", Scene: "A"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	store := catalog.NewStore(first)
	snap := store.Snapshot()

	if _, err := store.Replace([]catalog.Product{{Name: "Mouse", Scene: "B"}}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// The old snapshot is still fully usable.
	if _, ok := snap.Lookup("Lamp"); !ok {
		t.Fatal("old snapshot lost its product")
	}
	if _, ok := store.Snapshot().Lookup("Lamp"); ok {
		t.Fatal("new snapshot should not contain the old product")
	}
	if _, ok := store.Snapshot().Lookup("Mouse"); !ok {
		t.Fatal("new snapshot missing replacement product")
	}
}

func TestStoreReplaceRejectsInvalidAndKeepsCurrent(t *testing.T) {
	first, _ := catalog.New([]catalog.Product{{Name: "Lamp", Scene: "A"}})
	store := catalog.NewStore(first)
	if _, err := store.Replace([]catalog.Product{{Name: ""}}); err == nil {
		t.Fatal("expected invalid catalog to be rejected")
	}
	if _, ok := store.Snapshot().Lookup("Lamp"); !ok {
		t.Fatal("failed replace must not clobber the current catalog")
	}
}
