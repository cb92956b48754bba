package store

import (
	"context"
	"testing"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/reconcile"
)

func TestMemoryStoreLookLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	look := &Look{Name: "Friday night", UserID: "user-1"}
	if err := s.CreateLook(ctx, look); err != nil {
		t.Fatalf("CreateLook error: %v", err)
	}
	if look.ID == "" {
		t.Fatal("CreateLook should assign an id")
	}
	if look.CreatedAt.IsZero() || look.UpdatedAt.IsZero() {
		t.Error("CreateLook should set timestamps")
	}

	got, err := s.GetLook(ctx, look.ID)
	if err != nil {
		t.Fatalf("GetLook error: %v", err)
	}
	if got.Name != "Friday night" {
		t.Errorf("Name = %q, want %q", got.Name, "Friday night")
	}

	// Missing look
	_, err = s.GetLook(ctx, "ghost")
	if !errors.Is(err, errors.ErrCodeLookNotFound) {
		t.Errorf("GetLook(ghost) code = %v, want ErrCodeLookNotFound", errors.GetCode(err))
	}

	// Composite update
	if err := s.UpdateLookComposite(ctx, look.ID, "data:image/png;base64,abc"); err != nil {
		t.Fatalf("UpdateLookComposite error: %v", err)
	}
	got, _ = s.GetLook(ctx, look.ID)
	if got.CompositeImage != "data:image/png;base64,abc" {
		t.Errorf("CompositeImage = %q", got.CompositeImage)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("UpdateLookComposite should refresh UpdatedAt")
	}

	// Delete
	if err := s.DeleteLook(ctx, look.ID); err != nil {
		t.Fatalf("DeleteLook error: %v", err)
	}
	if _, err := s.GetLook(ctx, look.ID); err == nil {
		t.Error("deleted look should be gone")
	}
	if err := s.DeleteLook(ctx, look.ID); !errors.Is(err, errors.ErrCodeLookNotFound) {
		t.Errorf("double delete code = %v, want ErrCodeLookNotFound", errors.GetCode(err))
	}
}

func TestMemoryStoreListLooksByUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, l := range []*Look{
		{Name: "work", UserID: "alice"},
		{Name: "weekend", UserID: "alice"},
		{Name: "gala", UserID: "bob"},
	} {
		if err := s.CreateLook(ctx, l); err != nil {
			t.Fatalf("CreateLook error: %v", err)
		}
	}

	looks, err := s.ListLooks(ctx, "alice")
	if err != nil {
		t.Fatalf("ListLooks error: %v", err)
	}
	if len(looks) != 2 {
		t.Fatalf("ListLooks returned %d looks, want 2", len(looks))
	}
	for _, l := range looks {
		if l.UserID != "alice" {
			t.Errorf("ListLooks leaked look for %s", l.UserID)
		}
	}
}

func TestMemoryStorePlacements(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	look := &Look{Name: "test", UserID: "u"}
	if err := s.CreateLook(ctx, look); err != nil {
		t.Fatal(err)
	}

	records, err := s.CreatePlacements(ctx, look.ID, []reconcile.Create{
		{ItemID: "pants", SortOrder: 1, Pos: geometry.Position{X: 38, Y: 38}, Scale: 1.0},
		{ItemID: "shirt", SortOrder: 0, Pos: geometry.Position{X: 8, Y: 8}, Scale: 1.2},
	})
	if err != nil {
		t.Fatalf("CreatePlacements error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("created %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.ID == "" {
			t.Error("created record missing id")
		}
		if r.LookID != look.ID {
			t.Errorf("record LookID = %q, want %q", r.LookID, look.ID)
		}
	}

	// Listing is ordered by SortOrder regardless of insert order
	listed, err := s.ListPlacements(ctx, look.ID)
	if err != nil {
		t.Fatalf("ListPlacements error: %v", err)
	}
	if len(listed) != 2 || listed[0].ItemID != "shirt" || listed[1].ItemID != "pants" {
		t.Errorf("ListPlacements order = %v", listed)
	}

	// Update
	target := records[0]
	upd := reconcile.Update{Pos: geometry.Position{X: 50, Y: 60}, Scale: 1.5}
	if err := s.UpdatePlacement(ctx, target.ID, upd); err != nil {
		t.Fatalf("UpdatePlacement error: %v", err)
	}
	listed, _ = s.ListPlacements(ctx, look.ID)
	for _, r := range listed {
		if r.ID == target.ID {
			if r.Pos.X != 50 || r.Scale != 1.5 {
				t.Errorf("updated record = %+v", r)
			}
		}
	}

	// Updating a missing record fails
	err = s.UpdatePlacement(ctx, "ghost", upd)
	if !errors.Is(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("UpdatePlacement(ghost) code = %v, want ErrCodeRecordNotFound", errors.GetCode(err))
	}

	// Delete is idempotent
	if err := s.DeletePlacement(ctx, target.ID); err != nil {
		t.Fatalf("DeletePlacement error: %v", err)
	}
	if err := s.DeletePlacement(ctx, target.ID); err != nil {
		t.Errorf("repeated DeletePlacement should not fail: %v", err)
	}
	listed, _ = s.ListPlacements(ctx, look.ID)
	if len(listed) != 1 {
		t.Errorf("ListPlacements after delete = %d records, want 1", len(listed))
	}
}

func TestMemoryStoreDeleteLookCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	look := &Look{Name: "test", UserID: "u"}
	if err := s.CreateLook(ctx, look); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreatePlacements(ctx, look.ID, []reconcile.Create{
		{ItemID: "shirt", Scale: 1.0},
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteLook(ctx, look.ID); err != nil {
		t.Fatalf("DeleteLook error: %v", err)
	}
	listed, err := s.ListPlacements(ctx, look.ID)
	if err != nil {
		t.Fatalf("ListPlacements error: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("placements should cascade on look delete, got %d", len(listed))
	}
}

// The memory store must satisfy the reconcile engine's persistence surface.
var _ reconcile.Persister = (*MemoryStore)(nil)
