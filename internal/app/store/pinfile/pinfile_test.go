package pinfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/accessmaps/accessmap/internal/app/store/pinfile"
	"github.com/accessmaps/accessmap/internal/domain/models"
	"go.uber.org/zap"
)

func newStore(t *testing.T) (*pinfile.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pins.json")
	s, err := pinfile.New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, path
}

func validPin(ownerID string) models.Pin {
	return models.Pin{
		Location:       models.Location{Lng: -122.01635, Lat: 37.56464},
		Description:    "broken elevator",
		Classification: models.ClassificationIssue,
		OwnerID:        ownerID,
		OwnerName:      "Sam",
	}
}

func TestCreateAndList(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, validPin("owner-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected assigned ID")
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 pin, got %d", len(got))
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected pin file on disk: %v", err)
	}
}

func TestCreate_RejectsInvalid(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	p := validPin("owner-1")
	p.Description = "  "
	if _, err := s.Create(ctx, p); !errors.Is(err, models.ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, validPin("owner-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reopened, err := pinfile.New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID after reopen: %v", err)
	}
	if got.Description != "broken elevator" {
		t.Errorf("description: got %q", got.Description)
	}
}

func TestUpdateAndDelete_OwnerOnly(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, validPin("owner-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	id := created.ID.Hex()

	if err := s.Update(ctx, id, "intruder", "x", models.ClassificationIssue); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("non-owner update: got %v, want ErrForbidden", err)
	}
	if err := s.Update(ctx, id, "owner-1", "ramp", models.ClassificationAccessible); err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	got, _ := s.GetByID(ctx, id)
	if got.Classification != models.ClassificationAccessible || got.UpdatedAt == nil {
		t.Errorf("update not applied: %+v", got)
	}

	if err := s.Delete(ctx, id, "intruder"); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("non-owner delete: got %v, want ErrForbidden", err)
	}
	if err := s.Delete(ctx, id, "owner-1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := s.GetByID(ctx, id); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestUpvote_Rules(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, validPin("owner-1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	id := created.ID.Hex()

	got, err := s.Upvote(ctx, id, "voter-1")
	if err != nil {
		t.Fatalf("Upvote failed: %v", err)
	}
	if got.UpvoteCount != 1 || !got.HasVoted("voter-1") {
		t.Errorf("vote not recorded: %+v", got)
	}

	if _, err := s.Upvote(ctx, id, "voter-1"); !errors.Is(err, models.ErrAlreadyVoted) {
		t.Errorf("second vote: got %v, want ErrAlreadyVoted", err)
	}
	if _, err := s.Upvote(ctx, id, "owner-1"); !errors.Is(err, models.ErrSelfVoteForbidden) {
		t.Errorf("self vote: got %v, want ErrSelfVoteForbidden", err)
	}
}

func TestReset(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, validPin("owner-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	got, _ := s.List(ctx)
	if len(got) != 0 {
		t.Errorf("expected empty store after reset, got %d pins", len(got))
	}
}

func TestLoad_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pins.json")
	blob := `[
	  {"id":"64b000000000000000000001","location":{"lng":-122.0,"lat":37.5},"description":"ok","classification":"issue","created_at":"2024-01-01T00:00:00Z"}
	]`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	s, err := pinfile.New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got, _ := s.List(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 pin, got %d", len(got))
	}
}
