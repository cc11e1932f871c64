// internal/app/store/pinfile/pinfile.go

// Package pinfile is the local persistence fallback for deployments
// without MongoDB: the pin set lives in one JSON file, read at startup
// and rewritten after every mutation. It implements the same contract
// as the Mongo-backed store, including the storage-layer ownership and
// vote-uniqueness rules.
package pinfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/accessmaps/accessmap/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store keeps the pin set in memory, guarded by a mutex, and mirrors
// every mutation to disk. Reads return copies; callers never see the
// internal slice.
type Store struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	pins []models.Pin
}

// New loads the pin file if it exists. Entries with a missing or
// non-finite location are dropped at load, same as the Mongo store's
// ingestion policy.
func New(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, log: logger}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.pins = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read pin file: %w", err)
	}
	var raw []models.Pin
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse pin file %s: %w", s.path, err)
	}
	kept := raw[:0]
	for _, p := range raw {
		if !p.Location.IsFinite() {
			s.log.Warn("dropping pin with malformed location from pin file",
				zap.String("pin_id", p.ID.Hex()))
			continue
		}
		kept = append(kept, p)
	}
	s.pins = kept
	return nil
}

// persist writes the full pin set, via a temp file and rename so a
// crash mid-write cannot truncate the store.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.pins, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// List returns a copy of the full current pin set.
func (s *Store) List(ctx context.Context) ([]models.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Pin, len(s.pins))
	copy(out, s.pins)
	return out, nil
}

// GetByID fetches a single pin.
func (s *Store) GetByID(ctx context.Context, id string) (models.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pins {
		if p.ID.Hex() == id {
			return p, nil
		}
	}
	return models.Pin{}, models.ErrNotFound
}

// Create validates and appends a new pin.
func (s *Store) Create(ctx context.Context, p models.Pin) (models.Pin, error) {
	if err := p.Validate(); err != nil {
		return models.Pin{}, err
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = nil
	p.UpvoteCount = 0
	p.VotedBy = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = append(s.pins, p)
	if err := s.persist(); err != nil {
		s.pins = s.pins[:len(s.pins)-1]
		return models.Pin{}, err
	}
	return p, nil
}

// Update edits description and classification, owner-only.
func (s *Store) Update(ctx context.Context, id, ownerID, description, classification string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", models.ErrValidation)
	}
	if !models.IsValidClassification(classification) {
		return fmt.Errorf("%w: unknown classification %q", models.ErrValidation, classification)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pins {
		if s.pins[i].ID.Hex() != id {
			continue
		}
		if !s.pins[i].OwnedBy(ownerID) {
			return models.ErrForbidden
		}
		prev := s.pins[i]
		now := time.Now().UTC()
		s.pins[i].Description = description
		s.pins[i].Classification = classification
		s.pins[i].UpdatedAt = &now
		if err := s.persist(); err != nil {
			s.pins[i] = prev
			return err
		}
		return nil
	}
	return models.ErrNotFound
}

// Delete removes a pin, owner-only.
func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pins {
		if s.pins[i].ID.Hex() != id {
			continue
		}
		if !s.pins[i].OwnedBy(ownerID) {
			return models.ErrForbidden
		}
		removed := s.pins[i]
		s.pins = append(s.pins[:i], s.pins[i+1:]...)
		if err := s.persist(); err != nil {
			s.pins = append(s.pins[:i], append([]models.Pin{removed}, s.pins[i:]...)...)
			return err
		}
		return nil
	}
	return models.ErrNotFound
}

// Upvote records a single upvote. The mutex makes the check and the
// increment one critical section, so duplicate attempts cannot race.
func (s *Store) Upvote(ctx context.Context, id, voterID string) (models.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pins {
		if s.pins[i].ID.Hex() != id {
			continue
		}
		if s.pins[i].OwnerID == voterID {
			return models.Pin{}, models.ErrSelfVoteForbidden
		}
		if s.pins[i].HasVoted(voterID) {
			return models.Pin{}, models.ErrAlreadyVoted
		}
		prev := s.pins[i]
		s.pins[i].VotedBy = append(append([]string(nil), s.pins[i].VotedBy...), voterID)
		s.pins[i].UpvoteCount++
		if err := s.persist(); err != nil {
			s.pins[i] = prev
			return models.Pin{}, err
		}
		return s.pins[i], nil
	}
	return models.Pin{}, models.ErrNotFound
}

// Reset clears every pin and rewrites the file empty.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.pins
	s.pins = nil
	if err := s.persist(); err != nil {
		s.pins = prev
		return err
	}
	return nil
}
