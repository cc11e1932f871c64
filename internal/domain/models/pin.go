// internal/domain/models/pin.go
package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Classification values for a pin.
const (
	ClassificationIssue      = "issue"      // accessibility problem (rendered red)
	ClassificationAccessible = "accessible" // accessible feature (rendered green)
)

// Location is a geographic coordinate pair.
type Location struct {
	Lng float64 `bson:"lng" json:"lng"`
	Lat float64 `bson:"lat" json:"lat"`
}

// IsFinite reports whether both coordinates are finite numbers.
// Documents that fail this check are dropped at ingestion rather than
// surfaced to clients; one corrupt record must not blank the whole map.
func (l Location) IsFinite() bool {
	return !math.IsNaN(l.Lng) && !math.IsInf(l.Lng, 0) &&
		!math.IsNaN(l.Lat) && !math.IsInf(l.Lat, 0)
}

// Pin is a user-submitted geotagged accessibility report.
//
// The authoritative copy lives in the backing store; in-memory snapshots
// are cached projections kept current by the pin feed and are treated as
// read-only by consumers.
type Pin struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Location       Location           `bson:"location" json:"location"`
	Description    string             `bson:"description" json:"description"`
	Classification string             `bson:"classification" json:"classification"`

	OwnerID   string `bson:"owner_id,omitempty" json:"owner_id,omitempty"` // empty for legacy/anonymous records
	OwnerName string `bson:"owner_name,omitempty" json:"owner_name,omitempty"`

	UpvoteCount int      `bson:"upvote_count" json:"upvote_count"`
	VotedBy     []string `bson:"voted_by,omitempty" json:"voted_by,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IsValidClassification checks if a value is a known classification.
func IsValidClassification(value string) bool {
	return value == ClassificationIssue || value == ClassificationAccessible
}

// Validate checks the fields a caller must supply before a pin can be
// persisted. Returned errors wrap ErrValidation so handlers can map them
// to a 422 without inspecting the message.
func (p *Pin) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !IsValidClassification(p.Classification) {
		return fmt.Errorf("%w: unknown classification %q", ErrValidation, p.Classification)
	}
	if !p.Location.IsFinite() {
		return fmt.Errorf("%w: location coordinates must be finite", ErrValidation)
	}
	return nil
}

// HasVoted reports whether the given user already appears in VotedBy.
func (p *Pin) HasVoted(userID string) bool {
	for _, id := range p.VotedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// OwnedBy reports whether the given user created this pin.
// Legacy records without an owner belong to nobody.
func (p *Pin) OwnedBy(userID string) bool {
	return p.OwnerID != "" && p.OwnerID == userID
}
