// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/accessmaps/accessmap/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a password account and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: models.AuthMethodPassword,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreatePin inserts a pin owned by the given user and returns it.
func (f *Fixtures) CreatePin(ctx context.Context, ownerID, ownerName, description string, lng, lat float64) models.Pin {
	f.t.Helper()

	p := models.Pin{
		ID:             primitive.NewObjectID(),
		Location:       models.Location{Lng: lng, Lat: lat},
		Description:    description,
		Classification: models.ClassificationIssue,
		OwnerID:        ownerID,
		OwnerName:      ownerName,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := f.db.Collection("pins").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test pin: %v", err)
	}
	return p
}
