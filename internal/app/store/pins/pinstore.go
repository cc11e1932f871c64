// internal/app/store/pins/pinstore.go
package pins

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/accessmaps/accessmap/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store manages pin documents in MongoDB.
//
// All ownership and vote-uniqueness rules are enforced here with
// conditional writes; the browser's checks are cosmetic only.
type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("pins"), log: logger}
}

// Collection exposes the underlying collection for the change-stream
// watcher in pinfeed.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

// EnsureIndexes creates the indexes the pin queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("idx_pin_owner"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_pin_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// pinDoc mirrors models.Pin but with a pointer Location so a missing
// field is distinguishable from coordinates at (0, 0).
type pinDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Location       *models.Location   `bson:"location"`
	Description    string             `bson:"description"`
	Classification string             `bson:"classification"`
	OwnerID        string             `bson:"owner_id,omitempty"`
	OwnerName      string             `bson:"owner_name,omitempty"`
	UpvoteCount    int                `bson:"upvote_count"`
	VotedBy        []string           `bson:"voted_by,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      *time.Time         `bson:"updated_at,omitempty"`
}

// List returns the full current pin set, oldest first.
//
// Ingestion policy: documents that fail to decode or carry a missing or
// non-finite location are logged and dropped, never surfaced as errors.
// An empty collection yields an empty slice, not an error.
func (s *Store) List(ctx context.Context) ([]models.Pin, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	pins := make([]models.Pin, 0)
	for cur.Next(ctx) {
		var doc pinDoc
		if err := cur.Decode(&doc); err != nil {
			s.log.Warn("dropping undecodable pin document", zap.Error(err))
			continue
		}
		if doc.Location == nil || !doc.Location.IsFinite() {
			s.log.Warn("dropping pin with malformed location",
				zap.String("pin_id", doc.ID.Hex()))
			continue
		}
		pins = append(pins, models.Pin{
			ID:             doc.ID,
			Location:       *doc.Location,
			Description:    doc.Description,
			Classification: doc.Classification,
			OwnerID:        doc.OwnerID,
			OwnerName:      doc.OwnerName,
			UpvoteCount:    doc.UpvoteCount,
			VotedBy:        doc.VotedBy,
			CreatedAt:      doc.CreatedAt,
			UpdatedAt:      doc.UpdatedAt,
		})
	}
	return pins, cur.Err()
}

// GetByID fetches a single pin. Malformed records are treated as absent,
// consistent with List dropping them.
func (s *Store) GetByID(ctx context.Context, id string) (models.Pin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Pin{}, models.ErrNotFound
	}
	var doc pinDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Pin{}, models.ErrNotFound
		}
		return models.Pin{}, err
	}
	if doc.Location == nil || !doc.Location.IsFinite() {
		return models.Pin{}, models.ErrNotFound
	}
	return models.Pin{
		ID:             doc.ID,
		Location:       *doc.Location,
		Description:    doc.Description,
		Classification: doc.Classification,
		OwnerID:        doc.OwnerID,
		OwnerName:      doc.OwnerName,
		UpvoteCount:    doc.UpvoteCount,
		VotedBy:        doc.VotedBy,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// Create validates and persists a new pin, returning it with the
// assigned ID and creation timestamp.
func (s *Store) Create(ctx context.Context, p models.Pin) (models.Pin, error) {
	if err := p.Validate(); err != nil {
		return models.Pin{}, err
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = nil
	p.UpvoteCount = 0
	p.VotedBy = nil
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Pin{}, err
	}
	return p, nil
}

// Update edits a pin's description and classification. The write is
// conditional on ownerID matching the stored owner; a non-owner gets
// ErrForbidden, a vanished pin ErrNotFound.
func (s *Store) Update(ctx context.Context, id, ownerID, description, classification string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", models.ErrValidation)
	}
	if !models.IsValidClassification(classification) {
		return fmt.Errorf("%w: unknown classification %q", models.ErrValidation, classification)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": oid, "owner_id": ownerID},
		bson.M{"$set": bson.M{
			"description":    description,
			"classification": classification,
			"updated_at":     now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.diagnoseOwnership(ctx, oid)
	}
	return nil
}

// Delete removes a pin, conditional on ownership.
func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return s.diagnoseOwnership(ctx, oid)
	}
	return nil
}

// Upvote records a single upvote as one atomic conditional update: the
// filter excludes the owner and anyone already in voted_by, so the
// check and the increment cannot race. Concurrent duplicate attempts
// lose the filter match and come back ErrAlreadyVoted.
func (s *Store) Upvote(ctx context.Context, id, voterID string) (models.Pin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Pin{}, models.ErrNotFound
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":      oid,
			"owner_id": bson.M{"$ne": voterID},
			"voted_by": bson.M{"$ne": voterID},
		},
		bson.M{
			"$addToSet": bson.M{"voted_by": voterID},
			"$inc":      bson.M{"upvote_count": 1},
		})
	if err != nil {
		return models.Pin{}, err
	}
	if res.ModifiedCount == 0 {
		return models.Pin{}, s.diagnoseUpvote(ctx, oid, voterID)
	}
	return s.GetByID(ctx, id)
}

// diagnoseOwnership distinguishes "gone" from "not yours" after a
// conditional write matched nothing.
func (s *Store) diagnoseOwnership(ctx context.Context, oid primitive.ObjectID) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrForbidden
}

// diagnoseUpvote reports why the conditional upvote matched nothing.
func (s *Store) diagnoseUpvote(ctx context.Context, oid primitive.ObjectID, voterID string) error {
	var doc pinDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ErrNotFound
		}
		return err
	}
	if doc.OwnerID == voterID {
		return models.ErrSelfVoteForbidden
	}
	return models.ErrAlreadyVoted
}
