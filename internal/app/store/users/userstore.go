// internal/app/store/users/userstore.go
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/accessmaps/accessmap/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrBadCredentials is returned when email/password authentication fails.
	// One error for "no such user" and "wrong password" so responses don't
	// leak which emails have accounts.
	ErrBadCredentials = errors.New("invalid email or password")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique folded-email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_user_email_ci"),
	})
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case/diacritic-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates a password account. The password is bcrypt-hashed;
// the plaintext is never stored.
func (s *Store) Register(ctx context.Context, fullName, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     strings.TrimSpace(fullName),
		Email:        strings.TrimSpace(email),
		EmailCI:      text.Fold(email),
		AuthMethod:   models.AuthMethodPassword,
		PasswordHash: hash,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies an email/password pair.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if len(u.PasswordHash) == 0 {
		// Google-only account; no password to check.
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// UpsertGoogle finds or creates the account for a Google identity,
// matching first by provider subject and then by email (so an existing
// password account picks up the Google link on first federated sign-in).
func (s *Store) UpsertGoogle(ctx context.Context, sub, email, fullName string) (models.User, error) {
	now := time.Now().UTC()

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"$or": []bson.M{
			{"google_sub": sub},
			{"email_ci": text.Fold(email)},
		}},
		bson.M{
			"$set": bson.M{
				"google_sub": sub,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"_id":         primitive.NewObjectID(),
				"full_name":   strings.TrimSpace(fullName),
				"email":       strings.TrimSpace(email),
				"email_ci":    text.Fold(email),
				"auth_method": models.AuthMethodGoogle,
				"status":      "active",
				"created_at":  now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}
