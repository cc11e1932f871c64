// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth method values stored on a user record.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// User represents an account that can sign in and place pins.
//
// NOTE:
//   - Email is the login identifier. EmailCI holds the folded
//     (lowercase, diacritics-stripped) form used for lookups.
//   - PasswordHash is set only for password accounts; Google accounts
//     carry the provider subject in GoogleSub instead.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`
	AuthMethod string             `bson:"auth_method" json:"auth_method"` // password | google

	PasswordHash []byte `bson:"password_hash,omitempty" json:"-"`
	GoogleSub    string `bson:"google_sub,omitempty" json:"-"`

	Status string `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
