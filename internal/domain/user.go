package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trust sources: which authority vouches for an identity.
const (
	TrustLocal    = "local"
	TrustGoogle   = "google"
	TrustFacebook = "facebook"
	TrustGithub   = "github"
)

// Picture is a reference to a stored image, never the bytes themselves.
type Picture struct {
	PublicID  string `bson:"public_id"  json:"public_id"`
	SecureURL string `bson:"secure_url" json:"secure_url"`
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"  json:"-"`
	ExternalID  string             `bson:"external_id"    json:"external_id"` // stable subject claim, set once
	Email       string             `bson:"email"          json:"email"`
	Name        string             `bson:"name"           json:"name"`
	Bio         string             `bson:"bio"            json:"bio"`
	PhoneNumber string             `bson:"phone_number"   json:"phone_number"`
	// PasswordHash is empty for OAuth-originated accounts; PasswordLength == 0
	// is the signal checked before any credential verification.
	PasswordHash   string    `bson:"password_hash,omitempty" json:"-"`
	PasswordLength int       `bson:"password_length"         json:"-"`
	Picture        Picture   `bson:"picture"        json:"picture"`
	TrustSource    string    `bson:"trust_source"   json:"trust_source"`
	CreatedAt      time.Time `bson:"created_at"     json:"created_at"`
}
