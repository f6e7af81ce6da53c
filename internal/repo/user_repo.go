package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/identity-service/internal/domain"
)

// ErrEmailTaken is returned by CreateUser when the unique email index
// rejects the insert. This, not the validation snapshot, is the real
// uniqueness guarantee under concurrent registrations.
var ErrEmailTaken = errors.New("email already registered")

type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &Store{Client: cli, DB: cli.Database(dbname)}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

func (s *Store) users() *mongo.Collection { return s.DB.Collection("users") }

func (s *Store) EnsureUserIndexes(ctx context.Context) error {
	if _, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert",
		tracer.Tag("trust_source", u.TrustSource),
	)
	defer sp.Finish()

	u.CreatedAt = time.Now().UTC()
	_, err := s.users().InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_email")
	defer sp.Finish()

	var u domain.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByExternalID(ctx context.Context, id string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_external_id",
		tracer.Tag("external_id", id),
	)
	defer sp.Finish()

	var u domain.User
	err := s.users().FindOne(ctx, bson.M{"external_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// UpdateUser persists the mutable profile fields for the record identified
// by external id. ExternalID and TrustSource are never rewritten.
func (s *Store) UpdateUser(ctx context.Context, externalID string, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.update",
		tracer.Tag("external_id", externalID),
	)
	defer sp.Finish()

	res, err := s.users().UpdateOne(ctx, bson.M{"external_id": externalID}, bson.M{"$set": bson.M{
		"name":            u.Name,
		"email":           u.Email,
		"bio":             u.Bio,
		"phone_number":    u.PhoneNumber,
		"password_hash":   u.PasswordHash,
		"password_length": u.PasswordLength,
		"picture":         u.Picture,
	}})
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AllEmails returns the point-in-time email snapshot used by the
// registration ruleset.
func (s *Store) AllEmails(ctx context.Context) ([]string, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.all_emails")
	defer sp.Finish()

	cur, err := s.users().Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"email": 1, "_id": 0}))
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var emails []string
	for cur.Next(ctx) {
		var row struct {
			Email string `bson:"email"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		emails = append(emails, row.Email)
	}
	return emails, cur.Err()
}
