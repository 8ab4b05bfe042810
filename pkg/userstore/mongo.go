package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	mongox "github.com/dmitrymomot/teamauth/pkg/mongo"
)

// UsersCollection is the default collection name.
const UsersCollection = "users"

var _ auth.UserStorage = (*Mongo)(nil)

// Mongo stores accounts in a MongoDB collection.
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo uses the users collection of db.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{coll: db.Collection(UsersCollection)}
}

type userDocument struct {
	ID                string    `bson:"_id"`
	Email             string    `bson:"email"`
	FullName          string    `bson:"full_name"`
	Avatar            string    `bson:"avatar"`
	AuthProvider      string    `bson:"auth_provider"`
	IsFirstLogin      bool      `bson:"is_first_login"`
	IsProfileComplete bool      `bson:"is_profile_complete"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func toDocument(u *auth.User) userDocument {
	return userDocument{
		ID:                u.ID.String(),
		Email:             u.Email,
		FullName:          u.FullName,
		Avatar:            u.Avatar,
		AuthProvider:      string(u.AuthProvider),
		IsFirstLogin:      u.IsFirstLogin,
		IsProfileComplete: u.IsProfileComplete,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (d userDocument) toUser() (*auth.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", d.ID, err)
	}
	return &auth.User{
		ID:                id,
		Email:             d.Email,
		FullName:          d.FullName,
		Avatar:            d.Avatar,
		AuthProvider:      auth.AuthProvider(d.AuthProvider),
		IsFirstLogin:      d.IsFirstLogin,
		IsProfileComplete: d.IsProfileComplete,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}, nil
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func (m *Mongo) CreateUser(ctx context.Context, user *auth.User) error {
	if _, err := m.coll.InsertOne(ctx, toDocument(user)); err != nil {
		if mongox.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *Mongo) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return m.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return m.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (m *Mongo) UpdateUser(ctx context.Context, id uuid.UUID, upd auth.ProfileUpdate) (*auth.User, error) {
	set := bson.D{}
	if upd.FullName != nil {
		set = append(set, bson.E{Key: "full_name", Value: *upd.FullName})
	}
	if upd.Avatar != nil {
		set = append(set, bson.E{Key: "avatar", Value: *upd.Avatar})
	}
	if upd.IsFirstLogin != nil {
		set = append(set, bson.E{Key: "is_first_login", Value: *upd.IsFirstLogin})
	}
	if upd.IsProfileComplete != nil {
		set = append(set, bson.E{Key: "is_profile_complete", Value: *upd.IsProfileComplete})
	}
	if !upd.UpdatedAt.IsZero() {
		set = append(set, bson.E{Key: "updated_at", Value: upd.UpdatedAt})
	}
	if len(set) == 0 {
		return m.GetUserByID(ctx, id)
	}

	var doc userDocument
	err := m.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toUser()
}

func (m *Mongo) findOne(ctx context.Context, filter bson.D) (*auth.User, error) {
	var doc userDocument
	if err := m.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser()
}
