package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docentes-portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicate is returned when an insert violates the cedula or username uniqueness.
	ErrDuplicate = errors.New("duplicate user")
	ErrNotFound  = errors.New("user not found")
)

// Directory defines persistence operations for user records.
// Lookups return (nil, nil) when nothing matches.
type Directory interface {
	FindByIdentifier(ctx context.Context, cedula string) (*models.User, error)
	// FindActiveByUsername only matches records whose activo field is the boolean true.
	FindActiveByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) (*models.User, error)
	UpdateByID(ctx context.Context, id string, up models.UserUpdate) error
	FindAll(ctx context.Context) ([]*models.User, error)
}

// MongoUserRepository implements Directory using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

// EnsureIndexes creates the sparse unique indexes on cedula and username.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cedula", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, idx); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) FindByIdentifier(ctx context.Context, cedula string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"cedula": cedula})
}

func (r *MongoUserRepository) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username, "activo": true})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": idFilter(id)})
}

func (r *MongoUserRepository) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.ID = ""
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, err
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		u.ID = id.Hex()
	case string:
		u.ID = id
	}
	return u, nil
}

func (r *MongoUserRepository) UpdateByID(ctx context.Context, id string, up models.UserUpdate) error {
	set := bson.M{
		"nombre":          up.Nombre,
		"email":           up.Email,
		"telefono":        up.Telefono,
		"departamento":    up.Departamento,
		"tituloAcademico": up.TituloAcademico,
		"updatedAt":       time.Now().UTC(),
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": idFilter(id)}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

// idFilter matches ObjectID keys, falling back to the raw string for
// documents created with string ids.
func idFilter(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
