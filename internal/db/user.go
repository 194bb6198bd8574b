package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-risk/internal/models"
)

// AccessCollection defines the provisioning operations for access groups
// and operator accounts.
type AccessCollection interface {
	UpsertGroup(ctx context.Context, group models.Group) (created bool, err error)
	EnsureUser(ctx context.Context, user models.User) (created bool, err error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// MongoAccessCollection implements AccessCollection for MongoDB
type MongoAccessCollection struct {
	Groups *mongo.Collection
	Users  *mongo.Collection
}

// NewMongoAccessCollection binds the access collections of database.
func NewMongoAccessCollection(database *mongo.Database) *MongoAccessCollection {
	return &MongoAccessCollection{
		Groups: database.Collection(GroupsCollection),
		Users:  database.Collection(UsersCollection),
	}
}

// EnsureIndexes makes group names and usernames unique.
func (c *MongoAccessCollection) EnsureIndexes(ctx context.Context) error {
	if c.Groups == nil || c.Users == nil {
		return ErrNilCollection
	}
	unique := options.Index().SetUnique(true)
	if _, err := c.Groups.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}); err != nil {
		return err
	}
	_, err := c.Users.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique})
	return err
}

// UpsertGroup creates the group or replaces its permission list.
func (c *MongoAccessCollection) UpsertGroup(ctx context.Context, group models.Group) (bool, error) {
	if c.Groups == nil {
		return false, ErrNilCollection
	}
	result, err := c.Groups.UpdateOne(ctx,
		bson.M{"name": group.Name},
		bson.M{"$set": bson.M{"permissions": group.Permissions, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// EnsureUser inserts the user unless the username is already taken. An
// existing account is never modified.
func (c *MongoAccessCollection) EnsureUser(ctx context.Context, user models.User) (bool, error) {
	if c.Users == nil {
		return false, ErrNilCollection
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	result, err := c.Users.UpdateOne(ctx,
		bson.M{"username": user.Username},
		bson.M{"$setOnInsert": bson.M{
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"role":          user.Role,
			"is_active":     user.IsActive,
			"created_at":    user.CreatedAt,
			"updated_at":    user.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// FindUserByUsername finds a user by their username
func (c *MongoAccessCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if c.Users == nil {
		return nil, ErrNilCollection
	}
	var user models.User
	err := c.Users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
