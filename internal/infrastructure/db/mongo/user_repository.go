package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// UserRepository stores users and the user_roles join.
type UserRepository struct {
	coll    *mongo.Collection
	members *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		coll:    db.Collection(collectionUsers),
		members: db.Collection(collectionUserRoles),
	}
}

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Username           string             `bson:"username"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"password_hash"`
	FirstName          string             `bson:"first_name,omitempty"`
	LastName           string             `bson:"last_name,omitempty"`
	Enabled            bool               `bson:"enabled"`
	LanguagePreference string             `bson:"language_preference"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

type mongoUserRole struct {
	UserID primitive.ObjectID `bson:"user_id"`
	RoleID primitive.ObjectID `bson:"role_id"`
}

func (d mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 d.ID.Hex(),
		Username:           d.Username,
		Email:              d.Email,
		PasswordHash:       d.PasswordHash,
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		Enabled:            d.Enabled,
		LanguagePreference: d.LanguagePreference,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		ID:                 primitive.NewObjectID(),
		Username:           user.Username,
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Enabled:            user.Enabled,
		LanguagePreference: user.LanguagePreference,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, userConflict(err, user)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(domain.EntityUser, id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, username)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, key string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityUser, key)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := objectID(domain.EntityUser, user.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"email":               user.Email,
		"password_hash":       user.PasswordHash,
		"first_name":          user.FirstName,
		"last_name":           user.LastName,
		"enabled":             user.Enabled,
		"language_preference": user.LanguagePreference,
		"updated_at":          user.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return userConflict(err, user)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound(domain.EntityUser, user.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(domain.EntityUser, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound(domain.EntityUser, id)
	}
	if _, err := r.members.DeleteMany(ctx, bson.M{"user_id": oid}); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}
	return nil
}

func (r *UserRepository) RoleIDs(ctx context.Context, userID string) ([]string, error) {
	oid, err := objectID(domain.EntityUser, userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.members.Find(ctx, bson.M{"user_id": oid})
	if err != nil {
		return nil, fmt.Errorf("find user roles: %w", err)
	}
	var docs []mongoUserRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode user roles: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.RoleID)
	}
	return hexIDs(ids), nil
}

func (r *UserRepository) SetRoles(ctx context.Context, userID string, roleIDs []string) error {
	oid, err := objectID(domain.EntityUser, userID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.members.DeleteMany(ctx, bson.M{"user_id": oid}); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}

	roles := objectIDs(roleIDs)
	if len(roles) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(roles))
	for _, rid := range roles {
		docs = append(docs, mongoUserRole{UserID: oid, RoleID: rid})
	}
	if _, err := r.members.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert user roles: %w", err)
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.members.CountDocuments(ctx, bson.M{"role_id": oid})
	if err != nil {
		return 0, fmt.Errorf("count role members: %w", err)
	}
	return n, nil
}

// userConflict maps a duplicate key error to the field whose unique index
// rejected the write.
func userConflict(err error, user *domain.User) error {
	if strings.Contains(err.Error(), "email") {
		return domain.EmailTaken(user.Email)
	}
	return domain.UsernameTaken(user.Username)
}

// EnsureIndexes creates the unique username and email indexes and the
// membership indexes.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	if _, err := r.members.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("user role indexes: %w", err)
	}
	return nil
}
