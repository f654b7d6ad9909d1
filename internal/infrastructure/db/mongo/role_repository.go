package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// RoleRepository stores roles and the role_privileges join.
type RoleRepository struct {
	col    *mongo.Collection
	grants *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		col:    db.Collection(collectionRoles),
		grants: db.Collection(collectionRolePrivileges),
	}
}

type mongoRole struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	SystemRole  bool               `bson:"system_role"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type mongoRolePrivilege struct {
	RoleID      primitive.ObjectID `bson:"role_id"`
	PrivilegeID primitive.ObjectID `bson:"privilege_id"`
}

func (d mongoRole) toDomain() *domain.Role {
	return &domain.Role{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		SystemRole:  d.SystemRole,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Create inserts a new role document.
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoRole{
		ID:          primitive.NewObjectID(),
		Name:        role.Name,
		Description: role.Description,
		SystemRole:  role.SystemRole,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Duplicate(domain.EntityRole, role.Name)
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := objectID(domain.EntityRole, id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"name": name}, name)
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M, key string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoRole
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityRole, key)
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Role, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []*domain.Role{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]*domain.Role, error) {
	return r.find(ctx, bson.M{})
}

func (r *RoleRepository) find(ctx context.Context, filter bson.M) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	out := make([]*domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RoleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count roles: %w", err)
	}
	return n > 0, nil
}

// Update persists the mutable fields. Name and system flag are never written.
func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	oid, err := objectID(domain.EntityRole, role.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"description": role.Description,
		"updated_at":  role.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound(domain.EntityRole, role.ID)
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(domain.EntityRole, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound(domain.EntityRole, id)
	}
	if _, err := r.grants.DeleteMany(ctx, bson.M{"role_id": oid}); err != nil {
		return fmt.Errorf("delete role privileges: %w", err)
	}
	return nil
}

func (r *RoleRepository) PrivilegeIDs(ctx context.Context, roleID string) ([]string, error) {
	oid, err := objectID(domain.EntityRole, roleID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.grants.Find(ctx, bson.M{"role_id": oid})
	if err != nil {
		return nil, fmt.Errorf("find role privileges: %w", err)
	}
	var docs []mongoRolePrivilege
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode role privileges: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.PrivilegeID)
	}
	return hexIDs(ids), nil
}

func (r *RoleRepository) SetPrivileges(ctx context.Context, roleID string, privilegeIDs []string) error {
	oid, err := objectID(domain.EntityRole, roleID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.grants.DeleteMany(ctx, bson.M{"role_id": oid}); err != nil {
		return fmt.Errorf("clear role privileges: %w", err)
	}

	privileges := objectIDs(privilegeIDs)
	if len(privileges) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(privileges))
	for _, pid := range privileges {
		docs = append(docs, mongoRolePrivilege{RoleID: oid, PrivilegeID: pid})
	}
	if _, err := r.grants.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert role privileges: %w", err)
	}
	return nil
}

// AddPrivilege upserts the membership so a repeated grant is a no-op.
func (r *RoleRepository) AddPrivilege(ctx context.Context, roleID, privilegeID string) error {
	rid, err := objectID(domain.EntityRole, roleID)
	if err != nil {
		return err
	}
	pid, err := objectID(domain.EntityPrivilege, privilegeID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"role_id": rid, "privilege_id": pid}
	update := bson.M{"$setOnInsert": mongoRolePrivilege{RoleID: rid, PrivilegeID: pid}}
	if _, err := r.grants.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("add role privilege: %w", err)
	}
	return nil
}

func (r *RoleRepository) RemovePrivilege(ctx context.Context, roleID, privilegeID string) error {
	rid, err := objectID(domain.EntityRole, roleID)
	if err != nil {
		return err
	}
	pid, err := objectID(domain.EntityPrivilege, privilegeID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.grants.DeleteOne(ctx, bson.M{"role_id": rid, "privilege_id": pid}); err != nil {
		return fmt.Errorf("remove role privilege: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the roles and role_privileges
// collections.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("role indexes: %w", err)
	}

	if _, err := r.grants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "role_id", Value: 1}, {Key: "privilege_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "privilege_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("role privilege indexes: %w", err)
	}
	return nil
}
