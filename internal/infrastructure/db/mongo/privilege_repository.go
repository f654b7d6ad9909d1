package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcrm/crm-service/internal/core/domain"
)

type PrivilegeRepository struct {
	col    *mongo.Collection
	grants *mongo.Collection
}

func NewPrivilegeRepository(db *mongo.Database) *PrivilegeRepository {
	return &PrivilegeRepository{
		col:    db.Collection(collectionPrivileges),
		grants: db.Collection(collectionRolePrivileges),
	}
}

type mongoPrivilege struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d mongoPrivilege) toDomain() *domain.Privilege {
	return &domain.Privilege{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *PrivilegeRepository) Create(ctx context.Context, p *domain.Privilege) (*domain.Privilege, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPrivilege{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Duplicate(domain.EntityPrivilege, p.Name)
		}
		return nil, fmt.Errorf("insert privilege: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PrivilegeRepository) FindByID(ctx context.Context, id string) (*domain.Privilege, error) {
	oid, err := objectID(domain.EntityPrivilege, id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *PrivilegeRepository) FindByName(ctx context.Context, name string) (*domain.Privilege, error) {
	return r.findOne(ctx, bson.M{"name": name}, name)
}

func (r *PrivilegeRepository) findOne(ctx context.Context, filter bson.M, key string) (*domain.Privilege, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPrivilege
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityPrivilege, key)
		}
		return nil, fmt.Errorf("find privilege: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PrivilegeRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Privilege, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []*domain.Privilege{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *PrivilegeRepository) FindAll(ctx context.Context) ([]*domain.Privilege, error) {
	return r.find(ctx, bson.M{})
}

func (r *PrivilegeRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Privilege, error) {
	return r.find(ctx, bson.M{"category": category})
}

func (r *PrivilegeRepository) find(ctx context.Context, filter bson.M) ([]*domain.Privilege, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find privileges: %w", err)
	}
	var docs []mongoPrivilege
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode privileges: %w", err)
	}

	out := make([]*domain.Privilege, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Categories returns the distinct non-empty categories in ascending order.
func (r *PrivilegeRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, "category", bson.M{"category": bson.M{"$nin": bson.A{"", nil}}})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *PrivilegeRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count privileges: %w", err)
	}
	return n > 0, nil
}

func (r *PrivilegeRepository) Update(ctx context.Context, p *domain.Privilege) error {
	oid, err := objectID(domain.EntityPrivilege, p.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"description": p.Description,
		"category":    p.Category,
		"updated_at":  p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update privilege: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound(domain.EntityPrivilege, p.ID)
	}
	return nil
}

func (r *PrivilegeRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(domain.EntityPrivilege, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete privilege: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound(domain.EntityPrivilege, id)
	}
	if _, err := r.grants.DeleteMany(ctx, bson.M{"privilege_id": oid}); err != nil {
		return fmt.Errorf("delete privilege grants: %w", err)
	}
	return nil
}

func (r *PrivilegeRepository) MarkGranted(ctx context.Context, ids []string, at time.Time) error {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		bson.M{"$set": bson.M{"last_granted_at": at}},
	)
	if err != nil {
		return fmt.Errorf("mark privileges granted: %w", err)
	}
	return nil
}

func (r *PrivilegeRepository) CountRoles(ctx context.Context, privilegeID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(privilegeID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.grants.CountDocuments(ctx, bson.M{"privilege_id": oid})
	if err != nil {
		return 0, fmt.Errorf("count privilege roles: %w", err)
	}
	return n, nil
}

func (r *PrivilegeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("privilege indexes: %w", err)
	}
	return nil
}
