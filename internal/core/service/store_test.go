package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories
// ---------------------------------------------------------------------------

type memStore struct {
	seq            int
	users          map[string]*domain.User
	roles          map[string]*domain.Role
	privileges     map[string]*domain.Privilege
	customers      map[string]*domain.Customer
	userRoles      map[string]map[string]struct{}
	rolePrivileges map[string]map[string]struct{}
	granted        map[string]time.Time
	audit          []*domain.AuditEntry
	auditErr       error
	// auditInTx counts audit appends made with a transactional context.
	auditInTx int
}

func newMemStore() *memStore {
	return &memStore{
		users:          make(map[string]*domain.User),
		roles:          make(map[string]*domain.Role),
		privileges:     make(map[string]*domain.Privilege),
		customers:      make(map[string]*domain.Customer),
		userRoles:      make(map[string]map[string]struct{}),
		rolePrivileges: make(map[string]map[string]struct{}),
		granted:        make(map[string]time.Time),
	}
}

func (s *memStore) nextID() string {
	s.seq++
	return "id-" + strconv.Itoa(s.seq)
}

func setKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct{ s *memStore }

func (r stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	clone := *u
	clone.ID = r.s.nextID()
	r.s.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityUser, id)
	}
	clone := *u
	return &clone, nil
}

func (r stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.NotFound(domain.EntityUser, username)
}

func (r stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.NotFound(domain.EntityUser, u.ID)
	}
	clone := *u
	r.s.users[u.ID] = &clone
	return nil
}

func (r stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.users[id]; !ok {
		return domain.NotFound(domain.EntityUser, id)
	}
	delete(r.s.users, id)
	delete(r.s.userRoles, id)
	return nil
}

func (r stubUserRepo) RoleIDs(_ context.Context, userID string) ([]string, error) {
	return setKeys(r.s.userRoles[userID]), nil
}

func (r stubUserRepo) SetRoles(_ context.Context, userID string, roleIDs []string) error {
	set := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		set[id] = struct{}{}
	}
	r.s.userRoles[userID] = set
	return nil
}

func (r stubUserRepo) CountByRole(_ context.Context, roleID string) (int64, error) {
	var n int64
	for _, set := range r.s.userRoles {
		if _, ok := set[roleID]; ok {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Roles
// ---------------------------------------------------------------------------

type stubRoleRepo struct{ s *memStore }

func (r stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	clone := *role
	clone.ID = r.s.nextID()
	r.s.roles[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.s.roles[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityRole, id)
	}
	clone := *role
	return &clone, nil
}

func (r stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.s.roles {
		if role.Name == name {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.NotFound(domain.EntityRole, name)
}

func (r stubRoleRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Role, error) {
	out := make([]*domain.Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := r.s.roles[id]; ok {
			clone := *role
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r stubRoleRepo) FindAll(_ context.Context) ([]*domain.Role, error) {
	out := make([]*domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		clone := *role
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r stubRoleRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, role := range r.s.roles {
		if role.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r stubRoleRepo) Update(_ context.Context, role *domain.Role) error {
	if _, ok := r.s.roles[role.ID]; !ok {
		return domain.NotFound(domain.EntityRole, role.ID)
	}
	clone := *role
	r.s.roles[role.ID] = &clone
	return nil
}

func (r stubRoleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.roles[id]; !ok {
		return domain.NotFound(domain.EntityRole, id)
	}
	delete(r.s.roles, id)
	delete(r.s.rolePrivileges, id)
	return nil
}

func (r stubRoleRepo) PrivilegeIDs(_ context.Context, roleID string) ([]string, error) {
	return setKeys(r.s.rolePrivileges[roleID]), nil
}

func (r stubRoleRepo) SetPrivileges(_ context.Context, roleID string, privilegeIDs []string) error {
	set := make(map[string]struct{}, len(privilegeIDs))
	for _, id := range privilegeIDs {
		set[id] = struct{}{}
	}
	r.s.rolePrivileges[roleID] = set
	return nil
}

func (r stubRoleRepo) AddPrivilege(_ context.Context, roleID, privilegeID string) error {
	set, ok := r.s.rolePrivileges[roleID]
	if !ok {
		set = make(map[string]struct{})
		r.s.rolePrivileges[roleID] = set
	}
	set[privilegeID] = struct{}{}
	return nil
}

func (r stubRoleRepo) RemovePrivilege(_ context.Context, roleID, privilegeID string) error {
	delete(r.s.rolePrivileges[roleID], privilegeID)
	return nil
}

// ---------------------------------------------------------------------------
// Privileges
// ---------------------------------------------------------------------------

type stubPrivilegeRepo struct{ s *memStore }

func (r stubPrivilegeRepo) Create(_ context.Context, p *domain.Privilege) (*domain.Privilege, error) {
	clone := *p
	clone.ID = r.s.nextID()
	r.s.privileges[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r stubPrivilegeRepo) FindByID(_ context.Context, id string) (*domain.Privilege, error) {
	p, ok := r.s.privileges[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityPrivilege, id)
	}
	clone := *p
	return &clone, nil
}

func (r stubPrivilegeRepo) FindByName(_ context.Context, name string) (*domain.Privilege, error) {
	for _, p := range r.s.privileges {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.NotFound(domain.EntityPrivilege, name)
}

func (r stubPrivilegeRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Privilege, error) {
	out := make([]*domain.Privilege, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.privileges[id]; ok {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r stubPrivilegeRepo) FindAll(_ context.Context) ([]*domain.Privilege, error) {
	out := make([]*domain.Privilege, 0, len(r.s.privileges))
	for _, p := range r.s.privileges {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r stubPrivilegeRepo) FindByCategory(ctx context.Context, category string) ([]*domain.Privilege, error) {
	all, _ := r.FindAll(ctx)
	out := make([]*domain.Privilege, 0)
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r stubPrivilegeRepo) Categories(_ context.Context) ([]string, error) {
	set := make(map[string]struct{})
	for _, p := range r.s.privileges {
		if p.Category != "" {
			set[p.Category] = struct{}{}
		}
	}
	return setKeys(set), nil
}

func (r stubPrivilegeRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, p := range r.s.privileges {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r stubPrivilegeRepo) Update(_ context.Context, p *domain.Privilege) error {
	if _, ok := r.s.privileges[p.ID]; !ok {
		return domain.NotFound(domain.EntityPrivilege, p.ID)
	}
	clone := *p
	r.s.privileges[p.ID] = &clone
	return nil
}

func (r stubPrivilegeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.privileges[id]; !ok {
		return domain.NotFound(domain.EntityPrivilege, id)
	}
	delete(r.s.privileges, id)
	for _, set := range r.s.rolePrivileges {
		delete(set, id)
	}
	return nil
}

func (r stubPrivilegeRepo) MarkGranted(_ context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		if _, ok := r.s.privileges[id]; ok {
			r.s.granted[id] = at
		}
	}
	return nil
}

func (r stubPrivilegeRepo) CountRoles(_ context.Context, privilegeID string) (int64, error) {
	var n int64
	for _, set := range r.s.rolePrivileges {
		if _, ok := set[privilegeID]; ok {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

type stubCustomerRepo struct{ s *memStore }

func (r stubCustomerRepo) Create(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	clone := *c
	clone.ID = r.s.nextID()
	r.s.customers[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r stubCustomerRepo) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityCustomer, id)
	}
	clone := *c
	return &clone, nil
}

func (r stubCustomerRepo) FindAll(_ context.Context) ([]*domain.Customer, error) {
	out := make([]*domain.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r stubCustomerRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, c := range r.s.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r stubCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	if _, ok := r.s.customers[c.ID]; !ok {
		return domain.NotFound(domain.EntityCustomer, c.ID)
	}
	clone := *c
	r.s.customers[c.ID] = &clone
	return nil
}

func (r stubCustomerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.s.customers[id]; !ok {
		return domain.NotFound(domain.EntityCustomer, id)
	}
	delete(r.s.customers, id)
	return nil
}

// ---------------------------------------------------------------------------
// Audit, transactions and security collaborators
// ---------------------------------------------------------------------------

type stubAuditRepo struct{ s *memStore }

func (r stubAuditRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	if ctx.Value(txContextKey{}) != nil {
		r.s.auditInTx++
	}
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	clone := *e
	r.s.audit = append(r.s.audit, &clone)
	return nil
}

type txContextKey struct{}

// stubTx marks the context it hands to fn. commitErr simulates a commit that
// fails after the work itself succeeded.
type stubTx struct {
	calls     int
	commitErr error
}

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if err := fn(context.WithValue(ctx, txContextKey{}, true)); err != nil {
		return err
	}
	return t.commitErr
}

type stubHasher struct{}

func (stubHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }

// stubAuthenticator compares against the stubHasher encoding.
type stubAuthenticator struct {
	s   *memStore
	err error
}

func (a stubAuthenticator) Authenticate(_ context.Context, username, password string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	for _, u := range a.s.users {
		if u.Username == username && u.PasswordHash == "hashed:"+password && u.Enabled {
			return username, nil
		}
	}
	return "", domain.BadCredentials()
}

type stubTokens struct{ issued []ports.Identity }

func (t *stubTokens) Issue(identity ports.Identity) (string, error) {
	t.issued = append(t.issued, identity)
	return "token-for-" + identity.Username, nil
}

type stubThrottle struct {
	failures map[string]int
	max      int
	allowErr error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Allow(_ context.Context, username string) (bool, error) {
	if t.allowErr != nil {
		return false, t.allowErr
	}
	return t.failures[username] < t.max, nil
}

func (t *stubThrottle) Fail(_ context.Context, username string) error {
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	delete(t.failures, username)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture helpers
// ---------------------------------------------------------------------------

var (
	discardLogger = zerolog.Nop()
	fixedNow      = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	errStoreDown  = errors.New("store down")
)

func fixedClock() time.Time { return fixedNow }

func (s *memStore) seedRole(name string, system bool) *domain.Role {
	id := s.nextID()
	r := &domain.Role{ID: id, Name: name, SystemRole: system, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	s.roles[id] = r
	return r
}

func (s *memStore) seedPrivilege(name, category string) *domain.Privilege {
	id := s.nextID()
	p := &domain.Privilege{ID: id, Name: name, Category: category, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	s.privileges[id] = p
	return p
}

func (s *memStore) seedUser(username string, roles ...*domain.Role) *domain.User {
	id := s.nextID()
	u := &domain.User{
		ID:                 id,
		Username:           username,
		Email:              username + "@example.com",
		PasswordHash:       "hashed:secret",
		Enabled:            true,
		LanguagePreference: domain.DefaultLanguage,
		CreatedAt:          fixedNow,
		UpdatedAt:          fixedNow,
	}
	s.users[id] = u
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r.ID] = struct{}{}
	}
	s.userRoles[id] = set
	return u
}

func (s *memStore) grant(role *domain.Role, privileges ...*domain.Privilege) {
	set, ok := s.rolePrivileges[role.ID]
	if !ok {
		set = make(map[string]struct{})
		s.rolePrivileges[role.ID] = set
	}
	for _, p := range privileges {
		set[p.ID] = struct{}{}
	}
}
