// Package memstore is an in-process implementation of store.Store. It keeps the
// same unique constraints as the Mongo indexes and hands out copies, never
// pointers into its maps.
package memstore

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type Store struct {
	users      *users
	products   *products
	categories *categories
	vendors    *vendors
}

func New() *Store {
	return &Store{
		users:      &users{items: make(map[primitive.ObjectID]*models.User)},
		products:   &products{items: make(map[primitive.ObjectID]*models.Product)},
		categories: &categories{items: make(map[primitive.ObjectID]*models.Category)},
		vendors:    &vendors{items: make(map[primitive.ObjectID]*models.Vendor)},
	}
}

func (s *Store) Users() store.Users             { return s.users }
func (s *Store) Products() store.Products       { return s.products }
func (s *Store) Categories() store.Categories   { return s.categories }
func (s *Store) Vendors() store.Vendors         { return s.vendors }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close(context.Context) error    { return nil }

// sortedIDs gives list operations insertion order; ObjectIDs start with a timestamp.
func sortedIDs[T any](m map[primitive.ObjectID]T) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids
}

type users struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*models.User
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Cart = append([]models.CartItem(nil), u.Cart...)
	return &c
}

func (r *users) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email || existing.Username == u.Username {
			return store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.items[u.ID] = cloneUser(u)
	return nil
}

func (r *users) ByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *users) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *users) update(id primitive.ObjectID, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *users) SaveCart(ctx context.Context, id primitive.ObjectID, cart []models.CartItem) error {
	return r.update(id, func(u *models.User) {
		u.Cart = append([]models.CartItem{}, cart...)
	})
}

func (r *users) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.update(id, func(u *models.User) { u.Password = hash })
}

func (r *users) SetAdmin(ctx context.Context, email string, admin bool) error {
	u, err := r.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	return r.update(u.ID, func(u *models.User) { u.IsAdmin = admin })
}

type products struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*models.Product
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Images.AdditionalImages = append([]string(nil), p.Images.AdditionalImages...)
	return &c
}

func (r *products) Create(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.items[p.ID] = cloneProduct(p)
	return nil
}

func (r *products) ByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *products) List(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.items))
	for _, id := range sortedIDs(r.items) {
		out = append(out, *cloneProduct(r.items[id]))
	}
	return out, nil
}

func (r *products) Update(ctx context.Context, id primitive.ObjectID, patch store.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(p)
	return cloneProduct(p), nil
}

func (r *products) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *products) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if p.Stock < qty {
		return store.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *products) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock += qty
	return nil
}

type categories struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*models.Category
}

func (r *categories) nameTaken(name string, except primitive.ObjectID) bool {
	for id, c := range r.items {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (r *categories) Create(ctx context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(c.Name, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *categories) ByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *categories) List(ctx context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Category, 0, len(r.items))
	for _, id := range sortedIDs(r.items) {
		out = append(out, *r.items[id])
	}
	return out, nil
}

func (r *categories) Update(ctx context.Context, id primitive.ObjectID, patch store.CategoryPatch) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil && r.nameTaken(*patch.Name, id) {
		return nil, store.ErrDuplicate
	}
	patch.Apply(c)
	cp := *c
	return &cp, nil
}

func (r *categories) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type vendors struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*models.Vendor
}

func (r *vendors) nameTaken(name string, except primitive.ObjectID) bool {
	for id, v := range r.items {
		if id != except && v.Name == name {
			return true
		}
	}
	return false
}

func (r *vendors) Create(ctx context.Context, v *models.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(v.Name, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	cp := *v
	r.items[v.ID] = &cp
	return nil
}

func (r *vendors) ByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *vendors) List(ctx context.Context) ([]models.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Vendor, 0, len(r.items))
	for _, id := range sortedIDs(r.items) {
		out = append(out, *r.items[id])
	}
	return out, nil
}

func (r *vendors) Update(ctx context.Context, id primitive.ObjectID, patch store.VendorPatch) (*models.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil && r.nameTaken(*patch.Name, id) {
		return nil, store.ErrDuplicate
	}
	patch.Apply(v)
	cp := *v
	return &cp, nil
}

func (r *vendors) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
