// Package store declares the document-store ports used by the services.
//
// Implementations live in mongostore (MongoDB) and memstore (in-process maps).
// Every write touches exactly one document.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
)

var (
	ErrNotFound          = errors.New("store: document not found")
	ErrDuplicate         = errors.New("store: duplicate key")
	ErrInsufficientStock = errors.New("store: insufficient stock")
)

type Store interface {
	Users() Users
	Products() Products
	Categories() Categories
	Vendors() Vendors
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type Users interface {
	// Create assigns u.ID. Returns ErrDuplicate when email or username is taken.
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	// SaveCart replaces the whole cart of one user.
	SaveCart(ctx context.Context, id primitive.ObjectID, cart []models.CartItem) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetAdmin(ctx context.Context, email string, admin bool) error
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	Images      *models.ProductImages
	Category    *primitive.ObjectID
}

type Products interface {
	Create(ctx context.Context, p *models.Product) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock subtracts qty only if at least qty units remain.
	// Returns ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type CategoryPatch struct {
	Name  *string
	Image *string
}

type Categories interface {
	Create(ctx context.Context, c *models.Category) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type VendorPatch struct {
	Name        *string
	Address     *string
	ContactInfo *string
	Website     *string
}

type Vendors interface {
	Create(ctx context.Context, v *models.Vendor) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error)
	List(ctx context.Context) ([]models.Vendor, error)
	Update(ctx context.Context, id primitive.ObjectID, patch VendorPatch) (*models.Vendor, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Apply copies the set fields of patch onto p.
func (patch ProductPatch) Apply(p *models.Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
}

func (patch CategoryPatch) Apply(c *models.Category) {
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Image != nil {
		c.Image = *patch.Image
	}
}

func (patch VendorPatch) Apply(v *models.Vendor) {
	if patch.Name != nil {
		v.Name = *patch.Name
	}
	if patch.Address != nil {
		v.Address = *patch.Address
	}
	if patch.ContactInfo != nil {
		v.ContactInfo = *patch.ContactInfo
	}
	if patch.Website != nil {
		v.Website = *patch.Website
	}
}
