// Package catalog manages categories, products and vendors.
//
// Products reference a category by id. The reference is checked when it is
// written; deleting a category leaves dangling references that read back as a
// nil category.
package catalog

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type Service struct {
	products   store.Products
	categories store.Categories
	vendors    store.Vendors
}

func NewService(s store.Store) *Service {
	return &Service{
		products:   s.Products(),
		categories: s.Categories(),
		vendors:    s.Vendors(),
	}
}

// storeErr maps a store error onto the client-facing kinds.
func storeErr(err error, notFound, duplicate string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, store.ErrDuplicate) && duplicate != "":
		return apperr.Conflict(duplicate)
	default:
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
}

// ---- categories ----

const (
	categoryNotFound  = "Category not found"
	categoryDuplicate = "Category name must be unique"
)

func (s *Service) CreateCategory(ctx context.Context, name, image string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidInput("Category name is required")
	}
	c := &models.Category{Name: name, Image: image}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, storeErr(err, categoryNotFound, categoryDuplicate)
	}
	logging.FromContext(ctx).Info("category_created", zap.String("category_id", c.ID.Hex()))
	return c, nil
}

func (s *Service) Category(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, err := s.categories.ByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, categoryNotFound, "")
	}
	return c, nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	cs, err := s.categories.List(ctx)
	if err != nil {
		return nil, storeErr(err, categoryNotFound, "")
	}
	return cs, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id primitive.ObjectID, patch store.CategoryPatch) (*models.Category, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.InvalidInput("Category name is required")
		}
		patch.Name = &name
	}
	c, err := s.categories.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr(err, categoryNotFound, categoryDuplicate)
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return storeErr(err, categoryNotFound, "")
	}
	logging.FromContext(ctx).Info("category_deleted", zap.String("category_id", id.Hex()))
	return nil
}

// ---- products ----

const productNotFound = "Product not found"

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Images      models.ProductImages
	Category    primitive.ObjectID
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.InvalidInput("Product name is required")
	case strings.TrimSpace(in.Description) == "":
		return apperr.InvalidInput("Product description is required")
	case in.Price < 0:
		return apperr.InvalidInput("Price must not be negative")
	case in.Stock < 0:
		return apperr.InvalidInput("Stock must not be negative")
	case in.Category.IsZero():
		return apperr.InvalidInput("Category is required")
	}
	return nil
}

func (s *Service) checkCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, err := s.categories.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.InvalidReference("Category does not exist")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	return c, nil
}

// lookupCategory resolves a product's category, returning nil for dangling ids.
func (s *Service) lookupCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, err := s.categories.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	return c, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.ProductView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.checkCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	if in.Images.AdditionalImages == nil {
		in.Images.AdditionalImages = []string{}
	}
	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Images:      in.Images,
		Category:    in.Category,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeErr(err, productNotFound, "")
	}
	logging.FromContext(ctx).Info("product_created", zap.String("product_id", p.ID.Hex()))
	v := models.NewProductView(p, c)
	return &v, nil
}

func (s *Service) Product(ctx context.Context, id primitive.ObjectID) (*models.ProductView, error) {
	p, err := s.products.ByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, productNotFound, "")
	}
	c, err := s.lookupCategory(ctx, p.Category)
	if err != nil {
		return nil, err
	}
	v := models.NewProductView(p, c)
	return &v, nil
}

func (s *Service) Products(ctx context.Context) ([]models.ProductView, error) {
	ps, err := s.products.List(ctx)
	if err != nil {
		return nil, storeErr(err, productNotFound, "")
	}
	cache := make(map[primitive.ObjectID]*models.Category)
	out := make([]models.ProductView, 0, len(ps))
	for i := range ps {
		c, ok := cache[ps[i].Category]
		if !ok {
			if c, err = s.lookupCategory(ctx, ps[i].Category); err != nil {
				return nil, err
			}
			cache[ps[i].Category] = c
		}
		out = append(out, models.NewProductView(&ps[i], c))
	}
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id primitive.ObjectID, patch store.ProductPatch) (*models.ProductView, error) {
	switch {
	case patch.Name != nil && strings.TrimSpace(*patch.Name) == "":
		return nil, apperr.InvalidInput("Product name is required")
	case patch.Price != nil && *patch.Price < 0:
		return nil, apperr.InvalidInput("Price must not be negative")
	case patch.Stock != nil && *patch.Stock < 0:
		return nil, apperr.InvalidInput("Stock must not be negative")
	}
	if patch.Category != nil {
		if _, err := s.checkCategory(ctx, *patch.Category); err != nil {
			return nil, err
		}
	}
	p, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr(err, productNotFound, "")
	}
	c, err := s.lookupCategory(ctx, p.Category)
	if err != nil {
		return nil, err
	}
	v := models.NewProductView(p, c)
	return &v, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return storeErr(err, productNotFound, "")
	}
	logging.FromContext(ctx).Info("product_deleted", zap.String("product_id", id.Hex()))
	return nil
}

// ---- vendors ----

const (
	vendorNotFound  = "Vendor not found"
	vendorDuplicate = "Vendor name must be unique"
)

type VendorInput struct {
	Name        string
	Address     string
	ContactInfo string
	Website     string
}

func (s *Service) CreateVendor(ctx context.Context, in VendorInput) (*models.Vendor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidInput("Vendor name is required")
	}
	v := &models.Vendor{
		Name:        name,
		Address:     in.Address,
		ContactInfo: in.ContactInfo,
		Website:     in.Website,
	}
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, storeErr(err, vendorNotFound, vendorDuplicate)
	}
	return v, nil
}

func (s *Service) Vendor(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	v, err := s.vendors.ByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, vendorNotFound, "")
	}
	return v, nil
}

func (s *Service) Vendors(ctx context.Context) ([]models.Vendor, error) {
	vs, err := s.vendors.List(ctx)
	if err != nil {
		return nil, storeErr(err, vendorNotFound, "")
	}
	return vs, nil
}

func (s *Service) UpdateVendor(ctx context.Context, id primitive.ObjectID, patch store.VendorPatch) (*models.Vendor, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.InvalidInput("Vendor name is required")
		}
		patch.Name = &name
	}
	v, err := s.vendors.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr(err, vendorNotFound, vendorDuplicate)
	}
	return v, nil
}

func (s *Service) DeleteVendor(ctx context.Context, id primitive.ObjectID) error {
	if err := s.vendors.Delete(ctx, id); err != nil {
		return storeErr(err, vendorNotFound, "")
	}
	return nil
}
