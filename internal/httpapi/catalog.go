package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

func pathID(c *gin.Context, what string) (primitive.ObjectID, bool) {
	return objectID(c, keyError, c.Param("id"), what)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func bindCatalog(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, keyError, "Invalid request body")
		return false
	}
	return true
}

// ---- products ----

type productRequest struct {
	Name        *string               `json:"productname"`
	Description *string               `json:"description"`
	Price       *float64              `json:"price"`
	Stock       *int                  `json:"stock"`
	Category    *string               `json:"category"`
	Images      *models.ProductImages `json:"images"`
}

func (r productRequest) patch(c *gin.Context) (store.ProductPatch, bool) {
	patch := store.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Images:      r.Images,
	}
	if r.Category != nil {
		id, ok := objectID(c, keyError, *r.Category, "category")
		if !ok {
			return patch, false
		}
		patch.Category = &id
	}
	return patch, true
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.catalog.Products(c.Request.Context())
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	p, err := s.catalog.Product(c.Request.Context(), id)
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if !bindCatalog(c, &req) {
		return
	}
	if req.Name == nil || req.Description == nil || req.Price == nil || req.Stock == nil || req.Category == nil {
		badRequest(c, keyError, "productname, description, price, stock and category are required")
		return
	}
	patch, ok := req.patch(c)
	if !ok {
		return
	}
	in := catalog.ProductInput{
		Name:        *patch.Name,
		Description: *patch.Description,
		Price:       *patch.Price,
		Stock:       *patch.Stock,
		Category:    *patch.Category,
	}
	if patch.Images != nil {
		in.Images = *patch.Images
	}
	p, err := s.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	var req productRequest
	if !bindCatalog(c, &req) {
		return
	}
	patch, ok := req.patch(c)
	if !ok {
		return
	}
	p, err := s.catalog.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	if err := s.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// ---- categories ----

type categoryRequest struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.catalog.Categories(c.Request.Context())
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) getCategory(c *gin.Context) {
	id, ok := pathID(c, "category")
	if !ok {
		return
	}
	category, err := s.catalog.Category(c.Request.Context(), id)
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if !bindCatalog(c, &req) {
		return
	}
	category, err := s.catalog.CreateCategory(c.Request.Context(), str(req.Name), str(req.Image))
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "category")
	if !ok {
		return
	}
	var req categoryRequest
	if !bindCatalog(c, &req) {
		return
	}
	category, err := s.catalog.UpdateCategory(c.Request.Context(), id, store.CategoryPatch{Name: req.Name, Image: req.Image})
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "category")
	if !ok {
		return
	}
	if err := s.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// ---- vendors ----

type vendorRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	ContactInfo *string `json:"contactInfo"`
	Website     *string `json:"website"`
}

func (r vendorRequest) patch() store.VendorPatch {
	return store.VendorPatch{Name: r.Name, Address: r.Address, ContactInfo: r.ContactInfo, Website: r.Website}
}

func (s *Server) listVendors(c *gin.Context) {
	vendors, err := s.catalog.Vendors(c.Request.Context())
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (s *Server) getVendor(c *gin.Context) {
	id, ok := pathID(c, "vendor")
	if !ok {
		return
	}
	v, err := s.catalog.Vendor(c.Request.Context(), id)
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) createVendor(c *gin.Context) {
	var req vendorRequest
	if !bindCatalog(c, &req) {
		return
	}
	v, err := s.catalog.CreateVendor(c.Request.Context(), catalog.VendorInput{
		Name:        str(req.Name),
		Address:     str(req.Address),
		ContactInfo: str(req.ContactInfo),
		Website:     str(req.Website),
	})
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (s *Server) updateVendor(c *gin.Context) {
	id, ok := pathID(c, "vendor")
	if !ok {
		return
	}
	var req vendorRequest
	if !bindCatalog(c, &req) {
		return
	}
	v, err := s.catalog.UpdateVendor(c.Request.Context(), id, req.patch())
	if err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) deleteVendor(c *gin.Context) {
	id, ok := pathID(c, "vendor")
	if !ok {
		return
	}
	if err := s.catalog.DeleteVendor(c.Request.Context(), id); err != nil {
		s.fail(c, keyError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
}
