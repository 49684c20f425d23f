package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// bindCartItem reads {productId, quantity}. Quantity is left to the service.
func bindCartItem(c *gin.Context) (primitive.ObjectID, int, bool) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, keyMessage, "Invalid request body")
		return primitive.NilObjectID, 0, false
	}
	id, ok := objectID(c, keyMessage, req.ProductID, "product")
	return id, req.Quantity, ok
}

func cartResponse(c *gin.Context, message string, cart []models.CartItem) {
	c.JSON(http.StatusOK, gin.H{"message": message, "cart": cart})
}

func (s *Server) getCart(c *gin.Context) {
	owner, ok := objectID(c, keyMessage, c.Param("userId"), "user")
	if !ok {
		return
	}
	lines, err := s.cart.Get(c.Request.Context(), principal(c), owner)
	if err != nil {
		s.fail(c, keyMessage, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (s *Server) addToCart(c *gin.Context) {
	pid, qty, ok := bindCartItem(c)
	if !ok {
		return
	}
	cart, err := s.cart.Add(c.Request.Context(), principal(c), pid, qty)
	if err != nil {
		s.fail(c, keyMessage, err)
		return
	}
	cartResponse(c, "Product added to cart", cart)
}

func (s *Server) increaseQuantity(c *gin.Context) {
	pid, _, ok := bindCartItem(c)
	if !ok {
		return
	}
	cart, err := s.cart.Increase(c.Request.Context(), principal(c), pid)
	if err != nil {
		s.fail(c, keyMessage, err)
		return
	}
	cartResponse(c, "Product quantity increased", cart)
}

func (s *Server) decreaseQuantity(c *gin.Context) {
	pid, _, ok := bindCartItem(c)
	if !ok {
		return
	}
	cart, err := s.cart.Decrease(c.Request.Context(), principal(c), pid)
	if err != nil {
		s.fail(c, keyMessage, err)
		return
	}
	cartResponse(c, "Product quantity decreased", cart)
}

func (s *Server) decreaseFromCart(c *gin.Context) {
	owner, ok := objectID(c, keyMessage, c.Param("userId"), "user")
	if !ok {
		return
	}
	pid, qty, ok := bindCartItem(c)
	if !ok {
		return
	}
	cart, err := s.cart.DecreaseBy(c.Request.Context(), principal(c), owner, pid, qty)
	if err != nil {
		s.fail(c, keyMessage, err)
		return
	}
	cartResponse(c, "Product quantity decreased in cart", cart)
}

func (s *Server) removeFromCart(c *gin.Context) {
	pid, ok := objectID(c, keyMessage, c.Param("productId"), "product")
	if !ok {
		return
	}
	cart, err := s.cart.Remove(c.Request.Context(), principal(c), pid)
	if err != nil {
		s.fail(c, keyMessage, err)
		return
	}
	cartResponse(c, "Product removed from cart", cart)
}

func (s *Server) buy(c *gin.Context) {
	if err := s.cart.Buy(c.Request.Context(), principal(c)); err != nil {
		s.fail(c, keyMessage, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase completed successfully"})
}
