// Package cart implements the per-user shopping cart and the purchase of its
// contents.
//
// The cart is an array embedded in the user document and every mutation
// rewrites it whole. Adding to the cart checks stock but does not reserve it;
// stock only moves on Buy.
package cart

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

// Purchase outcomes reported on storefront_checkout_purchases_total.
const (
	OutcomeCompleted         = "completed"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeProductMissing    = "product_missing"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

type Options struct {
	// RemoveAtFloor makes Decrease drop an entry whose quantity is 1 instead
	// of leaving it unchanged.
	RemoveAtFloor bool
}

type Service struct {
	users    store.Users
	products store.Products
	metrics  *metrics.Metrics
	opts     Options
}

func NewService(s store.Store, m *metrics.Metrics, opts Options) *Service {
	if m == nil {
		m = metrics.Discard()
	}
	return &Service{
		users:    s.Users(),
		products: s.Products(),
		metrics:  m,
		opts:     opts,
	}
}

func internalErr(err error) error {
	return apperr.Wrap(apperr.KindInternal, "An error occurred", err)
}

func (s *Service) user(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, internalErr(err)
	}
	return u, nil
}

func (s *Service) product(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, internalErr(err)
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, u *models.User) ([]models.CartItem, error) {
	if u.Cart == nil {
		u.Cart = []models.CartItem{}
	}
	if err := s.users.SaveCart(ctx, u.ID, u.Cart); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, internalErr(err)
	}
	return u.Cart, nil
}

func entryIndex(u *models.User, productID primitive.ObjectID) (int, error) {
	i := u.CartIndex(productID)
	if i < 0 {
		return -1, apperr.NotFound("Product not found in cart")
	}
	return i, nil
}

// Add puts quantity units of a product into the caller's cart, merging with
// an existing entry. The merged quantity may not exceed current stock.
func (s *Service) Add(ctx context.Context, p auth.Principal, productID primitive.ObjectID, quantity int) ([]models.CartItem, error) {
	u, err := s.user(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	prod, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperr.InvalidInput("Invalid quantity")
	}

	i := u.CartIndex(productID)
	newQty := quantity
	if i >= 0 {
		newQty += u.Cart[i].Quantity
	}
	if newQty > prod.Stock {
		return nil, apperr.InsufficientStock(fmt.Sprintf("Only %d units of this product are available in stock", prod.Stock))
	}
	if i >= 0 {
		u.Cart[i].Quantity = newQty
	} else {
		u.Cart = append(u.Cart, models.CartItem{Product: productID, Quantity: newQty})
	}
	return s.save(ctx, u)
}

func (s *Service) Increase(ctx context.Context, p auth.Principal, productID primitive.ObjectID) ([]models.CartItem, error) {
	u, err := s.user(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	i, err := entryIndex(u, productID)
	if err != nil {
		return nil, err
	}
	prod, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if u.Cart[i].Quantity >= prod.Stock {
		return nil, apperr.InsufficientStock("No more stock available")
	}
	u.Cart[i].Quantity++
	return s.save(ctx, u)
}

// Decrease lowers an entry by one. At quantity 1 the entry is kept as is,
// or removed when Options.RemoveAtFloor is set. An entry already holding more
// than the product's stock is refused.
func (s *Service) Decrease(ctx context.Context, p auth.Principal, productID primitive.ObjectID) ([]models.CartItem, error) {
	u, err := s.user(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	i, err := entryIndex(u, productID)
	if err != nil {
		return nil, err
	}
	prod, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if u.Cart[i].Quantity > prod.Stock {
		return nil, apperr.InsufficientStock("Insufficient stock available")
	}
	switch {
	case u.Cart[i].Quantity > 1:
		u.Cart[i].Quantity--
	case s.opts.RemoveAtFloor:
		u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
	}
	return s.save(ctx, u)
}

// DecreaseBy subtracts quantity from an entry of ownerID's cart and drops the
// entry once it reaches zero.
func (s *Service) DecreaseBy(ctx context.Context, p auth.Principal, ownerID, productID primitive.ObjectID, quantity int) ([]models.CartItem, error) {
	if p.UserID != ownerID {
		return nil, apperr.Forbidden("Unauthorized access")
	}
	u, err := s.user(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	prod, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperr.InvalidInput("Invalid quantity")
	}
	i, err := entryIndex(u, productID)
	if err != nil {
		return nil, err
	}
	// Only trips when stock has fallen below what would remain in the cart.
	if u.Cart[i].Quantity-quantity > prod.Stock {
		return nil, apperr.InsufficientStock("Insufficient stock available")
	}
	u.Cart[i].Quantity -= quantity
	if u.Cart[i].Quantity <= 0 {
		u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
	}
	return s.save(ctx, u)
}

func (s *Service) Remove(ctx context.Context, p auth.Principal, productID primitive.ObjectID) ([]models.CartItem, error) {
	u, err := s.user(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	i, err := entryIndex(u, productID)
	if err != nil {
		return nil, err
	}
	u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
	return s.save(ctx, u)
}

// Get returns ownerID's cart with product documents resolved. Entries whose
// product has been deleted carry a nil Product.
func (s *Service) Get(ctx context.Context, p auth.Principal, ownerID primitive.ObjectID) ([]models.CartLine, error) {
	if p.UserID != ownerID {
		return nil, apperr.Forbidden("Unauthorized access")
	}
	u, err := s.user(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	lines := make([]models.CartLine, 0, len(u.Cart))
	for _, item := range u.Cart {
		prod, err := s.products.ByID(ctx, item.Product)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, internalErr(err)
		}
		lines = append(lines, models.CartLine{Product: prod, Quantity: item.Quantity})
	}
	return lines, nil
}

// Buy takes every cart entry out of stock and empties the cart. If any entry
// cannot be taken, the decrements already applied are restored and the cart
// is left as it was.
func (s *Service) Buy(ctx context.Context, p auth.Principal) error {
	u, err := s.user(ctx, p.UserID)
	if err != nil {
		return err
	}
	if len(u.Cart) == 0 {
		s.metrics.Purchases.WithLabelValues(OutcomeEmptyCart).Inc()
		return apperr.InvalidState("Cart is empty")
	}

	log := logging.FromContext(ctx).With(zap.String("user_id", u.ID.Hex()))
	taken := make([]models.CartItem, 0, len(u.Cart))
	for _, item := range u.Cart {
		if err := s.take(ctx, item); err != nil {
			s.restore(ctx, log, taken)
			s.metrics.Purchases.WithLabelValues(outcomeOf(err)).Inc()
			log.Warn("cart_purchase_failed",
				zap.String("product_id", item.Product.Hex()),
				zap.Int("restored_items", len(taken)),
				zap.Error(err))
			return err
		}
		taken = append(taken, item)
	}

	if _, err := s.save(ctx, &models.User{ID: u.ID}); err != nil {
		s.restore(ctx, log, taken)
		s.metrics.Purchases.WithLabelValues(OutcomeError).Inc()
		log.Error("cart_purchase_failed", zap.String("stage", "clear_cart"), zap.Error(err))
		return err
	}
	s.metrics.Purchases.WithLabelValues(OutcomeCompleted).Inc()
	log.Info("cart_purchased", zap.Int("items", len(taken)))
	return nil
}

func (s *Service) take(ctx context.Context, item models.CartItem) error {
	notFound := apperr.NotFound("Product not found: " + item.Product.Hex())
	short := apperr.InsufficientStock("Insufficient stock for product: " + item.Product.Hex())

	prod, err := s.products.ByID(ctx, item.Product)
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	if err != nil {
		return internalErr(err)
	}
	if prod.Stock < item.Quantity {
		return short
	}
	// The conditional decrement catches a concurrent buyer that got in
	// between the read above and this write.
	switch err := s.products.DecrementStock(ctx, item.Product, item.Quantity); {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrInsufficientStock):
		return short
	case errors.Is(err, store.ErrNotFound):
		return notFound
	default:
		return internalErr(err)
	}
}

// restore gives back stock taken by a failed purchase. It runs detached from
// the request deadline.
func (s *Service) restore(ctx context.Context, log *zap.Logger, taken []models.CartItem) {
	if len(taken) == 0 {
		return
	}
	s.metrics.PurchaseRollbacks.Inc()
	ctx = context.WithoutCancel(ctx)
	for _, item := range taken {
		if err := s.products.IncrementStock(ctx, item.Product, item.Quantity); err != nil {
			log.Error("cart_rollback_failed",
				zap.String("product_id", item.Product.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func outcomeOf(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return OutcomeProductMissing
	case apperr.KindInsufficientStock:
		return OutcomeInsufficientStock
	default:
		return OutcomeError
	}
}
