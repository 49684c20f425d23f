//go:build integration
// +build integration

package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

// setupStore starts a MongoDB container and returns a connected store with indexes.
func setupStore(t *testing.T) *Store {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("Failed to start MongoDB container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := Connect(ctx, uri, "storefront_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func TestIntegrationUsers(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	users := s.Users()

	u := &models.User{Firstname: "Ada", Surname: "Lovelace", Email: "ada@example.com", Username: "ada", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))

	err := users.Create(ctx, &models.User{Email: "ada@example.com", Username: "other"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	pid := primitive.NewObjectID()
	require.NoError(t, users.SaveCart(ctx, u.ID, []models.CartItem{{Product: pid, Quantity: 2}}))

	got, err := users.ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, got.Cart, 1)
	assert.Equal(t, pid, got.Cart[0].Product)

	require.NoError(t, users.SetAdmin(ctx, "ada@example.com", true))
	got, err = users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	_, err = users.ByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIntegrationStockIsConditional(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	products := s.Products()

	p := &models.Product{Name: "Lamp", Description: "warm", Price: 10, Stock: 3, Category: primitive.NewObjectID()}
	require.NoError(t, products.Create(ctx, p))

	require.NoError(t, products.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, products.DecrementStock(ctx, p.ID, 2), store.ErrInsufficientStock)
	assert.ErrorIs(t, products.DecrementStock(ctx, primitive.NewObjectID(), 1), store.ErrNotFound)

	require.NoError(t, products.IncrementStock(ctx, p.ID, 1))
	got, err := products.ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestIntegrationCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	categories := s.Categories()

	c := &models.Category{Name: "Books", Image: "books.png"}
	require.NoError(t, categories.Create(ctx, c))
	assert.ErrorIs(t, categories.Create(ctx, &models.Category{Name: "Books"}), store.ErrDuplicate)

	image := "new.png"
	updated, err := categories.Update(ctx, c.ID, store.CategoryPatch{Image: &image})
	require.NoError(t, err)
	assert.Equal(t, "Books", updated.Name)
	assert.Equal(t, "new.png", updated.Image)

	require.NoError(t, categories.Delete(ctx, c.ID))
	_, err = categories.ByID(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
