package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type products struct {
	col *mongo.Collection
}

func (r *products) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Images.AdditionalImages == nil {
		p.Images.AdditionalImages = []string{}
	}
	_, err := r.col.InsertOne(ctx, p)
	return translate("insert product", err)
}

func (r *products) ByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate("find product", err)
	}
	return &p, nil
}

func (r *products) List(ctx context.Context) ([]models.Product, error) {
	return decodeAll[models.Product](ctx, r.col, "list products")
}

func (r *products) Update(ctx context.Context, id primitive.ObjectID, patch store.ProductPatch) (*models.Product, error) {
	set := bson.M{}
	setIf(set, "productname", deref(patch.Name), patch.Name != nil)
	setIf(set, "description", deref(patch.Description), patch.Description != nil)
	setIf(set, "price", deref(patch.Price), patch.Price != nil)
	setIf(set, "stock", deref(patch.Stock), patch.Stock != nil)
	setIf(set, "images", deref(patch.Images), patch.Images != nil)
	setIf(set, "category", deref(patch.Category), patch.Category != nil)
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}

	var p models.Product
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after()).Decode(&p)
	if err != nil {
		return nil, translate("update product", err)
	}
	return &p, nil
}

func (r *products) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id, "delete product")
}

// DecrementStock is a compare-and-decrement: the filter only matches while
// enough stock remains, so concurrent buyers cannot drive it negative.
func (r *products) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return translate("decrement stock", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("decrement stock", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrInsufficientStock
}

func (r *products) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stock": qty}})
	if err != nil {
		return translate("increment stock", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
