package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type categories struct {
	col *mongo.Collection
}

func (r *categories) Create(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, c)
	return translate("insert category", err)
}

func (r *categories) ByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate("find category", err)
	}
	return &c, nil
}

func (r *categories) List(ctx context.Context) ([]models.Category, error) {
	return decodeAll[models.Category](ctx, r.col, "list categories")
}

func (r *categories) Update(ctx context.Context, id primitive.ObjectID, patch store.CategoryPatch) (*models.Category, error) {
	set := bson.M{}
	setIf(set, "name", deref(patch.Name), patch.Name != nil)
	setIf(set, "image", deref(patch.Image), patch.Image != nil)
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}

	var c models.Category
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after()).Decode(&c); err != nil {
		return nil, translate("update category", err)
	}
	return &c, nil
}

func (r *categories) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id, "delete category")
}

type vendors struct {
	col *mongo.Collection
}

func (r *vendors) Create(ctx context.Context, v *models.Vendor) error {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, v)
	return translate("insert vendor", err)
}

func (r *vendors) ByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, translate("find vendor", err)
	}
	return &v, nil
}

func (r *vendors) List(ctx context.Context) ([]models.Vendor, error) {
	return decodeAll[models.Vendor](ctx, r.col, "list vendors")
}

func (r *vendors) Update(ctx context.Context, id primitive.ObjectID, patch store.VendorPatch) (*models.Vendor, error) {
	set := bson.M{}
	setIf(set, "name", deref(patch.Name), patch.Name != nil)
	setIf(set, "address", deref(patch.Address), patch.Address != nil)
	setIf(set, "contactInfo", deref(patch.ContactInfo), patch.ContactInfo != nil)
	setIf(set, "website", deref(patch.Website), patch.Website != nil)
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}

	var v models.Vendor
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after()).Decode(&v); err != nil {
		return nil, translate("update vendor", err)
	}
	return &v, nil
}

func (r *vendors) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id, "delete vendor")
}

func deleteByID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, op string) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(op, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
