package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type users struct {
	col *mongo.Collection
}

func (r *users) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Cart == nil {
		u.Cart = []models.CartItem{}
	}
	_, err := r.col.InsertOne(ctx, u)
	return translate("insert user", err)
}

func (r *users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

func (r *users) ByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *users) updateOne(ctx context.Context, filter, set bson.M, op string) error {
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return translate(op, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *users) SaveCart(ctx context.Context, id primitive.ObjectID, cart []models.CartItem) error {
	if cart == nil {
		cart = []models.CartItem{}
	}
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"cart": cart}, "save cart")
}

func (r *users) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"password": hash}, "set password")
}

func (r *users) SetAdmin(ctx context.Context, email string, admin bool) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"isAdmin": admin}, "set admin")
}
