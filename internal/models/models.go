package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Firstname    string             `bson:"firstname" json:"firstname"`
	Surname      string             `bson:"surname" json:"surname"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	Password     string             `bson:"password" json:"-"`
	ProfileImage string             `bson:"profileImage" json:"profileImage"`
	Cart         []CartItem         `bson:"cart" json:"cart"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
}

// DefaultProfileImage mirrors the value new accounts have always been created with.
const DefaultProfileImage = " "

// CartIndex returns the position of productID in the cart, or -1.
func (u *User) CartIndex(productID primitive.ObjectID) int {
	for i, item := range u.Cart {
		if item.Product == productID {
			return i
		}
	}
	return -1
}

// Profile is the password-free projection returned on login.
type Profile struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Username  string `json:"username"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID.Hex(),
		Firstname: u.Firstname,
		Surname:   u.Surname,
		Email:     u.Email,
		Username:  u.Username,
	}
}

type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// CartLine is a cart entry with its product resolved. Product is nil when the
// referenced document no longer exists.
type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

type ProductImages struct {
	CoverImage       string   `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	AdditionalImages []string `bson:"additionalImages" json:"additionalImages"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"productname" json:"productname"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      ProductImages      `bson:"images" json:"images"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
}

// CategoryRef is the slice of a category embedded into product reads.
type CategoryRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Image string             `json:"image"`
}

// ProductView is a product with its category denormalised. Category is nil
// for dangling references.
type ProductView struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"productname"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Stock       int                `json:"stock"`
	Images      ProductImages      `json:"images"`
	Category    *CategoryRef       `json:"category"`
}

func NewProductView(p *Product, c *Category) ProductView {
	v := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Images:      p.Images,
	}
	if c != nil {
		v.Category = &CategoryRef{ID: c.ID, Name: c.Name, Image: c.Image}
	}
	return v
}

type Category struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image" json:"image"`
}

type Vendor struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Address     string             `bson:"address" json:"address"`
	ContactInfo string             `bson:"contactInfo" json:"contactInfo"`
	Website     string             `bson:"website" json:"website"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
)

type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

// Order is persisted by nothing yet; checkout does not create orders.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Status        OrderStatus        `bson:"status" json:"status"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
}

// RefreshToken documents expire RefreshTokenTTL after CreatedAt (TTL index).
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Token     string             `bson:"token" json:"token"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

const RefreshTokenTTL = 7 * 24 * time.Hour
