// Package auth owns passwords, bearer tokens and the admin gate.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

// Principal identifies the caller of a service operation.
type Principal struct {
	UserID  primitive.ObjectID
	IsAdmin bool
}

func PrincipalOf(u *models.User) Principal {
	return Principal{UserID: u.ID, IsAdmin: u.IsAdmin}
}

type RegisterInput struct {
	Firstname string
	Surname   string
	Email     string
	Username  string
	Password  string
}

// InvalidEmailMessage is returned when the email is not a valid address.
const InvalidEmailMessage = "Please provide a valid email"

var validate = validator.New()

type Service struct {
	users      store.Users
	tokens     *Tokens
	bcryptCost int
}

func NewService(users store.Users, tokens *Tokens, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	in.Firstname = strings.TrimSpace(in.Firstname)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Firstname == "" || in.Surname == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return apperr.InvalidInput("All fields are required")
	}
	if err := validate.Var(in.Email, "email"); err != nil {
		return apperr.InvalidInput(InvalidEmailMessage)
	}

	if _, err := s.users.ByEmail(ctx, in.Email); err == nil {
		return apperr.Conflict("Email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	if _, err := s.users.ByUsername(ctx, in.Username); err == nil {
		return apperr.Conflict("Username already taken")
	} else if !errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	if !ValidatePassword(in.Password) {
		return apperr.InvalidInput(WeakPasswordMessage)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	u := &models.User{
		Firstname:    in.Firstname,
		Surname:      in.Surname,
		Email:        in.Email,
		Username:     in.Username,
		Password:     string(hash),
		ProfileImage: models.DefaultProfileImage,
		Cart:         []models.CartItem{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, store.ErrDuplicate) {
			return s.duplicateConflict(ctx, in.Username)
		}
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	logging.FromContext(ctx).Info("user_registered", zap.String("user_id", u.ID.Hex()))
	return nil
}

// duplicateConflict names the field a concurrent registration took first.
func (s *Service) duplicateConflict(ctx context.Context, username string) error {
	if _, err := s.users.ByUsername(ctx, username); err == nil {
		return apperr.Conflict("Username already taken")
	}
	return apperr.Conflict("Email already exists")
}

// Login checks the credentials and returns a signed token with the user's profile.
func (s *Service) Login(ctx context.Context, email, password string) (string, models.Profile, error) {
	u, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", models.Profile{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return "", models.Profile{}, apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", models.Profile{}, apperr.InvalidCredentials("Invalid credentials")
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", models.Profile{}, apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	return token, u.Profile(), nil
}

// Authenticate resolves a raw bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, Principal, error) {
	if token == "" {
		return nil, Principal{}, apperr.Unauthenticated("No token, authorization denied")
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, Principal{}, apperr.Wrap(apperr.KindInvalidToken, "Token is not valid", err)
	}
	u, err := s.users.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Principal{}, apperr.InvalidToken("User does not exist")
	}
	if err != nil {
		return nil, Principal{}, apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	return u, PrincipalOf(u), nil
}

func (s *Service) ChangePassword(ctx context.Context, p Principal, current, next string) error {
	u, err := s.users.ByID(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(current)); err != nil {
		return apperr.InvalidCredentials("Current password is incorrect")
	}
	if !ValidatePassword(next) {
		return apperr.InvalidInput(WeakPasswordMessage)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	if err := s.users.SetPassword(ctx, u.ID, string(hash)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, p Principal) (*models.User, error) {
	u, err := s.users.ByID(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	return u, nil
}

// PromoteAdmin grants the admin flag to the account with the given email.
func (s *Service) PromoteAdmin(ctx context.Context, email string) error {
	err := s.users.SetAdmin(ctx, normalizeEmail(email), true)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "Server error", err)
	}
	return nil
}

func RequireAdmin(p Principal) error {
	if !p.IsAdmin {
		return apperr.Forbidden("Unauthorized")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
