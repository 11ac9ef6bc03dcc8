package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"go-storefront/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProfileUpdate carries the fields a user may change on their own account.
// Empty fields keep the current value.
type ProfileUpdate struct {
	Name     string `json:"name" validate:"omitempty,min=2"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// UserUpdate carries the fields an admin may change on any account.
type UserUpdate struct {
	Name    string `json:"name" validate:"omitempty,min=2"`
	Email   string `json:"email" validate:"omitempty,email"`
	IsAdmin *bool  `json:"is_admin"`
}

type UserService struct {
	users UserStore
	cost  int
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a non-admin user with a hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, models.ValidationError("user already exists")
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service: failed to check user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID.Hex()).Msg("service: user registered")
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords fail
// the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.UnauthorizedError("invalid email or password")
		}
		return nil, fmt.Errorf("service: failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.UnauthorizedError("invalid email or password")
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateProfile changes the caller's own name, email or password. A new
// password is hashed before it is stored.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if err := s.changeEmail(ctx, user, in.Email); err != nil {
		return nil, err
	}
	user.Password = ""
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("service: failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID.Hex()).Bool("password_changed", in.Password != "").Msg("service: profile updated")
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

// UpdateUser applies an admin edit. The password is never touched here.
func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, in UserUpdate) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if err := s.changeEmail(ctx, user, in.Email); err != nil {
		return nil, err
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}
	user.Password = ""

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID.Hex()).Bool("is_admin", user.IsAdmin).Msg("service: user updated")
	return user, nil
}

// DeleteUser removes a customer account. Admin accounts cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return models.ValidationError("cannot delete admin user")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("user_id", id.Hex()).Msg("service: user deleted")
	return nil
}

// changeEmail sets a new normalized email on user unless another account
// already holds it.
func (s *UserService) changeEmail(ctx context.Context, user *models.User, email string) error {
	email = normalizeEmail(email)
	if email == "" || email == user.Email {
		return nil
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != user.ID:
		return models.ValidationError("email already in use")
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("service: failed to check email: %w", err)
	}
	user.Email = email
	return nil
}
