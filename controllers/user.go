package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/storage"
	"go-storefront/utils"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in services.ProfileUpdate) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, in services.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

// SessionTracker records when a user's session ends.
type SessionTracker interface {
	Start(ctx context.Context, userID string, expiry time.Time) error
	End(ctx context.Context, userID string) error
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	IsAdmin bool               `json:"is_admin"`
	Token   string             `json:"token"`
}

// UserController handles user-related requests
type UserController struct {
	users        UserService
	tokens       TokenIssuer
	sessions     SessionTracker
	carts        storage.KV
	validate     *validator.Validate
	secureCookie bool
}

func NewUserController(users UserService, tokens TokenIssuer, sessions SessionTracker, carts storage.KV, secureCookie bool) *UserController {
	return &UserController{
		users:        users,
		tokens:       tokens,
		sessions:     sessions,
		carts:        carts,
		validate:     validator.New(),
		secureCookie: secureCookie,
	}
}

// Register handles user registration and signs the new user in
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, uc.validate, &req) {
		return
	}

	user, err := uc.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to register user")
		return
	}

	uc.signIn(w, r, user, http.StatusCreated)
}

// Login authenticates a user and returns a session token
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, uc.validate, &req) {
		return
	}

	user, err := uc.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to log in")
		return
	}

	uc.signIn(w, r, user, http.StatusOK)
}

func (uc *UserController) signIn(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, expiresAt, err := uc.tokens.Issue(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to issue token")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := uc.sessions.Start(r.Context(), user.ID.Hex(), expiresAt); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to start session")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   uc.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	utils.RespondWithJSON(w, status, AuthResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	})
}

// Logout ends the session and resets the user's cart
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart.Load(r.Context(), uc.carts, cart.KeyFor(claims.UserID)).Reset(r.Context())
	if err := uc.sessions.End(r.Context(), claims.UserID); err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("failed to end session")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// GetProfile returns the authenticated user
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := uc.users.Profile(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to load profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the caller's own account and re-issues the token so
// its claims carry the new name and email
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.ProfileUpdate
	if !decodeAndValidate(w, r, uc.validate, &req) {
		return
	}

	user, err := uc.users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to update profile")
		return
	}
	uc.signIn(w, r, user, http.StatusOK)
}

// GetUsers lists every account (Admin only)
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := uc.users.ListUsers(r.Context())
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to retrieve users")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// GetUserByID returns one account (Admin only)
func (uc *UserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := uc.users.Profile(r.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to retrieve user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateUser edits name, email and the admin flag of an account (Admin only)
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req services.UserUpdate
	if !decodeAndValidate(w, r, uc.validate, &req) {
		return
	}

	user, err := uc.users.UpdateUser(r.Context(), id, req)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to update user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// DeleteUser removes a customer account (Admin only)
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := uc.users.DeleteUser(r.Context(), id); err != nil {
		utils.RespondWithServiceError(w, err, "Failed to delete user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User removed"})
}
