package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, ownerID primitive.ObjectID, c models.Cart) (*models.Order, error) {
	args := m.Called(ctx, ownerID, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) MyOrders(ctx context.Context, ownerID primitive.ObjectID) ([]models.Order, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) AllOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) (*models.Order, error) {
	args := m.Called(ctx, id, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) Charge(ctx context.Context, id primitive.ObjectID, payerEmail string) (*models.Order, error) {
	args := m.Called(ctx, id, payerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) MarkDelivered(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, keyword string, page int) (*services.ProductPage, error) {
	args := m.Called(ctx, keyword, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProductPage), args.Error(1)
}

func (m *MockProductService) Top(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) CreateSample(ctx context.Context, ownerID primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id primitive.ObjectID, in services.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) AddReview(ctx context.Context, productID primitive.ObjectID, reviewer models.User, rating int, comment string) (*models.Product, error) {
	args := m.Called(ctx, productID, reviewer, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in services.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id primitive.ObjectID, in services.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type sentEmail struct {
	to      string
	subject string
}

// chanMailer reports every sent email on a buffered channel.
type chanMailer struct {
	sent chan sentEmail
}

func newChanMailer() *chanMailer {
	return &chanMailer{sent: make(chan sentEmail, 8)}
}

func (c *chanMailer) SendEmail(_ context.Context, toEmail, subject, _ string) error {
	c.sent <- sentEmail{to: toEmail, subject: subject}
	return nil
}

func withUser(r *http.Request, user models.User) *http.Request {
	claims := &utils.Claims{
		UserID:  user.ID.Hex(),
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func withID(r *http.Request, id string) *http.Request {
	return mux.SetURLVars(r, map[string]string{"id": id})
}
