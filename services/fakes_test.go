package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/payment"
)

type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[primitive.ObjectID]models.Order
	createErr error
	updates   int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[primitive.ObjectID]models.Order)}
}

func (f *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = primitive.NewObjectID()
	f.orders[order.ID] = *order
	return nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, models.NotFoundError("order not found")
	}
	return &order, nil
}

func (f *fakeOrderStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orders := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) FindAll(context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orders := []models.Order{}
	for _, o := range f.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[order.ID]
	if !ok {
		return models.NotFoundError("order not found")
	}
	stored.IsPaid = order.IsPaid
	stored.PaidAt = order.PaidAt
	stored.PaymentResult = order.PaymentResult
	stored.IsDelivered = order.IsDelivered
	stored.DeliveredAt = order.DeliveredAt
	stored.UpdatedAt = order.UpdatedAt
	f.orders[order.ID] = stored
	f.updates++
	return nil
}

// fakeProductStore serializes writes per store, which stands in for the
// document store's per-document atomicity.
type fakeProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
	findErr  error
}

func newFakeProductStore(products ...models.Product) *fakeProductStore {
	f := &fakeProductStore{products: make(map[primitive.ObjectID]models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, models.NotFoundError("product not found")
	}
	p.Reviews = append([]models.Review(nil), p.Reviews...)
	return &p, nil
}

func (f *fakeProductStore) Find(_ context.Context, _ string, skip, limit int64) ([]models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := []models.Product{}
	for _, p := range f.products {
		all = append(all, p)
	}
	count := int64(len(all))
	if skip >= count {
		return []models.Product{}, count, nil
	}
	end := skip + limit
	if end > count {
		end = count
	}
	return all[skip:end], count, nil
}

func (f *fakeProductStore) FindTop(_ context.Context, limit int64) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	top := []models.Product{}
	for _, p := range f.products {
		if int64(len(top)) == limit {
			break
		}
		top = append(top, p)
	}
	return top, nil
}

func (f *fakeProductStore) Create(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = primitive.NewObjectID()
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProductStore) Update(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return models.NotFoundError("product not found")
	}
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return models.NotFoundError("product not found")
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) AddReview(_ context.Context, productID primitive.ObjectID, review models.Review) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, models.NotFoundError("product not found")
	}
	p.Reviews = append([]models.Review(nil), p.Reviews...)
	if err := p.AddReview(review); err != nil {
		return nil, err
	}
	f.products[productID] = p
	return &p, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.NotFoundError("user not found")
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.NotFoundError("user not found")
	}
	return &u, nil
}

func (f *fakeUserStore) FindAll(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, u)
	}
	return all, nil
}

func (f *fakeUserStore) Update(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[user.ID]
	if !ok {
		return models.NotFoundError("user not found")
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return models.ValidationError("email already in use")
		}
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.IsAdmin = user.IsAdmin
	if user.Password != "" {
		stored.Password = user.Password
	}
	f.users[user.ID] = stored
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return models.NotFoundError("user not found")
	}
	delete(f.users, id)
	return nil
}

type stubGateway struct {
	result models.PaymentResult
	err    error
	calls  []payment.ChargeRequest
}

func (s *stubGateway) Charge(_ context.Context, req payment.ChargeRequest) (models.PaymentResult, error) {
	s.calls = append(s.calls, req)
	return s.result, s.err
}
