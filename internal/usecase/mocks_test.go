//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/adapter"
	"course-platform/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// MockPaymentRepo is a small in-memory implementation used by unit tests.
type MockPaymentRepo struct {
	mu    sync.Mutex
	store map[string]*model.Payment

	SaveErr   error // simulate save failures
	FindErr   error
	UpdateErr error
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, gatewayPaymentID, statusMessage *string) (bool, error) {
	if m.UpdateErr != nil {
		return false, m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	if gatewayPaymentID != nil {
		p.GatewayPaymentID = gatewayPaymentID
	}
	if statusMessage != nil {
		p.StatusMessage = statusMessage
	}
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MockPaymentRepo) List(ctx context.Context, tx repository.Tx, status string, offset, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if status == "" || string(p.Status) == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPaymentRepo) ListCompletedUngranted(ctx context.Context, tx repository.Tx, limit int) ([]*model.Payment, error) {
	return nil, nil
}

func (m *MockPaymentRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

// Count returns how many payments currently exist, for no-partial-state asserts.
func (m *MockPaymentRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// MockPurchaseRepo mirrors the conditional-upsert semantics of the real
// Postgres repository so idempotency tests exercise the same contract.
type MockPurchaseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Purchase // key user|course

	GrantErr   error
	grantCalls int
}

func NewMockPurchaseRepo() *MockPurchaseRepo {
	return &MockPurchaseRepo{store: make(map[string]*model.Purchase)}
}

func purchaseKey(userID, courseID string) string {
	return fmt.Sprintf("%s|%s", userID, courseID)
}

func (m *MockPurchaseRepo) GrantAccess(ctx context.Context, tx repository.Tx, userID, courseID, paymentID string) (*model.Purchase, error) {
	if m.GrantErr != nil {
		return nil, m.GrantErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grantCalls++
	key := purchaseKey(userID, courseID)
	pu, ok := m.store[key]
	if !ok {
		pu = &model.Purchase{
			ID:            fmt.Sprintf("pur-%d", len(m.store)+1),
			UserID:        userID,
			CourseID:      courseID,
			PaymentID:     paymentID,
			AccessGranted: true,
			PurchaseDate:  time.Now().UTC(),
		}
		m.store[key] = pu
	} else if !pu.AccessGranted {
		pu.AccessGranted = true
		pu.PaymentID = paymentID
	}
	cp := *pu
	return &cp, nil
}

func (m *MockPurchaseRepo) FindByUserAndCourse(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pu, ok := m.store[purchaseKey(userID, courseID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pu
	return &cp, nil
}

func (m *MockPurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Purchase
	for _, pu := range m.store {
		if pu.UserID == userID {
			cp := *pu
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Seed inserts a purchase row directly, bypassing grant semantics.
func (m *MockPurchaseRepo) Seed(pu *model.Purchase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pu
	m.store[purchaseKey(pu.UserID, pu.CourseID)] = &cp
}

func (m *MockPurchaseRepo) GrantCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grantCalls
}

// MockCourseRepo holds catalog fixtures.
type MockCourseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Course
}

func NewMockCourseRepo() *MockCourseRepo {
	return &MockCourseRepo{store: make(map[string]*model.Course)}
}

func (m *MockCourseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCourseRepo) List(ctx context.Context, tx repository.Tx, publishedOnly bool, offset, limit int) ([]*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Course
	for _, c := range m.store {
		if !publishedOnly || c.Published {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MockUserRepo holds identity fixtures.
type MockUserRepo struct {
	mu    sync.Mutex
	store map[string]*model.User
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// MockPaymentGateway lets tests pin the verification result and observe the
// order in which the use case touches its collaborators.
type MockPaymentGateway struct {
	VerifyResult bool
	SignErr      error
	SignCalls    []string // order ids, in call order
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (g *MockPaymentGateway) Name() string { return "payhere" }

func (g *MockPaymentGateway) SignCheckout(ctx context.Context, orderID string, amountCents int64, currency string) (adapter.CheckoutParams, error) {
	if g.SignErr != nil {
		return adapter.CheckoutParams{}, g.SignErr
	}
	g.SignCalls = append(g.SignCalls, orderID)
	return adapter.CheckoutParams{
		MerchantID: "1211149",
		OrderID:    orderID,
		Amount:     fmt.Sprintf("%d.%02d", amountCents/100, amountCents%100),
		Currency:   currency,
		Hash:       "MOCKHASH",
	}, nil
}

func (g *MockPaymentGateway) VerifyNotification(ctx context.Context, n adapter.Notification) bool {
	return g.VerifyResult
}

func (g *MockPaymentGateway) Success(statusCode string) bool { return statusCode == "2" }
func (g *MockPaymentGateway) Pending(statusCode string) bool { return statusCode == "0" }
