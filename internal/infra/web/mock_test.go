//go:build !integration

package web

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

// --- Mock Repositories (Ports) ---

type mockCourseRepo struct {
	repository.CourseRepository // Embed interface for forward compatibility
	mu                          sync.Mutex
	courses                     []*model.Course
	ListError                   error
}

func (m *mockCourseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("course-%d", len(m.courses)+1)
	}
	m.courses = append(m.courses, c)
	return nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrCourseNotFound
}

func (m *mockCourseRepo) List(ctx context.Context, tx repository.Tx, publishedOnly bool, offset, limit int) ([]*model.Course, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Course
	for _, c := range m.courses {
		if publishedOnly && !c.Published {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type mockUserRepo struct {
	repository.UserRepository
	mu    sync.Mutex
	users []*model.User
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	mu               sync.Mutex
	payments         map[string]*model.Payment
	FindByIDError    error
	ListError        error
	SumByPeriodError error
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, gatewayPaymentID, statusMessage *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
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
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockPaymentRepo) List(ctx context.Context, tx repository.Tx, status string, offset, limit int) ([]*model.Payment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.payments {
		if status != "" && string(p.Status) != status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPaymentRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	if m.SumByPeriodError != nil {
		return 0, m.SumByPeriodError
	}
	switch period {
	case "week":
		return 100, nil
	case "month":
		return 1000, nil
	case "year":
		return 10000, nil
	}
	return 0, nil
}

type mockPurchaseRepo struct {
	repository.PurchaseRepository
	mu             sync.Mutex
	rows           map[string]*model.Purchase // keyed user|course
	ListByUserErr  error
	GrantAccessErr error
}

func newMockPurchaseRepo() *mockPurchaseRepo {
	return &mockPurchaseRepo{rows: make(map[string]*model.Purchase)}
}

func purchaseKey(userID, courseID string) string { return userID + "|" + courseID }

func (m *mockPurchaseRepo) GrantAccess(ctx context.Context, tx repository.Tx, userID, courseID, paymentID string) (*model.Purchase, error) {
	if m.GrantAccessErr != nil {
		return nil, m.GrantAccessErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := purchaseKey(userID, courseID)
	if pu, ok := m.rows[key]; ok {
		if !pu.AccessGranted {
			pu.AccessGranted = true
			pu.PaymentID = paymentID
		}
		cp := *pu
		return &cp, nil
	}
	pu := &model.Purchase{
		ID:            fmt.Sprintf("purchase-%d", len(m.rows)+1),
		UserID:        userID,
		CourseID:      courseID,
		PaymentID:     paymentID,
		AccessGranted: true,
		PurchaseDate:  time.Now(),
	}
	m.rows[key] = pu
	cp := *pu
	return &cp, nil
}

func (m *mockPurchaseRepo) FindByUserAndCourse(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pu, ok := m.rows[purchaseKey(userID, courseID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pu
	return &cp, nil
}

func (m *mockPurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	if m.ListByUserErr != nil {
		return nil, m.ListByUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Purchase
	for _, pu := range m.rows {
		if pu.UserID == userID {
			cp := *pu
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- Mock Gateway (Adapter) ---

type mockGateway struct {
	VerifyResult bool
	SignError    error
}

func (m *mockGateway) Name() string { return "payhere" }

func (m *mockGateway) SignCheckout(ctx context.Context, orderID string, amountCents int64, currency string) (adapter.CheckoutParams, error) {
	if m.SignError != nil {
		return adapter.CheckoutParams{}, m.SignError
	}
	return adapter.CheckoutParams{
		MerchantID: "1211149",
		OrderID:    orderID,
		Amount:     fmt.Sprintf("%d.%02d", amountCents/100, amountCents%100),
		Currency:   currency,
		Hash:       "ABCDEF0123456789ABCDEF0123456789",
	}, nil
}

func (m *mockGateway) VerifyNotification(ctx context.Context, n adapter.Notification) bool {
	return m.VerifyResult
}

func (m *mockGateway) Success(statusCode string) bool { return statusCode == "2" }
func (m *mockGateway) Pending(statusCode string) bool { return statusCode == "0" }
