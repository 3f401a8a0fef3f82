//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"course-platform/internal/domain/model"
)

func TestPurchaseRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPurchaseRepo(testPool)
	userRepo := NewUserRepo(testPool)
	courseRepo := NewCourseRepo(testPool)
	paymentRepo := NewPaymentRepo(testPool)

	user := &model.User{Email: "buyer@example.com", Name: "Buyer"}
	course := &model.Course{Title: "Go Fundamentals", PriceCents: 250000, Currency: "LKR", Published: true}

	savePayment := func(t *testing.T) *model.Payment {
		t.Helper()
		now := time.Now().UTC()
		p := &model.Payment{
			ID: ulid.Make().String(), UserID: user.ID, CourseID: course.ID,
			AmountCents: 250000, Currency: "LKR", Status: model.PaymentStatusCompleted,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := paymentRepo.Save(ctx, nil, p); err != nil {
			t.Fatalf("failed to save payment: %v", err)
		}
		return p
	}

	setupPrerequisites := func(t *testing.T) {
		cleanup(t)
		if err := userRepo.Save(ctx, nil, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
		if err := courseRepo.Save(ctx, nil, course); err != nil {
			t.Fatalf("failed to save course: %v", err)
		}
	}

	t.Run("grant creates a granted purchase", func(t *testing.T) {
		setupPrerequisites(t)
		p := savePayment(t)

		pu, err := repo.GrantAccess(ctx, nil, user.ID, course.ID, p.ID)
		if err != nil {
			t.Fatalf("GrantAccess failed: %v", err)
		}
		if !pu.AccessGranted || pu.PaymentID != p.ID {
			t.Fatalf("unexpected purchase row: %+v", pu)
		}
	})

	t.Run("repeat grant is a no-op on the same row", func(t *testing.T) {
		setupPrerequisites(t)
		first := savePayment(t)
		second := savePayment(t)

		repo.GrantAccess(ctx, nil, user.ID, course.ID, first.ID)
		pu, err := repo.GrantAccess(ctx, nil, user.ID, course.ID, second.ID)
		if err != nil {
			t.Fatalf("repeat GrantAccess failed: %v", err)
		}
		// The already-granted row keeps its original payment id
		if pu.PaymentID != first.ID {
			t.Fatalf("granted row was rewritten: got payment %s want %s", pu.PaymentID, first.ID)
		}

		rows, _ := repo.ListByUser(ctx, nil, user.ID)
		if len(rows) != 1 {
			t.Fatalf("expected a single purchase row, got %d", len(rows))
		}
	})

	t.Run("concurrent grants converge on one row", func(t *testing.T) {
		setupPrerequisites(t)
		p := savePayment(t)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.GrantAccess(ctx, nil, user.ID, course.ID, p.ID); err != nil {
					t.Errorf("concurrent GrantAccess error: %v", err)
				}
			}()
		}
		wg.Wait()

		rows, err := repo.ListByUser(ctx, nil, user.ID)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(rows) != 1 || !rows[0].AccessGranted {
			t.Fatalf("expected one granted row, got %+v", rows)
		}
	})

	t.Run("lists purchases by user", func(t *testing.T) {
		setupPrerequisites(t)
		other := &model.Course{Title: "Advanced PostgreSQL", PriceCents: 490000, Currency: "LKR", Published: true}
		if err := courseRepo.Save(ctx, nil, other); err != nil {
			t.Fatalf("failed to save course: %v", err)
		}
		p := savePayment(t)

		repo.GrantAccess(ctx, nil, user.ID, course.ID, p.ID)
		repo.GrantAccess(ctx, nil, user.ID, other.ID, p.ID)

		rows, err := repo.ListByUser(ctx, nil, user.ID)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 purchases, got %d", len(rows))
		}
	})
}
