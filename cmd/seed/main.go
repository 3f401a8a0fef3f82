package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4"

	"course-platform/internal/config"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
	pg "course-platform/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	courseRepo := pg.NewCourseRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	txm := pg.NewTxManager(pool)

	// If courses already exist, do nothing
	existing, err := courseRepo.List(ctx, repository.NoTX, false, 0, 1)
	if err != nil {
		log.Fatalf("list courses: %v", err)
	}
	if len(existing) > 0 {
		fmt.Println("courses already present. No changes.")
		return
	}

	// Seed a few sample courses for testing the payment flow. All or nothing.
	seed := []*model.Course{
		{Title: "Go Fundamentals", PriceCents: 250_000, Currency: "LKR", Published: true},
		{Title: "Advanced PostgreSQL", PriceCents: 490_000, Currency: "LKR", Published: true},
		{Title: "Distributed Systems (draft)", PriceCents: 890_000, Currency: "LKR", Published: false},
	}

	demoUser := &model.User{Email: "demo@example.com", Name: "Demo Buyer"}

	err = txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for _, c := range seed {
			if err := courseRepo.Save(ctx, tx, c); err != nil {
				return fmt.Errorf("create course %q: %w", c.Title, err)
			}
		}
		if err := userRepo.Save(ctx, tx, demoUser); err != nil {
			return fmt.Errorf("create demo user: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	for _, c := range seed {
		fmt.Printf("seeded: %s (id=%s, price=%d.%02d %s, published=%v)\n",
			c.Title, c.ID, c.PriceCents/100, c.PriceCents%100, c.Currency, c.Published)
	}
	fmt.Printf("seeded: demo user %s (id=%s)\n", demoUser.Email, demoUser.ID)
	fmt.Println("✅ Seeding complete.")
}
