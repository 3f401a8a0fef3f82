package model

import "time"

// Course is the catalog entity this subsystem validates against but does not own.
type Course struct {
	ID         string // UUID
	Title      string
	PriceCents int64  // minor units
	Currency   string // e.g. "LKR"
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// User is the identity entity referenced by payments and purchases.
type User struct {
	ID           string // UUID
	Email        string
	Name         string
	RegisteredAt time.Time
}
