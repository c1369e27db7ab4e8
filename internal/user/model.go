package user

import "time"

type Account struct {
	ID           uint
	Email        string
	PasswordHash string
	Role         string

	// TotalSpent is the running total maintained by the order commit
	// workflow. It is bookkeeping, not a source of truth.
	TotalSpent int64

	CreatedAt time.Time
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
