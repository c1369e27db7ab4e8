package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"topupin-be/internal/config"
	"topupin-be/internal/db"
	"topupin-be/internal/payment"
	"topupin-be/internal/user"
)

type seedItem struct {
	code  string
	name  string
	price int64
}

type seedMethod struct {
	code string
	name string
}

var items = []seedItem{
	{"ml-dia-86", "Mobile Legends 86 Diamonds", 25000},
	{"ml-dia-172", "Mobile Legends 172 Diamonds", 48000},
	{"ml-dia-257", "Mobile Legends 257 Diamonds", 72000},
	{"ff-dia-100", "Free Fire 100 Diamonds", 18000},
	{"ff-dia-310", "Free Fire 310 Diamonds", 49000},
	{"gi-gen-60", "Genshin Impact 60 Genesis Crystals", 16000},
	{"gi-gen-300", "Genshin Impact 300 Genesis Crystals", 79000},
}

var methods = []seedMethod{
	{"qris", "QRIS"},
	{"alfamart", "Alfamart"},
	{"indomaret", "Indomaret"},
	{"cod", "COD Bayar di Tempat"},
}

func main() {
	cfg := config.LoadConfig()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer database.Close()

	if err := seed(database); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✅ seed complete.")
}

func seed(database *sql.DB) error {
	for _, it := range items {
		_, err := database.Exec(`
			INSERT INTO items (code, name, price, active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (code) DO UPDATE SET name = $2, price = $3
		`, it.code, it.name, it.price)
		if err != nil {
			return fmt.Errorf("failed to seed item %s: %w", it.code, err)
		}
	}

	for _, m := range methods {
		// The payment kind is classified once here, at import time, and
		// stored; runtime behavior only ever reads the column.
		kind := payment.Classify(m.code, m.name)
		_, err := database.Exec(`
			INSERT INTO payment_methods (code, name, kind, active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (code) DO UPDATE SET name = $2, kind = $3
		`, m.code, m.name, string(kind))
		if err != nil {
			return fmt.Errorf("failed to seed payment method %s: %w", m.code, err)
		}
	}

	return seedAdmin(database)
}

func seedAdmin(database *sql.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		fmt.Println("ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = database.Exec(`
		INSERT INTO accounts (email, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`, email, hash, user.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	return nil
}
