package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/nwtrack/networth-api/config"
	"github.com/nwtrack/networth-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@networth.local"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, age, age_to_retire,
			target_worth, draw_down_amount, monthly_increase, currency,
			first_time_user, net_worth, account_list)
		VALUES ($1, $2, $3, 30, 65, 1000000, 2500, 500, '£', false, 0, '{}')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	// Wipe any previous demo accounts so the aggregate stays consistent
	if _, err := db.Exec(`DELETE FROM accounts WHERE user_id = $1`, id); err != nil {
		log.Fatalf("failed to clear demo accounts: %v", err)
	}

	accounts := []struct {
		name     string
		category string
		balance  string
	}{
		{"Current Account", "cash", "1250.00"},
		{"Savings ISA", "savings", "18000.00"},
		{"Pension", "pension", "42500.00"},
	}

	total := "0"
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if _, err := db.Exec(`
			INSERT INTO accounts (user_id, name, category, balance)
			VALUES ($1, $2, $3, $4)
		`, id, a.name, a.category, a.balance); err != nil {
			log.Fatalf("failed to seed account %s: %v", a.name, err)
		}
		names = append(names, a.name)
	}

	// Keep the aggregate in step with the rows we just wrote
	err = db.QueryRow(`
		UPDATE users
		SET net_worth = (SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE user_id = $1),
			account_list = $2,
			updated_at = now()
		WHERE id = $1
		RETURNING net_worth::text
	`, id, pqArray(names)).Scan(&total)
	if err != nil {
		log.Fatalf("failed to update aggregate: %v", err)
	}
	fmt.Printf("seeded %d accounts, net worth %s\n", len(accounts), total)
}

// pqArray formats a []string as a Postgres text[] literal for database/sql.
func pqArray(items []string) string {
	out := "{"
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += `"` + s + `"`
	}
	return out + "}"
}
