package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Dev helper: wipes all business data and seeds a default admin.
// Never wired into the server binary; run with `go run scripts/reset_db.go`.
func main() {
	fmt.Println("Reset database for testing")
	fmt.Println()
	fmt.Println("WARNING: this deletes all leads, employees, staff accounts,")
	fmt.Println("payments and logs, then seeds a default admin account.")
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	godotenv.Load()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "solar_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v\n", err)
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"totp_verification_attempts",
		"login_logs",
		"online_transactions",
		"lead_status_events",
		"lead_documents",
		"leads",
		"employees",
		"accounts",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			log.Fatalf("Failed to truncate %s: %v\n", table, err)
		}
		fmt.Printf("  cleared %s\n", table)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), 8)
	if err != nil {
		log.Fatalf("Failed to hash password: %v\n", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO accounts (name, email, password_hash, role, is_active)
         VALUES ('Admin', 'admin@example.com', $1, 'admin', TRUE)`, string(hash))
	if err != nil {
		log.Fatalf("Failed to seed admin account: %v\n", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v\n", err)
	}

	fmt.Println()
	fmt.Println("Done. Login with admin@example.com / admin123 (change it).")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
