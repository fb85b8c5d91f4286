package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/config"
	"github.com/emanuuele/girls-chat-api/internal/domain/user"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	"github.com/emanuuele/girls-chat-api/pkg/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const usage = `
Girls Chat API - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up        Run GORM auto-migrations
  status    Show database connection and table status
  seed      Seed the database with test users

Flags:
  -seed-pass string   Password for seeded users (default "password123")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
  go run cmd/migrate/main.go seed
`

func main() {
	seedPass := flag.String("seed-pass", "password123", "Password for seeded users")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close(db)

	switch flag.Arg(0) {
	case "up":
		runMigrationsUp(db)
	case "status":
		showStatus(db)
	case "seed":
		runSeed(db, *seedPass)
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("Running migrations...")
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed")
}

func showStatus(db *gorm.DB) {
	if err := database.Ping(db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{"users", "chats", "participants", "messages", "notifications", "device_tokens", "outbox_events"}
	for _, table := range tables {
		exists, err := database.TableExists(db, table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			count, _ := database.TableCount(db, table)
			log.Printf("Table %-20s exists (%d rows)", table, count)
		} else {
			log.Printf("Table %-20s does not exist", table)
		}
	}
}

func runSeed(db *gorm.DB, password string) {
	log.Println("Seeding test users...")

	ctx := context.Background()
	repo := repository.NewUserRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Hashing seed password failed: %v", err)
	}

	seeds := []user.User{
		{Email: "alice@example.com", Name: "Alice", UF: "SP", City: "Sao Paulo"},
		{Email: "bruna@example.com", Name: "Bruna", UF: "RJ", City: "Rio de Janeiro"},
		{Email: "carla@example.com", Name: "Carla", UF: "MG", City: "Belo Horizonte"},
	}
	for _, seed := range seeds {
		seed.PasswordHash = string(hash)
		seed.CreatedAt = time.Now()
		seed.UpdatedAt = time.Now()
		if err := repo.Create(ctx, &seed); err != nil {
			log.Printf("Skipping %s: %v", seed.Email, err)
			continue
		}
		log.Printf("Created user %s (ID: %d)", seed.Email, seed.ID)
	}
	log.Println("Seeding completed")
}
