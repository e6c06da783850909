package main

import (
	"context"
	"log"
	"os"

	"github.com/binhbb2204/BookHub/internal/library"
	"github.com/binhbb2204/BookHub/pkg/config"
	"github.com/binhbb2204/BookHub/pkg/database"
	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/binhbb2204/BookHub/pkg/utils"
	"github.com/google/uuid"
)

const demoPassword = "Password123"

var demoBooks = []models.AddBookRequest{
	{Title: "Dune", Author: "Frank Herbert", Description: "A desert planet, a prophecy and the spice that holds an empire together."},
	{Title: "Emma", Author: "Jane Austen", Description: "A well-meaning matchmaker in a small English village."},
	{Title: "Neuromancer", Author: "William Gibson", Description: "A washed-up hacker is hired for one last job."},
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Description: "An envoy on a world of ambisexual people."},
	{Title: "Invisible Cities", Author: "Italo Calvino", Description: "Marco Polo describes imagined cities to Kublai Khan."},
}

func ensureUser(name string) string {
	hash, err := utils.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	_, err = database.DB.Exec(
		`INSERT OR IGNORE INTO users (id, username, email, password_hash) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), name, name+"@bookhub.local", hash,
	)
	if err != nil {
		log.Fatalf("Failed to insert user %s: %v", name, err)
	}

	var id string
	if err := database.DB.QueryRow(`SELECT id FROM users WHERE username = ?`, name).Scan(&id); err != nil {
		log.Fatalf("Failed to load user %s: %v", name, err)
	}
	return id
}

func main() {
	cfg := config.Load()
	logger.Init(logger.WARN, false, os.Stderr)

	if err := database.InitDatabase(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	var store library.Store
	switch cfg.StoreDriver {
	case "badger":
		s, err := library.NewBadgerStore(cfg.BadgerPath)
		if err != nil {
			log.Fatalf("Failed to open badger store: %v", err)
		}
		store = s
	default:
		store = library.NewSQLStore(database.DB)
	}
	defer store.Close()

	svc := library.NewService(store, library.Options{})
	ctx := context.Background()

	readers := []string{ensureUser("alice"), ensureUser("bob"), ensureUser("carol"), ensureUser("dave")}
	log.Printf("Users ready: alice, bob, carol, dave (password %s)", demoPassword)

	for i, req := range demoBooks {
		book, err := svc.AddBook(ctx, readers[i%len(readers)], req)
		if err != nil {
			log.Fatalf("Failed to add %q: %v", req.Title, err)
		}

		for j, reader := range readers {
			value := (i+j)%library.MaxRating + 1
			if _, err := svc.SubmitRating(ctx, reader, book.ID, value); err != nil {
				log.Fatalf("Failed to rate %q: %v", req.Title, err)
			}
			if (i+j)%2 == 0 {
				if _, err := svc.ToggleFavourite(ctx, reader, book.ID); err != nil {
					log.Fatalf("Failed to favourite %q: %v", req.Title, err)
				}
			}
		}

		stats := svc.ComputeStatistics(ctx, book.ID)
		log.Printf("Seeded %-28s avg=%.2f reviews=%d recommended=%.2f%%", book.Title, stats.AvgRating, stats.ReviewCount, stats.Recommendation)
	}

	log.Println("Test data inserted successfully")
}
