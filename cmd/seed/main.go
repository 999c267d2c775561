// Package main provides a tool to seed the database with demo data.
//
// This creates an admin account, a handful of reader accounts, a starter
// catalog of books, and reviews from the readers so the rating rollups and
// search index have something to show.
//
// Usage:
//
//	DATA_PATH=~/Shelftalk/data go run ./cmd/seed
//	DATA_PATH=~/Shelftalk/data go run ./cmd/seed --reviews=false  # Catalog only
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	domainerrors "github.com/shelftalk/shelftalk-server/internal/errors"

	"github.com/shelftalk/shelftalk-server/internal/auth"
	"github.com/shelftalk/shelftalk-server/internal/domain"
	"github.com/shelftalk/shelftalk-server/internal/service"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

var withReviews = flag.Bool("reviews", true, "Create demo reviews alongside the catalog")

type seedUser struct {
	username string
	email    string
	password string
	role     domain.Role
}

var seedUsers = []seedUser{
	{"admin", "admin@shelftalk.local", "changeme-admin", domain.RoleAdmin},
	{"octavia", "octavia@example.com", "readerpass1", domain.RoleUser},
	{"samwise", "samwise@example.com", "readerpass2", domain.RoleUser},
	{"marginalia", "marginalia@example.com", "readerpass3", domain.RoleUser},
}

var seedBooks = []service.CreateBookRequest{
	{Title: "A Wizard of Earthsea", Author: "Ursula K. Le Guin", Genres: []string{"fantasy"}, PublishedYear: 1968, Description: "Ged's rise from goatherd to archmage, and the shadow he looses on the world."},
	{Title: "The Dispossessed", Author: "Ursula K. Le Guin", Genres: []string{"science fiction"}, PublishedYear: 1974, Description: "An ambiguous utopia across two worlds."},
	{Title: "Dune", Author: "Frank Herbert", Genres: []string{"science fiction"}, PublishedYear: 1965, Description: "Spice, sand, and the terrible purpose of Paul Atreides."},
	{Title: "Piranesi", Author: "Susanna Clarke", Genres: []string{"fantasy", "mystery"}, PublishedYear: 2020, Description: "The house is the world. The tides bring gifts."},
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genres: []string{"science fiction"}, PublishedYear: 1969, Description: "An envoy alone on a planet of winter."},
	{Title: "Gideon the Ninth", Author: "Tamsyn Muir", Genres: []string{"science fiction", "fantasy"}, PublishedYear: 2019, Description: "Lesbian necromancers in space."},
}

var seedComments = []string{
	"Could not put it down. The ending reframes everything.",
	"Slow to start but the back half earns it.",
	"A book I will be rereading for years.",
	"Fine, but the middle drags.",
	"The prose alone is worth the price of admission.",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dataPath = filepath.Join(home, "Shelftalk", "data")
	}

	fmt.Printf("Seeding data under: %s\n", dataPath)

	s, err := store.New(filepath.Join(dataPath, "db"), nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	key, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokenService, err := auth.NewTokenService(key, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	authSvc := service.NewAuthService(s, tokenService, nil)
	bookSvc := service.NewBookService(s, nil)
	reviewSvc := service.NewReviewService(s, nil)

	ctx := context.Background()

	// Users first. Registration is skipped for accounts that already exist,
	// so the seeder can be re-run against a live database.
	users := make(map[string]*domain.User, len(seedUsers))
	for _, su := range seedUsers {
		resp, err := authSvc.Register(ctx, service.RegisterRequest{
			Username: su.username,
			Email:    su.email,
			Password: su.password,
		})
		if err != nil {
			if !errors.Is(err, domainerrors.ErrAlreadyExists) {
				log.Fatalf("Failed to register %s: %v", su.username, err)
			}
			existing, getErr := s.GetUserByEmail(ctx, su.email)
			if getErr != nil {
				log.Fatalf("Failed to look up existing user %s: %v", su.email, getErr)
			}
			fmt.Printf("  User %s already exists, skipping\n", su.username)
			users[su.username] = existing
			continue
		}

		user := resp.User
		if su.role == domain.RoleAdmin && user.Role != domain.RoleAdmin {
			user.Role = domain.RoleAdmin
			if err := s.UpdateUser(ctx, user); err != nil {
				log.Fatalf("Failed to promote %s to admin: %v", su.username, err)
			}
		}
		users[su.username] = user
		fmt.Printf("  Created user %s (%s)\n", su.username, user.ID)
	}

	// Catalog. Duplicate titles are fine for the store, so only create books
	// when the catalog is empty to keep reruns from piling up copies.
	count, err := s.CountBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to count books: %v", err)
	}

	var books []*domain.Book
	if count > 0 {
		fmt.Printf("Catalog already has %d books, skipping book creation\n", count)
		books, err = s.ListBooks(ctx)
		if err != nil {
			log.Fatalf("Failed to list books: %v", err)
		}
	} else {
		for _, req := range seedBooks {
			book, err := bookSvc.Create(ctx, req)
			if err != nil {
				log.Fatalf("Failed to create book %q: %v", req.Title, err)
			}
			books = append(books, book)
			fmt.Printf("  Created book %q (%s)\n", book.Title, book.ID)
		}
	}

	if !*withReviews {
		fmt.Println("Done (reviews skipped).")
		return
	}

	// Reviews. Each reader reviews a random handful of books; duplicates are
	// rejected by the service, which makes reruns harmless here too.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	reviewsCreated := 0

	for _, su := range seedUsers {
		if su.role == domain.RoleAdmin {
			continue
		}
		reader := users[su.username]

		shuffled := make([]*domain.Book, len(books))
		copy(shuffled, books)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		numReviews := min(2+rng.Intn(3), len(shuffled))
		for _, book := range shuffled[:numReviews] {
			_, err := reviewSvc.Create(ctx, reader.ID, book.ID, service.CreateReviewRequest{
				Rating:  2 + rng.Intn(4),
				Comment: seedComments[rng.Intn(len(seedComments))],
			})
			if err != nil {
				if errors.Is(err, domainerrors.ErrConflict) {
					continue
				}
				log.Fatalf("Failed to create review by %s for %q: %v", su.username, book.Title, err)
			}
			reviewsCreated++
		}
	}

	fmt.Printf("Done. %d users, %d books, %d new reviews.\n", len(users), len(books), reviewsCreated)
}
