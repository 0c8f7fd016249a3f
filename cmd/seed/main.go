// Command main runs the database seeder for Dainiki.
package main

import (
	"flag"
	"log"

	"dainiki/internal/config"
	"dainiki/internal/database"
	"dainiki/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 3, "Number of users to create")
	daysBack := flag.Int("days", 60, "How many days of journal history to generate")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d days of entries, clean=%v\n", *numUsers, *daysBack, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run seeder
	if err := seed.Seed(database.DB, seed.Options{
		NumUsers:    *numUsers,
		DaysBack:    *daysBack,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo journal data.")
	log.Println("📧 All seeded users have the password: Password123")
}
