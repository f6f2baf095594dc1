// Command seed loads the demo dataset.
package main

import (
	"context"
	"flag"
	"log"

	"interu/internal/config"
	"interu/internal/database"
	"interu/internal/seed"
)

func main() {
	users := flag.Int("users", 20, "Number of users to create")
	posts := flag.Int("posts-per-user", 2, "Skill posts per user")
	chats := flag.Int("chats-per-post", 2, "Exchange chats opened per post")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("rand-seed", 0, "Deterministic faker seed (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.NewSeeder(db, seed.Options{
		Users:        *users,
		PostsPerUser: *posts,
		ChatsPerPost: *chats,
		Clean:        *clean,
		RandSeed:     *randSeed,
	}).Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d chats, %d messages, %d ratings",
		sum.Users, sum.Posts, sum.Chats, sum.Messages, sum.Ratings)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
