// Command admin manages the moderator capability.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"interu/internal/config"
	"interu/internal/database"
	"interu/internal/models"
	"interu/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <user_id>     - Grant the moderator capability")
	fmt.Println("  admin demote <user_id>      - Revoke the moderator capability")
	fmt.Println("  admin list-moderators       - List all moderators")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store := repository.NewStore(db)
	ctx := context.Background()

	switch os.Args[1] {
	case "promote", "demote":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		userID, err := strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil || userID == 0 {
			log.Fatalf("Invalid user ID %q", os.Args[2])
		}
		if err := setModerator(ctx, store, uint(userID), os.Args[1] == "promote"); err != nil {
			log.Fatal(err)
		}
	case "list-moderators":
		if err := listModerators(ctx, store); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func setModerator(ctx context.Context, store *repository.Store, userID uint, moderator bool) error {
	user, err := store.Users.GetByID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return fmt.Errorf("user with ID %d not found", userID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.IsModerator == moderator {
		fmt.Printf("User %s (ID: %d) already has moderator=%t\n", user.Username, user.ID, moderator)
		return nil
	}
	if err := store.Users.SetModerator(ctx, userID, moderator); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	verb := "promoted"
	if !moderator {
		verb = "demoted"
	}
	fmt.Printf("Successfully %s %s (ID: %d)\n", verb, user.Username, user.ID)
	return nil
}

func listModerators(ctx context.Context, store *repository.Store) error {
	mods, err := store.Users.ListModerators(ctx)
	if err != nil {
		return fmt.Errorf("fetch moderators: %w", err)
	}
	if len(mods) == 0 {
		fmt.Println("No moderators found")
		return nil
	}
	for _, m := range mods {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", m.ID, m.Username, m.Email)
	}
	return nil
}
