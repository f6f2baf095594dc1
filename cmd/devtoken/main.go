// Command devtoken mints a bearer token for local development, standing in
// for the external identity gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"interu/internal/config"
	"interu/internal/database"
	"interu/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "", "Identity email; the user is created when missing")
	userID := flag.Uint("user", 0, "Existing user ID (overrides -email)")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("devtoken is disabled in production")
	}

	id := *userID
	if id == 0 {
		if strings.TrimSpace(*email) == "" {
			log.Fatal("usage: devtoken -email <address> | -user <id> [-ttl 24h]")
		}
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		id, err = ensureUser(context.Background(), db, *email)
		if err != nil {
			log.Fatal(err)
		}
	}

	token, err := mint(cfg, id, *ttl, time.Now())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}

func ensureUser(ctx context.Context, db *gorm.DB, email string) (uint, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user := models.User{Email: email, Username: strings.SplitN(email, "@", 2)[0]}
	if err := db.WithContext(ctx).Where(models.User{Email: email}).FirstOrCreate(&user).Error; err != nil {
		return 0, fmt.Errorf("ensure user: %w", err)
	}
	return user.ID, nil
}

func mint(cfg *config.Config, userID uint, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": cfg.JWTIssuer,
		"aud": cfg.JWTAudience,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}
