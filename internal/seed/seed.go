// Package seed loads a demo dataset for development. Everything is created
// through the service layer so the data obeys the same rules as live traffic.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"interu/internal/featureflags"
	"interu/internal/middleware"
	"interu/internal/models"
	"interu/internal/repository"
	"interu/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Options configuration for the seeder
type Options struct {
	Users        int
	PostsPerUser int
	ChatsPerPost int
	Clean        bool
	// RandSeed makes a run reproducible. Zero picks a random seed.
	RandSeed int64
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Chats    int
	Messages int
	Ratings  int
}

var (
	skillCatalog = []string{
		"go", "python", "sql", "react", "calculus", "linear algebra", "statistics",
		"physics", "chemistry", "english", "french", "portuguese", "guitar",
		"piano", "photography", "drawing", "public speaking", "excel",
	}
	careers = []string{
		"Computer Engineering", "Systems Engineering", "Mathematics", "Physics",
		"Economics", "Graphic Design", "Music", "Industrial Engineering",
	}
	areas = []string{"Engineering", "Sciences", "Arts", "Business", "Humanities"}
)

// Seeder populates the database with demo users, profiles, posts and chats.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker

	profiles *service.ProfileService
	posts    *service.PostService
	chats    *service.ChatService
	ratings  *service.RatingService
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Users <= 0 {
		opts.Users = 20
	}
	if opts.PostsPerUser <= 0 {
		opts.PostsPerUser = 2
	}
	if opts.ChatsPerPost < 0 {
		opts.ChatsPerPost = 0
	}

	store := repository.NewStore(db)
	notifications := service.NewNotificationService(store)
	return &Seeder{
		db:       db,
		opts:     opts,
		faker:    gofakeit.New(opts.RandSeed),
		profiles: service.NewProfileService(store),
		posts:    service.NewPostService(store),
		chats:    service.NewChatService(store, notifications),
		ratings:  service.NewRatingService(store, notifications, featureflags.NewManager("")),
	}
}

// Run seeds the dataset and reports what was created.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	users, err := s.createUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	sum.Users = len(users)

	var posts []*models.SkillPost
	for _, u := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			p, err := s.createPost(ctx, u)
			if err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, p)
		}
	}
	sum.Posts = len(posts)

	if len(users) > 1 {
		for _, p := range posts {
			if err := s.createChats(ctx, p, users, sum); err != nil {
				return nil, fmt.Errorf("create chats: %w", err)
			}
		}
	}

	middleware.Logger.Info("demo data seeded",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("chats", sum.Chats),
		slog.Int("messages", sum.Messages),
		slog.Int("ratings", sum.Ratings),
	)
	return sum, nil
}

func (s *Seeder) createUsers(ctx context.Context) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		handle := fmt.Sprintf("%s_%s_%d", slug(first), slug(last), i)
		user := &models.User{
			Email:        handle + "@interu.dev",
			Username:     handle,
			PasswordHash: string(hash),
		}
		if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}

		if _, err := s.profiles.Create(ctx, user.ID, service.ProfileInput{
			Alias:         handle,
			FirstName:     first,
			LastName:      last,
			Career:        s.faker.RandomString(careers),
			Area:          s.faker.RandomString(areas),
			Bio:           s.faker.Sentence(12),
			OfferedSkills: s.pickSkills(1, 3),
		}); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPost(ctx context.Context, owner *models.User) (*models.SkillPost, error) {
	sought := s.pickSkills(1, 2)
	return s.posts.Create(ctx, service.CreatePostInput{
		OwnerID:      owner.ID,
		Title:        "Looking for help with " + strings.Join(sought, " and "),
		Description:  s.faker.Paragraph(1, 3, 10, " "),
		SoughtSkills: sought,
	})
}

func (s *Seeder) createChats(ctx context.Context, post *models.SkillPost, users []*models.User, sum *Summary) error {
	for i := 0; i < s.opts.ChatsPerPost; i++ {
		respondent := users[s.faker.Number(0, len(users)-1)]
		if respondent.ID == post.OwnerID {
			continue
		}
		chat, err := s.chats.OpenChat(ctx, post.ID, respondent.ID)
		if err != nil {
			return err
		}
		sum.Chats++

		senders := []uint{respondent.ID, post.OwnerID}
		for m, n := 0, s.faker.Number(1, 4); m < n; m++ {
			if _, err := s.chats.PostMessage(ctx, chat.ID, senders[m%2], s.faker.Sentence(8)); err != nil {
				return err
			}
			sum.Messages++
		}

		if !s.faker.Bool() {
			continue
		}
		if _, err := s.chats.CompleteExchange(ctx, chat.ID, post.OwnerID); err != nil {
			return err
		}
		for _, rater := range senders {
			if _, err := s.ratings.SubmitRating(ctx, service.SubmitRatingInput{
				ChatID:  chat.ID,
				RaterID: rater,
				Score:   s.faker.Number(models.MinRatingScore+2, models.MaxRatingScore),
				Comment: s.faker.Sentence(6),
			}); err != nil {
				return err
			}
			sum.Ratings++
		}
	}
	return nil
}

func (s *Seeder) pickSkills(min, max int) []string {
	n := s.faker.Number(min, max)
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		skill := s.faker.RandomString(skillCatalog)
		if seen[skill] {
			continue
		}
		seen[skill] = true
		out = append(out, skill)
	}
	return out
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []any{
		&models.Notification{},
		&models.Rating{},
		&models.ChatMessage{},
		&models.ChatParticipant{},
		&models.ExchangeChat{},
		&models.Report{},
		&models.SkillPost{},
		&models.Profile{},
		&models.User{},
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range tables {
			if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
