package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"github.com/roh2cool/project4/internal/config"
	"github.com/roh2cool/project4/internal/domain"
	"github.com/roh2cool/project4/internal/repository"
	"github.com/roh2cool/project4/pkg/database"
	"github.com/roh2cool/project4/pkg/log"
)

// Seeds the database with fake users, posts, likes and follow edges so the
// feeds have something to show during development. Every account gets the
// same password: "password".
func main() {
	userCount := flag.Int("users", 10, "number of users to create")
	postsPerUser := flag.Int("posts", 5, "maximum posts per user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log.Init(cfg.Log)
	logger := log.L()

	db, err := database.New(&database.Config{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		FilePath: cfg.Database.FilePath,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.PostModel{},
		&domain.LikeModel{},
		&domain.FollowModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to auto-migrate")
	}

	gofakeit.Seed(time.Now().UnixNano())

	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	// Create users.
	users := make([]*domain.User, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		username := strings.ToLower(gofakeit.Username())
		user := &domain.User{
			Username:     username,
			Email:        gofakeit.Email(),
			PasswordHash: string(hashed),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			logger.Warn().Err(err).Str("username", username).Msg("Skipping user")
			continue
		}
		users = append(users, user)
		logger.Info().Str("username", username).Str(log.FieldUserID, user.ID).Msg("Created user")
	}
	if len(users) == 0 {
		logger.Fatal().Msg("No users created, aborting")
	}

	// Create posts.
	posts := make([]*domain.Post, 0, len(users)*(*postsPerUser))
	for _, u := range users {
		n := gofakeit.Number(1, *postsPerUser)
		for i := 0; i < n; i++ {
			post := &domain.Post{
				AuthorID: u.ID,
				Content:  gofakeit.Sentence(gofakeit.Number(5, 25)),
			}
			if err := postRepo.Create(ctx, post); err != nil {
				logger.Warn().Err(err).Msg("Skipping post")
				continue
			}
			posts = append(posts, post)
		}
	}
	logger.Info().Int("count", len(posts)).Msg("Created posts")

	// Create follow edges. Duplicate picks are no-ops.
	follows := 0
	for _, u := range users {
		n := gofakeit.Number(0, len(users)-1)
		for i := 0; i < n; i++ {
			target := users[gofakeit.Number(0, len(users)-1)]
			if target.ID == u.ID {
				continue
			}
			if err := followRepo.Follow(ctx, u.ID, target.ID); err != nil {
				logger.Warn().Err(err).Msg("Skipping follow")
				continue
			}
			follows++
		}
	}
	logger.Info().Int("count", follows).Msg("Created follow edges")

	// Sprinkle likes. Duplicate picks are no-ops.
	likes := 0
	for _, u := range users {
		n := gofakeit.Number(0, len(posts))
		for i := 0; i < n; i++ {
			post := posts[gofakeit.Number(0, len(posts)-1)]
			if err := postRepo.AddLike(ctx, post.ID, u.ID); err != nil {
				logger.Warn().Err(err).Msg("Skipping like")
				continue
			}
			likes++
		}
	}
	logger.Info().Int("count", likes).Msg("Created likes")

	logger.Info().
		Int("users", len(users)).
		Int("posts", len(posts)).
		Msg("Seeding complete, every account's password is \"password\"")
}
