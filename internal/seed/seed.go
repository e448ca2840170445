// Package seed provides helpers to create development and demo data.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options control how much data the seeder creates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	Password        string
}

// DefaultOptions returns a small, readable demo dataset.
func DefaultOptions() Options {
	return Options{
		Users:           5,
		PostsPerUser:    3,
		CommentsPerPost: 2,
		Password:        "password123",
	}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a fake user with the given password.
func (f *Factory) CreateUser(password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         gofakeit.Name(),
		Username:     fmt.Sprintf("%s%d", gofakeit.Username(), f.rng.Intn(10000)),
		Email:        gofakeit.Email(),
		PasswordHash: hash,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a fake post owned by the user, with a realistic
// created_at spread over the last 90 days.
func (f *Factory) CreatePost(user *models.User) (*models.Post, error) {
	post := &models.Post{
		Title:   gofakeit.Sentence(5),
		Content: gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:  user.ID,
	}
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a fake comment by the user on the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	text := gofakeit.Sentence(8)
	if len(text) > 255 {
		text = text[:255]
	}
	comment := &models.Comment{
		Text:   text,
		UserID: user.ID,
		PostID: post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Run populates the database per the options: users, posts per user,
// and comments on each post from randomly chosen users.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser(opts.Password)
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, u)
	}

	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			p, err := f.CreatePost(u)
			if err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
			for j := 0; j < opts.CommentsPerPost; j++ {
				commenter := users[f.rng.Intn(len(users))]
				if _, err := f.CreateComment(commenter, p); err != nil {
					return fmt.Errorf("seed comment: %w", err)
				}
			}
		}
	}
	return nil
}
