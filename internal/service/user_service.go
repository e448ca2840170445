// Package service implements the application's business logic between
// handlers and repositories.
package service

import (
	"context"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// UserService handles registration, authentication, and profiles.
type UserService struct {
	userRepo repository.UserRepository
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// ProfileOutput is the authenticated user's own view of their account.
type ProfileOutput struct {
	UserID   uint                 `json:"user_id"`
	Username string               `json:"username"`
	Email    string               `json:"email"`
	Name     string               `json:"name"`
	Posts    []models.PostSummary `json:"posts"`
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register validates the input, hashes the password, and creates the
// user. Duplicate username or email yields a conflict; the database
// unique constraints backstop the pre-check against races.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Name, username, email, and password are required")
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("Username or email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate looks up the user by email and verifies the password.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// Profile returns the identity summary plus an id/title projection of
// the user's posts.
func (s *UserService) Profile(ctx context.Context, userID uint) (*ProfileOutput, error) {
	user, err := s.userRepo.GetByIDWithPosts(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts := make([]models.PostSummary, 0, len(user.Posts))
	for _, p := range user.Posts {
		posts = append(posts, models.PostSummary{ID: p.ID, Title: p.Title})
	}

	return &ProfileOutput{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
		Posts:    posts,
	}, nil
}
