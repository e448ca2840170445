package service

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture wires real repositories over an in-memory database and a
// temp-dir file store.
type fixture struct {
	db       *gorm.DB
	files    *storage.Store
	users    *UserService
	posts    *PostService
	comments *CommentService

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	files, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &fixture{
		db:          db,
		files:       files,
		users:       NewUserService(userRepo),
		posts:       NewPostService(postRepo, commentRepo, files),
		comments:    NewCommentService(commentRepo, postRepo),
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

func (f *fixture) registerUser(t *testing.T, username, email string) *models.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), RegisterInput{
		Name:     "Test " + username,
		Username: username,
		Email:    email,
		Password: "pw-" + username,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createPost(t *testing.T, userID uint, title string) *models.Post {
	t.Helper()
	post, err := f.posts.Create(context.Background(), CreatePostInput{
		UserID:  userID,
		Title:   title,
		Content: "content of " + title,
	})
	require.NoError(t, err)
	return post
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}
