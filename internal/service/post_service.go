package service

import (
	"context"
	"errors"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
)

// PostService handles post creation, partial updates, and deletion,
// including the lifecycle of attached files.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	files       *storage.Store
}

// CreatePostInput carries the fields for a new post. FileName/FileData
// are empty when no file was uploaded.
type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	FileName string
	FileData []byte
}

// UpdatePostInput is the single update shape both the JSON and the
// form parsing paths converge on. Empty Title/Content mean "leave
// unchanged". A new upload replaces any existing file; RemoveFile
// deletes it without a replacement.
type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Title      string
	Content    string
	RemoveFile bool
	FileName   string
	FileData   []byte
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	files *storage.Store,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		files:       files,
	}
}

// Create inserts a post owned by the caller. A file with a disallowed
// extension is skipped silently; the post is still created without it.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	var filePath *string
	if len(in.FileData) > 0 {
		ref, err := s.files.Save(in.FileName, in.FileData, in.UserID)
		switch {
		case errors.Is(err, storage.ErrExtensionNotAllowed):
			observability.UploadsTotal.WithLabelValues("skipped").Inc()
			middleware.Logger.InfoContext(ctx, "upload skipped, extension not allowed",
				slog.String("filename", in.FileName))
		case err != nil:
			return nil, models.NewInternalError(err)
		default:
			observability.UploadsTotal.WithLabelValues("stored").Inc()
			filePath = &ref
		}
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		FilePath: filePath,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// Update applies a partial update to a post owned by the caller.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title != "" {
		post.Title = in.Title
	}
	if in.Content != "" {
		post.Content = in.Content
	}

	if in.RemoveFile && post.FilePath != nil {
		s.deleteFile(ctx, *post.FilePath)
		post.FilePath = nil
	}

	if len(in.FileData) > 0 {
		ref, err := s.files.Save(in.FileName, in.FileData, in.UserID)
		switch {
		case errors.Is(err, storage.ErrExtensionNotAllowed):
			observability.UploadsTotal.WithLabelValues("skipped").Inc()
			middleware.Logger.InfoContext(ctx, "upload skipped, extension not allowed",
				slog.String("filename", in.FileName))
		case err != nil:
			return nil, models.NewInternalError(err)
		default:
			// Replace: drop the previous file before recording the new one.
			observability.UploadsTotal.WithLabelValues("stored").Inc()
			if post.FilePath != nil {
				s.deleteFile(ctx, *post.FilePath)
			}
			post.FilePath = &ref
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// Delete removes a post owned by the caller, cascading to its comments
// and its stored file. File removal is best effort: a filesystem
// failure is logged and must not block the row deletion.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if post.FilePath != nil {
		s.deleteFile(ctx, *post.FilePath)
	}
	if err := s.commentRepo.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) deleteFile(ctx context.Context, ref string) {
	if err := s.files.Delete(ref); err != nil {
		middleware.Logger.WarnContext(ctx, "file cleanup failed",
			slog.String("file", ref),
			slog.String("error", err.Error()),
		)
	}
}
