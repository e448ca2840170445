// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"io"
	"mime/multipart"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostDetail is the public projection of a single post with its
// author, comment count, and full comment list.
type PostDetail struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	FilePath      *string            `json:"file_path"`
	UserID        uint               `json:"user_id"`
	Author        models.UserSummary `json:"author"`
	CommentsCount int                `json:"comments_count"`
	Comments      []CommentView      `json:"comments"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CommentView is a comment with its commenter summary.
type CommentView struct {
	ID        uint               `json:"id"`
	Text      string             `json:"text"`
	Commenter models.UserSummary `json:"commenter"`
	CreatedAt time.Time          `json:"created_at"`
}

// PostListItem is the projection used by the public post listing, with
// the author's username inlined.
type PostListItem struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	FilePath      *string   `json:"file_path"`
	UserID        uint      `json:"user_id"`
	Username      string    `json:"username"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreatePost handles POST /posts (protected, multipart form).
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	fileName, fileData, err := s.readUpload(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		UserID:   userID,
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		FileName: fileName,
		FileData: fileData,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /posts (public).
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	items := make([]PostListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, PostListItem{
			ID:            p.ID,
			Title:         p.Title,
			Content:       p.Content,
			FilePath:      p.FilePath,
			UserID:        p.UserID,
			Username:      p.User.Username,
			CommentsCount: p.CommentsCount,
			CreatedAt:     p.CreatedAt,
		})
	}
	return c.JSON(items)
}

// GetPost handles GET /posts/:id (public).
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	comments, err := s.commentRepo.ListByPost(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	views := make([]CommentView, 0, len(comments))
	for _, cm := range comments {
		views = append(views, CommentView{
			ID:        cm.ID,
			Text:      cm.Text,
			Commenter: cm.User.Summary(),
			CreatedAt: cm.CreatedAt,
		})
	}

	return c.JSON(PostDetail{
		ID:            post.ID,
		Title:         post.Title,
		Content:       post.Content,
		FilePath:      post.FilePath,
		UserID:        post.UserID,
		Author:        post.User.Summary(),
		CommentsCount: post.CommentsCount,
		Comments:      views,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	})
}

// UpdatePost handles PUT/PATCH /posts/:id/edit (protected). The body
// may be JSON or multipart form; both converge on one update input.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in := service.UpdatePostInput{
		UserID: currentUserID(c),
		PostID: postID,
	}

	if isMultipartForm(c) {
		fileName, fileData, err := s.readUpload(c)
		if err != nil {
			return respondServiceError(c, err)
		}
		in.Title = c.FormValue("title")
		in.Content = c.FormValue("content")
		in.RemoveFile = c.FormValue("remove_file") == "true"
		in.FileName = fileName
		in.FileData = fileData
	} else {
		var req struct {
			Title      string `json:"title"`
			Content    string `json:"content"`
			RemoveFile bool   `json:"remove_file"`
		}
		if parseErr := c.BodyParser(&req); parseErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Content = req.Content
		in.RemoveFile = req.RemoveFile
	}

	post, err := s.postService.Update(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /posts/:id (protected).
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// isMultipartForm reports whether the request body is multipart form data.
func isMultipartForm(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// readUpload reads the optional "file" form field into memory,
// enforcing the configured size cap. No file present is not an error.
func (s *Server) readUpload(c *fiber.Ctx) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, nil
	}
	return readFormFile(fileHeader, int64(s.config.MaxUploadSizeMB)*1024*1024)
}

func readFormFile(fh *multipart.FileHeader, maxBytes int64) (string, []byte, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return "", nil, models.NewValidationError("File too large")
	}
	src, err := fh.Open()
	if err != nil {
		return "", nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return "", nil, models.NewValidationError("Unable to read uploaded file")
	}
	return fh.Filename, content, nil
}
