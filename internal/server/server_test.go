package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// harness spins up the full route surface over an in-memory database, a
// miniredis instance, and a temp-dir upload directory.
type harness struct {
	app *fiber.App
	srv *Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewTestDB(t)
	redisClient, _ := testutil.NewTestRedis(t)

	cfg := &config.Config{
		Port:            "0",
		SessionTTLHours: 1,
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 10,
		AllowedOrigins:  "*",
		Env:             "test",
	}

	srv, err := NewServerWithDeps(cfg, db, redisClient)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &harness{app: app, srv: srv}
}

// request performs a JSON request, attaching the session cookie when set.
func (h *harness) request(t *testing.T, method, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "inkwell_session", Value: cookie})
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// multipartRequest performs a multipart form request with optional file.
func (h *harness) multipartRequest(
	t *testing.T, method, path string,
	fields map[string]string, fileName string, fileData []byte,
	cookie string,
) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, val := range fields {
		require.NoError(t, w.WriteField(key, val))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "inkwell_session", Value: cookie})
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin creates a user and returns their session cookie value.
func (h *harness) registerAndLogin(t *testing.T, username, email string) string {
	t.Helper()

	resp := h.request(t, fiber.MethodPost, "/register", fiber.Map{
		"name":     "Test " + username,
		"username": username,
		"email":    email,
		"password": "pw-" + username,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = h.request(t, fiber.MethodPost, "/login", fiber.Map{
		"email":    email,
		"password": "pw-" + username,
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer func() { _ = resp.Body.Close() }()

	for _, c := range resp.Cookies() {
		if c.Name == "inkwell_session" && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("no session cookie in login response")
	return ""
}

// createPost creates a post for the given session and returns its ID.
func (h *harness) createPost(t *testing.T, cookie, title string) uint {
	t.Helper()

	resp := h.multipartRequest(t, fiber.MethodPost, "/posts",
		map[string]string{"title": title, "content": "content of " + title},
		"", nil, cookie)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &post)
	require.NotZero(t, post.ID)
	return post.ID
}
