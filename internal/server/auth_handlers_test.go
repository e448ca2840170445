package server

import (
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	h := newHarness(t)

	resp := h.request(t, fiber.MethodPost, "/register", fiber.Map{
		"name":     "Alice A",
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
		User    struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "User created successfully", body.Message)
	assert.Equal(t, "alice", body.User.Username)
	assert.NotZero(t, body.User.ID)
}

func TestRegisterDuplicateEndpoint(t *testing.T) {
	h := newHarness(t)
	h.registerAndLogin(t, "alice", "a@x.com")

	resp := h.request(t, fiber.MethodPost, "/register", fiber.Map{
		"name":     "Impostor",
		"username": "alice",
		"email":    "other@x.com",
		"password": "secret",
	}, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, models.CodeConflict, body.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	h := newHarness(t)

	resp := h.request(t, fiber.MethodPost, "/register", fiber.Map{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret",
	}, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.registerAndLogin(t, "alice", "a@x.com")

	resp := h.request(t, fiber.MethodPost, "/login", fiber.Map{
		"email":    "a@x.com",
		"password": "wrong",
	}, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Invalid credentials", body.Error)
}

func TestLoginAlreadyLoggedIn(t *testing.T) {
	h := newHarness(t)
	cookie := h.registerAndLogin(t, "alice", "a@x.com")

	resp := h.request(t, fiber.MethodPost, "/login", fiber.Map{
		"email":    "a@x.com",
		"password": "pw-alice",
	}, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "You are already logged in", body.Message)
}

func TestLoginNextRedirect(t *testing.T) {
	h := newHarness(t)
	h.registerAndLogin(t, "alice", "a@x.com")

	resp := h.request(t, fiber.MethodPost, "/login?next=/profile", fiber.Map{
		"email":    "a@x.com",
		"password": "pw-alice",
	}, "")
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))
}

func TestLogoutInvalidatesSession(t *testing.T) {
	h := newHarness(t)
	cookie := h.registerAndLogin(t, "alice", "a@x.com")

	resp := h.request(t, fiber.MethodPost, "/logout", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Logged out successfully", body.Message)

	// The old token no longer grants access.
	resp = h.request(t, fiber.MethodGet, "/profile", nil, cookie)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRequiresAuth(t *testing.T) {
	h := newHarness(t)

	resp := h.request(t, fiber.MethodPost, "/logout", nil, "")
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileEndpoint(t *testing.T) {
	h := newHarness(t)
	cookie := h.registerAndLogin(t, "alice", "a@x.com")
	h.createPost(t, cookie, "First")
	h.createPost(t, cookie, "Second")

	resp := h.request(t, fiber.MethodGet, "/profile", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		UserID   uint   `json:"user_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Posts    []struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
		} `json:"posts"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "a@x.com", body.Email)
	assert.Len(t, body.Posts, 2)
}

func TestProfileRejectsGarbageCookie(t *testing.T) {
	h := newHarness(t)

	resp := h.request(t, fiber.MethodGet, "/profile", nil, "not-a-session")
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
