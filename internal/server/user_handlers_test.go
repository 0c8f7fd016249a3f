package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMyProfile(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := registerUser(t, app, "renameme", "")

	resp := doJSON(t, app, fiber.MethodPut, "/api/users/me", token, fiber.Map{
		"username": "renamed",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := decodeBody(t, resp)["user"].(map[string]any)
	assert.Equal(t, "renamed", user["username"])
	// Untouched fields survive a partial update.
	assert.Equal(t, "renameme@example.com", user["email"])

	resp = doJSON(t, app, fiber.MethodPut, "/api/users/me", token, fiber.Map{
		"email": "not-an-email",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The old username is free again, the new one is taken.
	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "renamed",
		"email":    "fresh@example.com",
		"password": "Password123",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
