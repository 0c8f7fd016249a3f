package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func securityStatus(t *testing.T, app *fiber.App, token string) (hasPin, locked bool) {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodGet, "/api/security/status", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	return body["has_pin"].(bool), body["locked"].(bool)
}

func TestJournalWithoutPinIsNeverLocked(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := registerUser(t, app, "openbook", "")

	hasPin, locked := securityStatus(t, app, token)
	assert.False(t, hasPin)
	assert.False(t, locked)

	resp := doJSON(t, app, fiber.MethodGet, "/api/entries/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Verifying a PIN that was never set is a 404.
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/verify", token, fiber.Map{"pin": "1234"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPinGateFlow(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := registerUser(t, app, "locked", "1234")

	// A fresh session starts locked and cannot read entries or analytics.
	hasPin, locked := securityStatus(t, app, token)
	assert.True(t, hasPin)
	assert.True(t, locked)

	for _, path := range []string{"/api/entries/", "/api/analytics/summary", "/api/export/csv"} {
		resp := doJSON(t, app, fiber.MethodGet, path, token, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}

	// Security and tag routes stay reachable while locked.
	resp := doJSON(t, app, fiber.MethodGet, "/api/tags/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Wrong PIN does not unlock.
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/unlock", token, fiber.Map{"pin": "9999"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_, locked = securityStatus(t, app, token)
	assert.True(t, locked)

	// Correct PIN unlocks this session.
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/unlock", token, fiber.Map{"pin": "1234"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodGet, "/api/entries/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Explicit lock closes it again.
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/lock", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodGet, "/api/entries/", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUnlockIsPerSession(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	phone := registerUser(t, app, "twodevices", "1234")

	resp := doJSON(t, app, fiber.MethodPost, "/api/security/unlock", phone, fiber.Map{"pin": "1234"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A second login is a separate session and starts locked.
	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"login":    "twodevices",
		"password": "Password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	laptop := decodeBody(t, resp)["token"].(string)

	resp = doJSON(t, app, fiber.MethodGet, "/api/entries/", laptop, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// The first session stays unlocked.
	resp = doJSON(t, app, fiber.MethodGet, "/api/entries/", phone, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSetAndRemovePinOverHTTP(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := registerUser(t, app, "latelock", "")

	resp := doJSON(t, app, fiber.MethodPost, "/api/security/pin", token, fiber.Map{"pin": "4321"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Setting a PIN locks sessions that have not presented it.
	resp = doJSON(t, app, fiber.MethodGet, "/api/entries/", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// A second SetPin overwrites the old secret in place.
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/pin", token, fiber.Map{"pin": "8888"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/verify", token, fiber.Map{"pin": "4321"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPut, "/api/security/pin", token, fiber.Map{
		"current_pin": "8888",
		"new_pin":     "5678",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Verify checks without changing lock state.
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/verify", token, fiber.Map{"pin": "5678"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodPost, "/api/security/verify", token, fiber.Map{"pin": "4321"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_, locked := securityStatus(t, app, token)
	assert.True(t, locked)

	// Removing the PIN requires it, then the journal opens up.
	resp = doJSON(t, app, fiber.MethodDelete, "/api/security/pin", token, fiber.Map{"pin": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodDelete, "/api/security/pin", token, fiber.Map{"pin": "5678"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/entries/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
