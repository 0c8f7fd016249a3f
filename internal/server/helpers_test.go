package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dainiki/internal/config"
	"dainiki/internal/models"
	"dainiki/internal/repository"
	"dainiki/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.JournalEntry{},
		&models.Tag{},
		&models.LoginHistory{},
	))
	return db
}

// newTestServer wires a Server over in-memory SQLite without Redis or the
// Prometheus middleware, and mounts the real route tree.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	db := setupHandlerTestDB(t)

	cfg := &config.Config{
		JWTSecret:               "test-secret-that-is-long-enough-0123",
		Env:                     "test",
		PinUnlockTimeoutMinutes: 30,
	}

	userRepo := repository.NewUserRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	historyRepo := repository.NewLoginHistoryRepository(db)

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		entryRepo:   entryRepo,
		tagRepo:     tagRepo,
		historyRepo: historyRepo,
	}
	s.journalService = service.NewJournalService(entryRepo, tagRepo)
	s.analyticsService = service.NewAnalyticsService(entryRepo)
	s.securityService = service.NewSecurityService(userRepo, 30*time.Minute)
	s.tagService = service.NewTagService(tagRepo)
	s.exportService = service.NewExportService(entryRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerUser registers a fresh account and returns its token. An empty pin
// leaves the journal without a PIN gate.
func registerUser(t *testing.T, app *fiber.App, username, pin string) string {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "Password123",
		"pin":      pin,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
