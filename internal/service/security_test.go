package service

import (
	"context"
	"testing"
	"time"

	"dainiki/internal/models"
	"dainiki/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSecurityService(db *gorm.DB) *SecurityService {
	return NewSecurityService(repository.NewUserRepository(db), 30*time.Minute)
}

func TestSecurityPinLifecycle(t *testing.T) {
	t.Parallel()
	db := setupServiceDB(t)
	svc := newSecurityService(db)
	user := createTestUser(t, db, "pinless")
	ctx := context.Background()

	hasPin, err := svc.HasPin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, hasPin)

	// Users without a PIN are never locked.
	locked, err := svc.IsLocked(ctx, user.ID, "session-a")
	require.NoError(t, err)
	assert.False(t, locked)

	// Locking without a PIN is a validation error.
	err = svc.Lock(ctx, user.ID, "session-a")
	assert.True(t, models.IsCode(err, models.CodeValidation))

	require.NoError(t, svc.SetPin(ctx, user.ID, "1234"))

	hasPin, err = svc.HasPin(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, hasPin)

	// A fresh session starts locked.
	locked, err = svc.IsLocked(ctx, user.ID, "session-a")
	require.NoError(t, err)
	assert.True(t, locked)

	// Setting again overwrites the stored PIN.
	require.NoError(t, svc.SetPin(ctx, user.ID, "5678"))
	assert.NoError(t, svc.VerifyPin(ctx, user.ID, "5678"))
	err = svc.VerifyPin(ctx, user.ID, "1234")
	assert.True(t, models.IsCode(err, models.CodeInvalidPin))
}

func TestSecurityVerifyPin(t *testing.T) {
	t.Parallel()
	db := setupServiceDB(t)
	svc := newSecurityService(db)
	user := createTestUser(t, db, "verifier")
	ctx := context.Background()

	// Verifying before any PIN exists reports that none was found.
	err := svc.VerifyPin(ctx, user.ID, "1234")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	require.NoError(t, svc.SetPin(ctx, user.ID, "1234"))

	assert.NoError(t, svc.VerifyPin(ctx, user.ID, "1234"))

	err = svc.VerifyPin(ctx, user.ID, "9999")
	assert.True(t, models.IsCode(err, models.CodeInvalidPin))
}

func TestSecurityUnlockIsSessionScoped(t *testing.T) {
	t.Parallel()
	db := setupServiceDB(t)
	svc := newSecurityService(db)
	user := createTestUser(t, db, "twodevices")
	ctx := context.Background()

	require.NoError(t, svc.SetPin(ctx, user.ID, "1234"))

	// Wrong PIN does not unlock.
	err := svc.Unlock(ctx, user.ID, "phone", "0000")
	assert.True(t, models.IsCode(err, models.CodeInvalidPin))
	locked, err := svc.IsLocked(ctx, user.ID, "phone")
	require.NoError(t, err)
	assert.True(t, locked)

	// Unlocking one session leaves every other session locked.
	require.NoError(t, svc.Unlock(ctx, user.ID, "phone", "1234"))

	locked, err = svc.IsLocked(ctx, user.ID, "phone")
	require.NoError(t, err)
	assert.False(t, locked)

	locked, err = svc.IsLocked(ctx, user.ID, "laptop")
	require.NoError(t, err)
	assert.True(t, locked, "other sessions stay locked")

	// Explicit lock relocks only that session.
	require.NoError(t, svc.Lock(ctx, user.ID, "phone"))
	locked, err = svc.IsLocked(ctx, user.ID, "phone")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestSecurityUnlockTimeout(t *testing.T) {
	t.Parallel()
	db := setupServiceDB(t)
	svc := newSecurityService(db)
	user := createTestUser(t, db, "timer")
	ctx := context.Background()

	require.NoError(t, svc.SetPin(ctx, user.ID, "1234"))

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Unlock(ctx, user.ID, "tab", "1234"))

	// 29 minutes in: still unlocked.
	now = base.Add(29 * time.Minute)
	locked, err := svc.IsLocked(ctx, user.ID, "tab")
	require.NoError(t, err)
	assert.False(t, locked)

	// 31 minutes in: expired.
	now = base.Add(31 * time.Minute)
	locked, err = svc.IsLocked(ctx, user.ID, "tab")
	require.NoError(t, err)
	assert.True(t, locked)

	// Unlocking again restarts the window.
	require.NoError(t, svc.Unlock(ctx, user.ID, "tab", "1234"))
	now = now.Add(29 * time.Minute)
	locked, err = svc.IsLocked(ctx, user.ID, "tab")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestSecurityChangeAndRemovePin(t *testing.T) {
	t.Parallel()
	db := setupServiceDB(t)
	svc := newSecurityService(db)
	user := createTestUser(t, db, "changer")
	ctx := context.Background()

	require.NoError(t, svc.SetPin(ctx, user.ID, "1234"))
	require.NoError(t, svc.Unlock(ctx, user.ID, "desk", "1234"))

	// Change requires the current PIN.
	err := svc.ChangePin(ctx, user.ID, "wrong", "5678")
	assert.True(t, models.IsCode(err, models.CodeInvalidPin))

	require.NoError(t, svc.ChangePin(ctx, user.ID, "1234", "5678"))
	assert.NoError(t, svc.VerifyPin(ctx, user.ID, "5678"))
	err = svc.VerifyPin(ctx, user.ID, "1234")
	assert.True(t, models.IsCode(err, models.CodeInvalidPin))

	// Removal requires the PIN and drops the user's unlocks.
	err = svc.RemovePin(ctx, user.ID, "1111")
	assert.True(t, models.IsCode(err, models.CodeInvalidPin))

	require.NoError(t, svc.RemovePin(ctx, user.ID, "5678"))

	hasPin, err := svc.HasPin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, hasPin)

	// Without a PIN nothing is locked anymore.
	locked, err := svc.IsLocked(ctx, user.ID, "desk")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestSecurityPinValidation(t *testing.T) {
	t.Parallel()
	db := setupServiceDB(t)
	svc := newSecurityService(db)
	user := createTestUser(t, db, "shorty")
	ctx := context.Background()

	err := svc.SetPin(ctx, user.ID, "123")
	assert.True(t, models.IsCode(err, models.CodeValidation), "PIN under 4 chars rejected")
}
