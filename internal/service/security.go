package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dainiki/internal/models"
	"dainiki/internal/observability"
	"dainiki/internal/repository"
	"dainiki/internal/validation"
)

// SecurityService manages the journal PIN lock. Unlock state is held per
// session in memory, so one client unlocking never unlocks another, and a
// restart relocks everything.
type SecurityService struct {
	userRepo repository.UserRepository

	mu       sync.Mutex
	unlocked map[string]unlockState

	timeout time.Duration
	now     func() time.Time
}

type unlockState struct {
	userID     uint
	unlockedAt time.Time
}

// NewSecurityService returns a SecurityService with the given inactivity
// timeout. A non-positive timeout falls back to 30 minutes.
func NewSecurityService(userRepo repository.UserRepository, timeout time.Duration) *SecurityService {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SecurityService{
		userRepo: userRepo,
		unlocked: map[string]unlockState{},
		timeout:  timeout,
		now:      time.Now,
	}
}

// HasPin reports whether the user has a PIN configured.
func (s *SecurityService) HasPin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.HasPin(), nil
}

// SetPin hashes and stores the user's PIN, replacing any existing one.
// Session unlock state is untouched.
func (s *SecurityService) SetPin(ctx context.Context, userID uint, pin string) error {
	if err := validation.ValidatePin(pin); err != nil {
		return models.NewValidationError(err.Error())
	}
	hash, err := hashPin(pin)
	if err != nil {
		return err
	}
	return s.userRepo.SetPinHash(ctx, userID, &hash)
}

// VerifyPin checks a PIN against the stored hash without touching lock state.
func (s *SecurityService) VerifyPin(ctx context.Context, userID uint, pin string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPin() {
		return models.NewNotFoundMessageError("No PIN is set")
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PinHash), []byte(pin)) != nil {
		observability.PinVerifications.WithLabelValues("failure").Inc()
		return models.NewInvalidPinError()
	}
	observability.PinVerifications.WithLabelValues("success").Inc()
	return nil
}

// ChangePin replaces the PIN after verifying the current one.
func (s *SecurityService) ChangePin(ctx context.Context, userID uint, currentPin, newPin string) error {
	if err := s.VerifyPin(ctx, userID, currentPin); err != nil {
		return err
	}
	return s.SetPin(ctx, userID, newPin)
}

// RemovePin deletes the PIN after verifying it, and drops any unlocks the
// user's sessions were holding.
func (s *SecurityService) RemovePin(ctx context.Context, userID uint, pin string) error {
	if err := s.VerifyPin(ctx, userID, pin); err != nil {
		return err
	}
	if err := s.userRepo.SetPinHash(ctx, userID, nil); err != nil {
		return err
	}
	s.mu.Lock()
	for sessionID, st := range s.unlocked {
		if st.userID == userID {
			delete(s.unlocked, sessionID)
		}
	}
	s.mu.Unlock()
	return nil
}

// IsLocked reports whether the session must present the PIN before reading
// entries. Users without a PIN are never locked. Unlocks expire lazily after
// the inactivity timeout.
func (s *SecurityService) IsLocked(ctx context.Context, userID uint, sessionID string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.HasPin() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.unlocked[sessionID]
	if !ok || st.userID != userID {
		return true, nil
	}
	if s.now().Sub(st.unlockedAt) > s.timeout {
		delete(s.unlocked, sessionID)
		return true, nil
	}
	return false, nil
}

// Unlock verifies the PIN and marks the session unlocked, restarting the
// timeout window.
func (s *SecurityService) Unlock(ctx context.Context, userID uint, sessionID, pin string) error {
	if err := s.VerifyPin(ctx, userID, pin); err != nil {
		return err
	}
	s.mu.Lock()
	s.unlocked[sessionID] = unlockState{userID: userID, unlockedAt: s.now()}
	s.mu.Unlock()
	return nil
}

// Lock relocks the session immediately. It is an error if no PIN is set.
func (s *SecurityService) Lock(ctx context.Context, userID uint, sessionID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPin() {
		return models.NewValidationError("No PIN is set")
	}
	s.mu.Lock()
	delete(s.unlocked, sessionID)
	s.mu.Unlock()
	return nil
}

func hashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}
