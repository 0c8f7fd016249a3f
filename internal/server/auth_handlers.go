package server

import (
	"fmt"
	"strconv"
	"time"

	"dainiki/internal/middleware"
	"dainiki/internal/models"
	"dainiki/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "dainiki-api"
	tokenAudience = "dainiki-client"
	tokenTTL      = time.Hour * 24 * 7
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		// Pin optionally locks the journal from the first session.
		Pin string `json:"pin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if req.Pin != "" {
		if err := validation.ValidatePin(req.Pin); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	// Check if user already exists
	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return respondErr(c, err)
	}
	if existing == nil {
		existing, err = s.userRepo.GetByUsername(c.Context(), req.Username)
		if err != nil {
			return respondErr(c, err)
		}
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("User already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if req.Pin != "" {
		pinHash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		hashStr := string(pinHash)
		user.PinHash = &hashStr
	}

	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return respondErr(c, err)
	}

	s.recordLogin(c, user.ID, true)

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login. The login field takes a username or an
// email address.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByLogin(c.Context(), req.Login)
	if err != nil {
		return respondErr(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// Failed attempts land in the audit trail too.
		s.recordLogin(c, user.ID, false)
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(c.Context(), user.ID, now); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to update last login",
			"user_id", user.ID, "error", err)
	}
	s.recordLogin(c, user.ID, true)

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout by revoking the token's JTI.
func (s *Server) Logout(c *fiber.Ctx) error {
	sessionID := currentSessionID(c)

	if s.redis != nil {
		if err := s.redis.Set(c.Context(), "blacklist:"+sessionID, "1", tokenTTL).Err(); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to blacklist token",
				"error", err)
		}
	}

	// Also drop the session's PIN unlock so a reused token relocks.
	_ = s.securityService.Lock(c.UserContext(), currentUserID(c), sessionID)

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetLoginHistory handles GET /api/auth/login-history
func (s *Server) GetLoginHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	records, err := s.historyRepo.ListByUser(c.Context(), currentUserID(c), limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"history": records})
}

func (s *Server) recordLogin(c *fiber.Ctx, userID uint, successful bool) {
	ip := c.IP()
	device := c.Get("User-Agent")
	rec := &models.LoginHistory{
		UserID:       userID,
		LoginTime:    time.Now(),
		IsSuccessful: successful,
	}
	if ip != "" {
		rec.IPAddress = &ip
	}
	if device != "" {
		if len(device) > 255 {
			device = device[:255]
		}
		rec.DeviceInfo = &device
	}
	if err := s.historyRepo.Record(c.Context(), rec); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to record login history",
			"user_id", userID, "error", err)
	}
}

// generateToken creates a JWT token for the given user ID
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"iss": tokenIssuer,                            // Issuer
		"aud": tokenAudience,                          // Audience
		"exp": now.Add(tokenTTL).Unix(),               // Expiration
		"iat": now.Unix(),                             // Issued at
		"nbf": now.Unix(),                             // Not before
		"jti": s.generateJTI(),                        // JWT ID, doubles as the session id
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID. The PIN gate and logout revocation key
// on it, so it must be unique per issued token.
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String())
}
