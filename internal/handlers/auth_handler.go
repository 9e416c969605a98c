package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"markethub/internal/middleware"
	"markethub/internal/models"
	"markethub/internal/repositories"
	"markethub/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const rememberCookieTTL = 30 * 24 * time.Hour

// AuthHandler handles HTTP requests for registration, login, logout and the
// current-session endpoint.
type AuthHandler struct {
	authService    *services.AuthService
	accountService *services.AccountService
	tokenService   *services.APITokenService
	sessions       *session.Store
	validate       *validator.Validate
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be true in
// production so the remember cookie only travels over TLS.
func NewAuthHandler(authService *services.AuthService, accountService *services.AccountService, tokenService *services.APITokenService, sessions *session.Store, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
		tokenService:   tokenService,
		sessions:       sessions,
		validate:       validator.New(),
		secureCookies:  secureCookies,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/session", h.HandleSession)
}

// RegisterProfileRoutes registers the bearer-token profile routes used by
// programmatic API clients.
func (h *AuthHandler) RegisterProfileRoutes(router fiber.Router) {
	userRoutes := router.Group("/users", middleware.AuthRequired(h.tokenService))
	userRoutes.Get("/me", h.HandleMe)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"omitempty,oneof=customer vendor"`
}

// HandleRegister handles new account registration. Admin accounts cannot be
// self-registered; the role is restricted to customer or vendor.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
	}
	if err := h.accountService.Register(user, requestMeta(c)); err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailRegistered) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login. Identifier may be a
// username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// HandleLogin authenticates a user, writes the session snapshot and, when
// requested, sets the persistent remember-me cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, rememberToken, err := h.authService.Login(req.Identifier, req.Password, req.RememberMe, requestMeta(c))
	if err != nil {
		return loginError(c, req.Identifier, err)
	}

	sess, err := middleware.GetSession(c, h.sessions)
	if err != nil {
		log.Printf("Failed to open session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not establish session",
		})
	}
	middleware.WriteSessionSnapshot(sess, user)
	if err := sess.Save(); err != nil {
		log.Printf("Failed to save session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not establish session",
		})
	}

	if rememberToken != "" {
		c.Cookie(&fiber.Cookie{
			Name:     middleware.RememberCookie,
			Value:    rememberToken,
			Expires:  time.Now().Add(rememberCookieTTL),
			HTTPOnly: true,
			Secure:   h.secureCookies,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
	}

	apiToken, err := h.tokenService.GenerateToken(user)
	if err != nil {
		log.Printf("Failed to generate API token for %s: %v", user.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not generate API token",
		})
	}

	user.Password = ""
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   apiToken,
	})
}

// HandleLogout destroys the session, revokes the remember token and clears
// its cookie. It succeeds even for anonymous callers.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := middleware.GetSession(c, h.sessions)
	if err != nil {
		log.Printf("Failed to open session on logout: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not access session",
		})
	}

	// Capture the user id before the session is destroyed.
	userID, _ := sess.Get("user_id").(string)
	rememberToken := c.Cookies(middleware.RememberCookie)

	h.authService.Logout(userID, rememberToken, requestMeta(c))

	if err := sess.Destroy(); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	middleware.ClearRememberCookie(c, h.secureCookies)

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleSession returns the current session snapshot, or 401 when no session
// exists. The snapshot is the state captured at login; it is not refreshed
// from the user record.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	sess, err := middleware.GetSession(c, h.sessions)
	if err != nil {
		log.Printf("Failed to open session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not access session",
		})
	}

	userID, _ := sess.Get("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not logged in",
		})
	}

	snapshot := fiber.Map{
		"user_id":      userID,
		"username":     sess.Get("username"),
		"email":        sess.Get("email"),
		"display_name": sess.Get("display_name"),
		"role":         sess.Get("role"),
		"logged_in_at": sess.Get("logged_in_at"),
	}

	// Persist the session before responding: when the middleware just
	// resumed it from a remember token it only exists in memory, and Save
	// is also what hands the session cookie to the client.
	if err := sess.Save(); err != nil {
		log.Printf("Failed to save session: %v", err)
	}

	return c.JSON(snapshot)
}

// HandleMe returns the authenticated caller's account record. Unlike the
// session snapshot this is read fresh from the store on every call.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	user, err := h.accountService.Get(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Printf("Failed to load user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load user",
		})
	}

	user.Password = ""
	return c.JSON(fiber.Map{
		"user": user,
	})
}

// requestMeta extracts network metadata for the audit log.
func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// validationError renders a validator.ValidationErrors as a 400 response.
func validationError(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// loginError maps authentication failures to HTTP responses. Invalid
// credentials get a deliberately generic message; the status-gate failures
// are specific since a correct credential pair already confirmed the account
// exists.
func loginError(c *fiber.Ctx, identifier string, err error) error {
	log.Printf("Login failed for %s: %v", identifier, err)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   "invalid credentials",
		})
	case errors.Is(err, services.ErrPendingApproval),
		errors.Is(err, services.ErrRejected),
		errors.Is(err, services.ErrAccountNotActive):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Authentication failed",
		})
	}
}
