package middleware

import (
	"log"
	"time"

	"markethub/internal/models"
	"markethub/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// RememberCookie is the name of the persistent remember-me cookie.
const RememberCookie = "markethub_remember"

// sessionContextKey caches the open session in c.Locals so the resume
// middleware and the handler work on the same object: a session created
// mid-request has no id in the request cookie yet, so a second store.Get
// would silently hand back a different, empty session.
const sessionContextKey = "markethub_session"

// GetSession returns the session for this request, opening it on first use.
// Callers that mutate the session must Save (or Destroy) it themselves, and
// must not touch the object afterwards.
func GetSession(c *fiber.Ctx, store *session.Store) (*session.Session, error) {
	if sess, ok := c.Locals(sessionContextKey).(*session.Session); ok {
		return sess, nil
	}
	sess, err := store.Get(c)
	if err != nil {
		return nil, err
	}
	c.Locals(sessionContextKey, sess)
	return sess, nil
}

// SessionResume re-establishes a session from the remember-me cookie. It
// runs on every request but only acts when no session exists and the cookie
// is present; a stale or invalid cookie is cleared and the request continues
// anonymously. It never fails the request. The resumed snapshot is written
// to the request's session object; persisting it is left to whichever
// handler saves the session.
func SessionResume(store *session.Store, authService *services.AuthService, secureCookies bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenValue := c.Cookies(RememberCookie)
		if tokenValue == "" {
			return c.Next()
		}

		sess, err := GetSession(c, store)
		if err != nil {
			log.Printf("Session resume: failed to open session: %v", err)
			return c.Next()
		}
		if userID, _ := sess.Get("user_id").(string); userID != "" {
			// Already logged in; the cookie is only consulted when no
			// session exists.
			return c.Next()
		}

		meta := services.RequestMeta{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}
		user, ok := authService.ResumeFromRememberToken(tokenValue, meta)
		if !ok {
			ClearRememberCookie(c, secureCookies)
			return c.Next()
		}

		WriteSessionSnapshot(sess, user)
		return c.Next()
	}
}

// WriteSessionSnapshot stores the login-time user snapshot in the session.
// The fields are deliberately a copy: later changes to the user record do
// not affect an existing session.
func WriteSessionSnapshot(sess *session.Session, user *models.User) {
	sess.Set("user_id", user.ID)
	sess.Set("username", user.Username)
	sess.Set("email", user.Email)
	sess.Set("display_name", user.DisplayName)
	sess.Set("role", user.Role)
	sess.Set("logged_in_at", time.Now().Format(time.RFC3339))
}

// ClearRememberCookie expires the remember-me cookie on the client.
func ClearRememberCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     RememberCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
