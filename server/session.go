package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/skybiz/skybiz/server/auth"
	"github.com/skybiz/skybiz/server/models"
)

const (
	SESSION_COOKIE = "skybiz_session"
	FLASH_COOKIE   = "skybiz_flash"

	FLASH_SUCCESS = "success"
	FLASH_ERROR   = "error"
)

// SessionUser is the signed in user attached to the request context.
type SessionUser struct {
	ID       uint
	Username string
	IsStaff  bool
}

type Flash struct {
	Level   string
	Message string
}

func sessionUserFromContext(ctx context.Context) *SessionUser {
	user, _ := ctx.Value(RequestContextKey("sessionUser")).(*SessionUser)
	return user
}

func isStaff(r *http.Request) bool {
	user := sessionUserFromContext(r.Context())
	return user != nil && user.IsStaff
}

// startSession issues a signed session token for user as an HttpOnly cookie.
func (s *Server) startSession(rw http.ResponseWriter, user *models.User) error {
	claims := auth.NewSessionClaims(user.ID, user.Username, user.IsStaff, s.now())
	token, err := auth.EncodeJWT(claims, s.opts.KeyPair)
	if err != nil {
		return err
	}

	http.SetCookie(rw, &http.Cookie{
		Name:     SESSION_COOKIE,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SESSION_LIFETIME / time.Second),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (s *Server) endSession(rw http.ResponseWriter) {
	http.SetCookie(rw, &http.Cookie{
		Name:     SESSION_COOKIE,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// userFromSessionCookie returns the user behind a valid session cookie, or nil. The account
// must still exist and be active; its staff flag is read from the database.
func (s *Server) userFromSessionCookie(r *http.Request) *SessionUser {
	cookie, err := r.Cookie(SESSION_COOKIE)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims, err := auth.DecodeJWT(cookie.Value, s.opts.KeyPair, s.now())
	if err != nil {
		return nil
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil
	}

	user, err := models.FindUserBy("id", userID)
	if err != nil || !user.IsActive {
		return nil
	}

	return &SessionUser{ID: user.ID, Username: user.Username, IsStaff: user.IsStaff}
}

// ---------------------------------------------------------------------------------//
// Flash notices
// --------------------------------------------------------------------------------//

// addFlash queues a notice for the next rendered page.
func (s *Server) addFlash(rw http.ResponseWriter, r *http.Request, level, message string) {
	flashes := append(s.readFlashes(r), Flash{Level: level, Message: message})

	encoded, err := s.cookies.Encode(FLASH_COOKIE, flashes)
	if err != nil {
		logg.Errorf("unable to encode flash: %v", err)
		return
	}

	http.SetCookie(rw, &http.Cookie{
		Name:     FLASH_COOKIE,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the queued notices and clears them.
func (s *Server) popFlashes(rw http.ResponseWriter, r *http.Request) []Flash {
	flashes := s.readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(rw, &http.Cookie{Name: FLASH_COOKIE, Value: "", Path: "/", MaxAge: -1})
	}

	return flashes
}

func (s *Server) readFlashes(r *http.Request) []Flash {
	flashes := []Flash{}

	cookie, err := r.Cookie(FLASH_COOKIE)
	if err != nil || cookie.Value == "" {
		return flashes
	}

	if err = s.cookies.Decode(FLASH_COOKIE, cookie.Value, &flashes); err != nil {
		return []Flash{}
	}

	return flashes
}

// redirectWithFlash queues a notice and sends the client to location.
func (s *Server) redirectWithFlash(rw http.ResponseWriter, r *http.Request, location, level, message string) {
	s.addFlash(rw, r, level, message)
	http.Redirect(rw, r, location, http.StatusSeeOther)
}
