package utility

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "fitplan_session"
	clientIDKey = "client_id"
)

// NewSessionStore returns the cookie store that carries the browser's client id.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// ClientID returns the id of the browser behind the request, creating and
// saving a new one on first contact. Submissions are sequenced per client id.
func ClientID(c echo.Context, store sessions.Store) (string, error) {
	session, err := store.Get(c.Request(), sessionName)
	if err != nil {
		// A cookie signed with an old secret still yields a fresh session.
		GetLogger(c).Debug().Err(err).Msg("Discarding unreadable session cookie")
	}

	if id, ok := session.Values[clientIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.New().String()
	session.Values[clientIDKey] = id
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}
