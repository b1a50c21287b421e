package session

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

const (
	userIDKey   = "userId"
	ssoStateKey = "ssoState"
)

// ErrSSOStateMismatch means a callback's state was not issued to this session
var ErrSSOStateMismatch = errors.New("sso state does not match the session")

// Manager binds a Store to the service's cookie name and the user id it carries
type Manager struct {
	store *Store
	name  string
}

func NewManager(store *Store) *Manager {
	return &Manager{store: store, name: CookieName}
}

// UserID returns the signed-in user id, or "" for an anonymous request
func (m *Manager) UserID(r *http.Request) (string, error) {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		return "", err
	}
	id, _ := session.Values[userIDKey].(string)
	return id, nil
}

// SignIn issues a fresh session id bound to userID
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		return err
	}
	if err := m.store.Regenerate(r, session); err != nil {
		return err
	}
	session.Values[userIDKey] = userID
	return m.store.Save(r, w, session)
}

// SignOut deletes the session record and expires the cookie
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		return err
	}
	session.Options.MaxAge = -1
	return m.store.Save(r, w, session)
}

// BeginSSO stores a fresh OAuth state in the session and returns it
func (m *Manager) BeginSSO(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		return "", err
	}
	state := newSessionID()
	session.Values[ssoStateKey] = state
	if err := m.store.Save(r, w, session); err != nil {
		return "", err
	}
	return state, nil
}

// ConsumeSSOState clears the stored state and checks it against the callback's.
// A state is good for one callback, matching or not.
func (m *Manager) ConsumeSSOState(w http.ResponseWriter, r *http.Request, state string) error {
	session, err := m.store.Get(r, m.name)
	if err != nil {
		return err
	}
	expected, _ := session.Values[ssoStateKey].(string)
	if expected == "" {
		return ErrSSOStateMismatch
	}

	delete(session.Values, ssoStateKey)
	if err := m.store.Save(r, w, session); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		return ErrSSOStateMismatch
	}
	return nil
}
