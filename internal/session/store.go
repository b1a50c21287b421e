package session

import (
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	CookieName = "classroom.sid"
	DefaultTTL = 7 * 24 * time.Hour
)

var sessionIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Store is a sessions.Store whose cookie holds only a signed session id.
// Values live server side in the Backend.
type Store struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options
	backend Backend
	ttl     time.Duration
}

var _ sessions.Store = (*Store)(nil)

// NewStore builds a Store. keyPairs are passed to securecookie.CodecsFromPairs.
func NewStore(backend Backend, ttl time.Duration, secure bool, keyPairs ...[]byte) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, codec := range codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(ttl.Seconds()))
		}
	}

	return &Store{
		Codecs: codecs,
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		},
		backend: backend,
		ttl:     ttl,
	}
}

// Get returns the request's cached session or loads it
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the cookie. A missing, forged or expired id
// yields a fresh empty session without error.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.Codecs...); err != nil {
		return session, nil
	}

	data, err := s.backend.Load(r.Context(), id)
	if errors.Is(err, ErrSessionNotFound) {
		return session, nil
	}
	if err != nil {
		return session, fmt.Errorf("failed to load session: %w", err)
	}

	if err := decodeValues(data, session.Values); err != nil {
		return session, fmt.Errorf("failed to decode session: %w", err)
	}
	session.ID = id
	session.IsNew = false
	return session, nil
}

// Save persists the values and refreshes the cookie. A negative MaxAge deletes both.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.backend.Delete(r.Context(), session.ID); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}

	data, err := encodeValues(session.Values)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.backend.Save(r.Context(), session.ID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Regenerate drops the server-side record and assigns a new id on next Save
func (s *Store) Regenerate(r *http.Request, session *sessions.Session) error {
	if session.ID != "" {
		if err := s.backend.Delete(r.Context(), session.ID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}
	session.ID = ""
	session.IsNew = true
	for key := range session.Values {
		delete(session.Values, key)
	}
	return nil
}

func newSessionID() string {
	return strings.ToLower(sessionIDEncoding.EncodeToString(securecookie.GenerateRandomKey(32)))
}

func encodeValues(values map[interface{}]interface{}) ([]byte, error) {
	flat := make(map[string]interface{}, len(values))
	for k, v := range values {
		key, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("session key %v is not a string", k)
		}
		flat[key] = v
	}
	return json.Marshal(flat)
}

func decodeValues(data []byte, values map[interface{}]interface{}) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	for k, v := range flat {
		values[k] = v
	}
	return nil
}
