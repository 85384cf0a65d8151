package domain

// SessionStore persists the token pair across restarts.
type SessionStore interface {
	Load() (Session, error)

	Save(session Session) error

	Clear() error
}
