package storage

import "github.com/johanforsgren/repodeck/internal/domain"

// sessionFile is the on-disk layout: two string values under fixed keys.
type sessionFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (f sessionFile) toSession() domain.Session {
	return domain.Session{AccessToken: f.AccessToken, RefreshToken: f.RefreshToken}
}

func fromSession(s domain.Session) sessionFile {
	return sessionFile{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}
