// Package backendtest provides an in-process fake of the remote API for tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/johanforsgren/repodeck/internal/domain"
)

const DefaultMFACode = "123456"

// Server issues tokens A1/R1, A2/R2, ... in order. A refresh token can be used once.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[string]string
	pendingMFA    map[string]bool
	mfaCode       string
	accessTokens  map[string]bool
	refreshTokens map[string]bool
	issued        int
	repos         []domain.RepositoryRecord

	rejectRefresh bool
	rejectAccess  bool
	reposStatus   int
	logoutStatus  int

	refreshCalls  int
	logoutCalls   int
	reposQueries  []url.Values
	authorization []string
}

func New() *Server {
	s := &Server{
		users:         map[string]string{},
		pendingMFA:    map[string]bool{},
		mfaCode:       DefaultMFACode,
		accessTokens:  map[string]bool{},
		refreshTokens: map[string]bool{},
		logoutStatus:  http.StatusOK,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/verify-mfa", s.handleVerifyMFA)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
	})
	r.Get("/repos", s.handleRepos)
	return r
}

func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// SetRepos installs n generated repositories owner/repo-0 ... owner/repo-(n-1).
func (s *Server) SetRepos(n int) {
	repos := make([]domain.RepositoryRecord, n)
	for i := range repos {
		name := fmt.Sprintf("owner/repo-%d", i)
		repos[i] = domain.RepositoryRecord{
			FullName:    name,
			URL:         "https://github.com/" + name,
			Stars:       1000 - i,
			Description: fmt.Sprintf("Repository number %d", i),
			Language:    "Go",
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos = repos
}

// Issue mints a token pair directly, as if MFA had been verified.
func (s *Server) Issue() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked()
}

func (s *Server) issueLocked() domain.Session {
	s.issued++
	tokens := domain.Session{
		AccessToken:  fmt.Sprintf("A%d", s.issued),
		RefreshToken: fmt.Sprintf("R%d", s.issued),
	}
	s.accessTokens[tokens.AccessToken] = true
	s.refreshTokens[tokens.RefreshToken] = true
	return tokens
}

// ExpireAccessTokens invalidates every access token; refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = map[string]bool{}
}

// SetRejectAllAccess makes /repos answer 401 for every token, including
// freshly refreshed ones.
func (s *Server) SetRejectAllAccess(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAccess = reject
}

func (s *Server) SetRejectRefresh(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectRefresh = reject
}

func (s *Server) SetReposStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reposStatus = status
}

func (s *Server) SetLogoutStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutStatus = status
}

func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

func (s *Server) LogoutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutCalls
}

func (s *Server) ReposQueries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.reposQueries))
	copy(out, s.reposQueries)
	return out
}

// Authorizations lists the Authorization header of every /repos call.
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.authorization))
	copy(out, s.authorization)
	return out
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[creds.Email]; exists {
		http.Error(w, "user exists", http.StatusConflict)
		return
	}
	s.users[creds.Email] = creds.Password
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	password, ok := s.users[creds.Email]
	if !ok || password != creds.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	s.pendingMFA[creds.Email] = true
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var challenge domain.MFAChallenge
	if err := json.NewDecoder(r.Body).Decode(&challenge); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pendingMFA[challenge.Email] || challenge.MFACode != s.mfaCode {
		http.Error(w, "invalid code", http.StatusUnauthorized)
		return
	}
	delete(s.pendingMFA, challenge.Email)
	writeJSON(w, s.issueLocked())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	if s.rejectRefresh || !s.refreshTokens[body.RefreshToken] {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	delete(s.refreshTokens, body.RefreshToken)
	writeJSON(w, s.issueLocked())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutCalls++
	if token := bearer(r); token != "" {
		delete(s.accessTokens, token)
	}
	w.WriteHeader(s.logoutStatus)
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reposQueries = append(s.reposQueries, r.URL.Query())
	s.authorization = append(s.authorization, r.Header.Get("Authorization"))

	if s.rejectAccess || !s.accessTokens[bearer(r)] {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if s.reposStatus != 0 {
		http.Error(w, "forced failure", s.reposStatus)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = domain.PageSize
	}

	start := page * size
	end := start + size
	if start > len(s.repos) {
		start = len(s.repos)
	}
	if end > len(s.repos) {
		end = len(s.repos)
	}

	writeJSON(w, domain.RepoPage{
		Content:    s.repos[start:end],
		TotalCount: len(s.repos),
	})
}

func bearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
