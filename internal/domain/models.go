package domain

import "time"

// PageSize is the fixed number of repositories requested per page.
const PageSize = 10

type Phase string

const (
	PhaseAuth  Phase = "auth"
	PhaseMFA   Phase = "mfa"
	PhaseRepos Phase = "repos"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseAuth, PhaseMFA, PhaseRepos:
		return true
	default:
		return false
	}
}

type AuthMode string

const (
	AuthModeLogin    AuthMode = "login"
	AuthModeRegister AuthMode = "register"
)

// Session is the token pair issued after MFA verification. An empty
// AccessToken means the user is logged out.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

func (s Session) HasRefreshToken() bool {
	return s.RefreshToken != ""
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type MFAChallenge struct {
	Email   string `json:"email"`
	MFACode string `json:"mfaCode"`
}

type RepositoryRecord struct {
	FullName    string `json:"fullName"`
	URL         string `json:"url"`
	Stars       int    `json:"stars"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

type RepoPage struct {
	Content    []RepositoryRecord `json:"content"`
	TotalCount int                `json:"totalCount"`
}

type PageRequest struct {
	Index int
	Size  int
}

// PageCount returns ceil(total/size); zero when there is nothing to show.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

type RepoDetails struct {
	FullName      string
	Forks         int
	OpenIssues    int
	Watchers      int
	Topics        []string
	DefaultBranch string
	License       string
	Homepage      string
	PushedAt      time.Time
}
