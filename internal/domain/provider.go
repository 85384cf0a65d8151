package domain

import "context"

type RepoSource interface {
	ListRepositories(ctx context.Context, page PageRequest) (*RepoPage, error)
}

type DetailsSource interface {
	GetDetails(ctx context.Context, fullName string) (*RepoDetails, error)
}
