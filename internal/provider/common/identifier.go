package common

import (
	"fmt"
	"strings"
)

// ParseRepositoryName splits an "owner/name" full name.
func ParseRepositoryName(fullName string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: expected 'owner/name', got '%s'", ErrInvalidRepository, fullName)
	}

	owner = parts[0]
	name = parts[1]
	if owner == "" || name == "" {
		return "", "", fmt.Errorf("%w: owner and name must be non-empty", ErrInvalidRepository)
	}

	return owner, name, nil
}
