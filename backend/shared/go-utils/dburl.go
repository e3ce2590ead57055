package utils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Postgres truncates identifiers past this length.
const maxRoleNameLen = 63

var roleNameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// IsolatedRoleName builds the per-run schema owner role. Each CI run gets
// its own role so parallel runs never share tables.
func IsolatedRoleName(runnerID, runNumber string) (string, error) {
	if runnerID == "" || runNumber == "" {
		return "", errors.New("runnerID and runNumber must be non-empty")
	}
	role := roleNameUnsafe.ReplaceAllString(strings.ToLower(runnerID+"_"+runNumber), "_")
	if len(role) > maxRoleNameLen {
		role = role[:maxRoleNameLen]
	}
	return role, nil
}

// WithIsolatedRole swaps the user of baseURL for the isolated role and
// keeps the password.
func WithIsolatedRole(baseURL, runnerID, runNumber string) (string, error) {
	role, err := IsolatedRoleName(runnerID, runNumber)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DB URL: %w", err)
	}
	if u.User == nil {
		u.User = url.User(role)
		return u.String(), nil
	}
	if password, ok := u.User.Password(); ok {
		u.User = url.UserPassword(role, password)
	} else {
		u.User = url.User(role)
	}
	return u.String(), nil
}
