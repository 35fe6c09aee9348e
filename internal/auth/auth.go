// Package auth resolves the GitHub token used by the collector.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoToken is returned when no credential source yields a token.
var ErrNoToken = errors.New(
	"no GitHub token: pass --token, set GITHUB_TOKEN, or run 'gh auth login'")

// Token resolves a GitHub token. An explicitly supplied token (from a flag
// or config) wins; otherwise GITHUB_TOKEN is consulted, then the gh CLI's
// stored credentials.
func Token(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t, nil
	}
	if t, err := ghCLIToken(); err == nil {
		return t, nil
	}
	return "", ErrNoToken
}

// ghCLIToken shells out to `gh auth token` so an already authenticated gh
// install works without any extra setup.
func ghCLIToken() (string, error) {
	out, err := exec.Command("gh", "auth", "token", "--hostname", "github.com").Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", errors.New("gh CLI not installed")
		}
		return "", fmt.Errorf("gh auth token: %w", err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", errors.New("gh auth token returned nothing")
	}
	return token, nil
}
