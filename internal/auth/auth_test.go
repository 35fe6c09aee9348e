package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_ExplicitWins(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_from_env")

	token, err := Token("ghp_from_flag")

	require.NoError(t, err)
	assert.Equal(t, "ghp_from_flag", token)
}

func TestToken_EnvFallback(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_from_env")

	token, err := Token("")

	require.NoError(t, err)
	assert.Equal(t, "ghp_from_env", token)
}

func TestToken_NoSource(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("PATH", t.TempDir()) // no gh binary reachable

	token, err := Token("")

	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, token)
}
