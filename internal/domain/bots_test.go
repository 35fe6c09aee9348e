package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotFilter_SuffixAndKnownAccounts(t *testing.T) {
	f, err := NewBotFilter()
	require.NoError(t, err)

	assert.True(t, f.IsBot("dependabot[bot]"))
	assert.True(t, f.IsBot("anything[bot]"))
	assert.True(t, f.IsBot("github-actions"))
	assert.True(t, f.IsBot("Renovate"), "known accounts match case-insensitively")

	assert.False(t, f.IsBot("alice"))
	assert.False(t, f.IsBot("botanist"), "substring 'bot' alone is not a bot")
}

func TestBotFilter_ConfiguredPatterns(t *testing.T) {
	f, err := NewBotFilter(`^ci-`, `-release$`)
	require.NoError(t, err)

	assert.True(t, f.IsBot("ci-runner"))
	assert.True(t, f.IsBot("acme-release"))
	assert.False(t, f.IsBot("runner-ci-ish"))
}

func TestBotFilter_BadPattern(t *testing.T) {
	_, err := NewBotFilter(`[`)
	assert.Error(t, err)
}

func TestBotFilter_NilKeepsBuiltinRules(t *testing.T) {
	var f *BotFilter
	assert.True(t, f.IsBot("dependabot[bot]"))
	assert.False(t, f.IsBot("alice"))
}

func TestSortOrderToggle(t *testing.T) {
	assert.Equal(t, Ascending, Descending.Toggle())
	assert.Equal(t, Descending, Ascending.Toggle())
}
