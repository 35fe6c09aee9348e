package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// knownBots are automation accounts that do not carry the "[bot]" suffix but
// should still never appear in contribution statistics.
var knownBots = map[string]struct{}{
	"github-actions":  {},
	"dependabot":      {},
	"renovate":        {},
	"greenkeeper":     {},
	"snyk-bot":        {},
	"codecov":         {},
	"imgbot":          {},
	"allcontributors": {},
}

// BotFilter decides whether a login belongs to an automation account.
// One filter instance is shared between the collector and the aggregation
// engine so commit authors and reviewers are judged by the same rules.
type BotFilter struct {
	patterns []*regexp.Regexp
}

// NewBotFilter compiles the given extra patterns on top of the builtin
// rules. Patterns match anywhere in the login, mirroring regexp.FindString.
func NewBotFilter(patterns ...string) (*BotFilter, error) {
	f := &BotFilter{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile bot pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// IsBot reports whether login matches the bot rules: the "[bot]" suffix,
// a known automation account name, or any configured pattern.
func (f *BotFilter) IsBot(login string) bool {
	if strings.HasSuffix(login, "[bot]") {
		return true
	}
	if _, ok := knownBots[strings.ToLower(login)]; ok {
		return true
	}
	if f == nil {
		return false
	}
	for _, re := range f.patterns {
		if re.MatchString(login) {
			return true
		}
	}
	return false
}
