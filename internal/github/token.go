package github

import (
	"catalogdebug/internal/config"

	"github.com/samber/mo"
)

// EnvToken is the environment variable GitHub URL locations authenticate with.
const EnvToken = "GITHUB_TOKEN"

// IntegrationsKey is the config array holding GitHub integration entries.
const IntegrationsKey = "integrations.github"

type TokenSource string

const (
	TokenSourceNone   TokenSource = ""
	TokenSourceEnv    TokenSource = "env:GITHUB_TOKEN"
	TokenSourceConfig TokenSource = "config:integrations.github[0].token"
)

// TokenPresence reports whether a GitHub token is available. It never carries
// the token itself.
type TokenPresence struct {
	Set    bool
	Source TokenSource
}

// ResolveTokenPresence decides token presence.
//
// Precedence:
//  1. envToken (the value of GITHUB_TOKEN) if non-empty
//  2. the first integrations.github entry's token if non-empty
//
// Values are not trimmed; any non-empty string counts as set.
func ResolveTokenPresence(envToken string, integrationToken mo.Option[string]) TokenPresence {
	if envToken != "" {
		return TokenPresence{Set: true, Source: TokenSourceEnv}
	}
	if tok, ok := integrationToken.Get(); ok && tok != "" {
		return TokenPresence{Set: true, Source: TokenSourceConfig}
	}
	return TokenPresence{Set: false, Source: TokenSourceNone}
}

// DetectTokenPresence resolves token presence against cfg. The
// integrations.github array is always read, so a malformed array is reported
// either way. The first entry's token is only read when envToken is empty;
// later entries are ignored.
func DetectTokenPresence(cfg config.Config, envToken string) (TokenPresence, error) {
	list, err := cfg.OptionalConfigArray(IntegrationsKey)
	if err != nil {
		return TokenPresence{}, err
	}
	if envToken != "" {
		return ResolveTokenPresence(envToken, mo.None[string]()), nil
	}

	entries, ok := list.Get()
	if !ok || len(entries) == 0 {
		return ResolveTokenPresence("", mo.None[string]()), nil
	}
	token, err := entries[0].OptionalString("token")
	if err != nil {
		return TokenPresence{}, err
	}
	return ResolveTokenPresence("", token), nil
}
