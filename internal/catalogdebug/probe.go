// Package catalogdebug logs the configured catalog locations and GitHub token
// presence once at startup, to help debug catalog loading.
package catalogdebug

import (
	"context"
	"fmt"

	"catalogdebug/internal/config"
	"catalogdebug/internal/github"
	"catalogdebug/internal/lifecycle"
	"catalogdebug/internal/logging"

	"github.com/samber/mo"
)

const (
	PluginID = "catalog"
	ModuleID = "catalog-debug"

	LocationsKey = "catalog.locations"
)

// Getenv reads one environment variable; os.Getenv in production.
type Getenv func(key string) string

// LocationEntry is one catalog.locations item.
type LocationEntry struct {
	Type   mo.Option[string]
	Target mo.Option[string]
}

// String renders the entry the way it is logged. An absent type prints as
// "undefined", an absent target as "(none)".
func (e LocationEntry) String() string {
	return fmt.Sprintf("type=%s target=%s", e.Type.OrElse("undefined"), e.Target.OrElse("(none)"))
}

// Run logs what the config says about catalog locations and GitHub
// credentials. It never returns an error or panics: read failures become a
// single warning.
func Run(cfg config.Config, logger logging.Logger, getenv Getenv) {
	log := logger.Child(map[string]string{"module": ModuleID})

	if err := probe(cfg, log, getenv); err != nil {
		log.Warn("Could not read catalog config for debug", logging.Fields{"error": err.Error()})
	}
}

func probe(cfg config.Config, log logging.Logger, getenv Getenv) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	locations, err := cfg.OptionalConfigArray(LocationsKey)
	if err != nil {
		return err
	}
	entries := locations.OrEmpty()
	log.Info(fmt.Sprintf("Catalog locations in config: %d", len(entries)))
	for i, loc := range entries {
		entry, err := readLocation(loc)
		if err != nil {
			return err
		}
		log.Info(fmt.Sprintf("  [%d] %s", i, entry))
	}

	envToken := ""
	if getenv != nil {
		envToken = getenv(github.EnvToken)
	}
	presence, err := github.DetectTokenPresence(cfg, envToken)
	if err != nil {
		return err
	}
	if presence.Set {
		log.Info("GITHUB_TOKEN (or integrations.github token) is set")
	} else {
		log.Warn("GITHUB_TOKEN not set - GitHub URL locations may fail (404/403 for private repos)")
	}
	return nil
}

func readLocation(loc config.Config) (LocationEntry, error) {
	typ, err := loc.OptionalString("type")
	if err != nil {
		return LocationEntry{}, err
	}
	target, err := loc.OptionalString("target")
	if err != nil {
		return LocationEntry{}, err
	}
	return LocationEntry{Type: typ, Target: target}, nil
}

// Hook returns the startup callback that runs the probe.
func Hook(cfg config.Config, logger logging.Logger, getenv Getenv) lifecycle.Hook {
	return func(ctx context.Context) error {
		Run(cfg, logger, getenv)
		return nil
	}
}
