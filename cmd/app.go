package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/kennyg/lore/internal/provider"
	"github.com/kennyg/lore/internal/research"
	"github.com/kennyg/lore/internal/slug"
	"github.com/kennyg/lore/internal/store"
	"github.com/kennyg/lore/internal/ui"
)

// app bundles the stores and the service for one command run
type app struct {
	cache   *store.CacheStore
	docs    *store.DocsStore
	service *research.Service
}

// openApp wires the stores and the service from cfg. The research backend is
// only built when withResearcher is set, so read-only commands work without
// provider credentials.
func openApp(withResearcher bool) *app {
	a, err := newApp(withResearcher)
	if err != nil {
		exitWithError(err.Error())
	}
	return a
}

func newApp(withResearcher bool) (*app, error) {
	storeOpts := []store.Option{
		store.WithLogger(logger.Named("store")),
		store.WithRecoveryHook(recoveryNotice(os.Stderr)),
	}
	cache := store.NewCacheStore(cfg.CacheDir, storeOpts...)
	docs := store.NewDocsStore(cfg.DocsDir, storeOpts...)

	normalizer, err := slug.NewNormalizer(cfg.Aliases)
	if err != nil {
		return nil, fmt.Errorf("aliases: %w", err)
	}

	var researcher research.Researcher
	if withResearcher {
		researcher, err = provider.New(cfg.Provider, logger)
		if err != nil {
			return nil, err
		}
	}

	service, err := research.New(research.Options{
		Cache:      cache,
		Docs:       docs,
		Researcher: researcher,
		Normalizer: normalizer,
		TTL:        cfg.TTL.Std(),
		Timeout:    cfg.Timeout.Std(),
		Logger:     logger.Named("research"),
	})
	if err != nil {
		return nil, err
	}
	return &app{cache: cache, docs: docs, service: service}, nil
}

// recoveryNotice reports a rebuilt index on w. It must not be stdout, which
// carries --format json output.
func recoveryNotice(w io.Writer) func(error) {
	return func(err error) {
		fmt.Fprintln(w, ui.WarningLine(err.Error()))
	}
}

// describeError turns service errors into a message with a hint
func describeError(err error) string {
	switch {
	case errors.Is(err, research.ErrInvalidTopic):
		return fmt.Sprintf("%v (a topic needs at least one letter or digit)", err)
	case errors.Is(err, research.ErrNotFound):
		return fmt.Sprintf("%v (see `lore list`)", err)
	case errors.Is(err, research.ErrResearchTimeout):
		return fmt.Sprintf("%v (raise `timeout` in the config)", err)
	default:
		return err.Error()
	}
}

// fail logs err in full and exits with the short description
func fail(action string, err error) {
	logger.Debug(action+" failed", zap.Error(err))
	exitWithError(describeError(err))
}
