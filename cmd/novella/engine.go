package main

import (
	"fmt"

	"github.com/aretw0/novella"
	"github.com/aretw0/novella/pkg/adapters/file"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/persistence/middleware"
	"github.com/aretw0/novella/pkg/ports"
)

// contentDir returns the first positional argument, or the configured content directory.
func contentDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return appConfig.ContentDir
}

// buildEngine loads the story with the process configuration.
func buildEngine(dir string, hooks ...domain.LifecycleHooks) (*novella.Engine, error) {
	opts := []novella.Option{
		novella.WithLogger(appLogger),
		novella.WithContentVersion(appConfig.ContentVersion),
		novella.WithDefaultLocale(appConfig.DefaultLocale),
	}
	for _, h := range hooks {
		opts = append(opts, novella.WithLifecycleHooks(h))
	}
	eng, err := novella.New(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load story from %s: %w", dir, err)
	}
	return eng, nil
}

// localStore opens the on-disk session store used by play, graph and session.
func localStore() (ports.SessionStore, error) {
	dir := appConfig.SessionDir
	if dir == "" {
		dir = file.DefaultDir
	}
	return encrypt(file.New(dir))
}

// encrypt wraps store with AES-GCM when a session key is configured.
func encrypt(store ports.SessionStore) (ports.SessionStore, error) {
	key, err := appConfig.EncryptionKey()
	if err != nil || key == nil {
		return store, err
	}
	return middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: key,
	})), nil
}
