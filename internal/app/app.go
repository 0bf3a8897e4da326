// Package app wires configuration, storage, the token subsystem and
// the HTTP server into one lifecycle.
package app

import (
	"context"
	"fmt"

	"tagme/pkg/banner"
	"tagme/pkg/config"
	"tagme/pkg/oauth"
	"tagme/pkg/store"
	"tagme/pkg/token"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     *config.Config
	addr    string
	version string

	srv *serverHandle
}

// New initializes resources that do not require a running context: the
// store, the token secret and the OAuth client. Call Run to start the
// HTTP server and block until shutdown.
func New(cfg *config.Config, addr, version string) (*App, error) {
	if cfg.OAuth.ClientID == "" || cfg.OAuth.ClientSecret == "" {
		return nil, fmt.Errorf("oauth client_id and client_secret are required")
	}
	cacheBytes, err := cfg.CacheBytes()
	if err != nil {
		return nil, err
	}
	if err := store.Open(cfg.Server.DBPath, cacheBytes); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Server.DBPath, err)
	}
	token.Init()

	return &App{cfg: cfg, addr: addr, version: version}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled or a
// fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	banner.Print(a.addr, a.cfg.Server.DBPath, a.version)
	errCh := a.startHTTP(ctx)
	select {
	case <-ctx.Done():
		a.stopHTTP()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases the store.
func (a *App) Close() error {
	return store.Close()
}

// OAuthClient builds the identity client from config.
func (a *App) OAuthClient() *oauth.Client {
	return oauth.NewClient(a.cfg.OAuth.ClientID, a.cfg.OAuth.ClientSecret)
}
