package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tagme/pkg/api"
	"tagme/pkg/logger"
	"tagme/pkg/store"
	"tagme/pkg/token"
)

type serverHandle struct {
	srv *http.Server
}

// readyzHandler handles the /readyz endpoint.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","version":"` + ver + `"}`))
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// startHTTP builds the handler stack, starts the HTTP server in a
// goroutine and returns a channel carrying any fatal server error.
func (a *App) startHTTP(_ context.Context) <-chan error {
	srv := api.New(a.OAuthClient(), a.cfg.Security.BootstrapAdmins)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/readyz", a.readyzHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", token.Middleware(srv.Router()))

	gwCfg := api.GatewayConfig{
		AllowedOrigins: append([]string{}, a.cfg.Security.CORS.AllowedOrigins...),
		RPS:            a.cfg.Security.RateLimit.RPS,
		Burst:          a.cfg.Security.RateLimit.Burst,
	}
	wrapped := api.Gateway(gwCfg)(mux)

	a.srv = &serverHandle{srv: &http.Server{Addr: a.addr, Handler: wrapped}}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", a.addr)
		var err error
		if a.cfg.Server.TLS.CertFile != "" && a.cfg.Server.TLS.KeyFile != "" {
			err = a.srv.srv.ListenAndServeTLS(a.cfg.Server.TLS.CertFile, a.cfg.Server.TLS.KeyFile)
		} else {
			err = a.srv.srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

func (a *App) stopHTTP() {
	if a.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.srv.Shutdown(ctx); err != nil {
		logger.Warn("http_shutdown_failed", "error", err)
	}
}
