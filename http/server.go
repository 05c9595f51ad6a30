// Package http serves the browser client and the simulation websocket.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"path/filepath"
	"time"

	"github.com/esimov/stable-fluid/config"
)

// Params holds the address to listen on and the directory served under Prefix.
type Params struct {
	Address string
	Prefix  string
	Root    string
}

// FromConfig copies the server section into Params.
func FromConfig(c config.ServerConfig) Params {
	return Params{
		Address: c.Address,
		Prefix:  c.Prefix,
		Root:    c.Root,
	}
}

// Handler routes /ws to ws and everything under Prefix to the static files
// in Root. Every request is logged.
func Handler(p Params, ws nethttp.Handler, logger *slog.Logger) (nethttp.Handler, error) {
	root, err := filepath.Abs(p.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	prefix := p.Prefix
	if prefix == "" {
		prefix = "/"
	}

	mux := nethttp.NewServeMux()
	mux.Handle(prefix, nethttp.StripPrefix(prefix, nethttp.FileServer(nethttp.Dir(root))))
	mux.Handle("/ws", ws)

	logger.Info("serving files", "root", root, "prefix", prefix)
	return logRequests(mux, logger), nil
}

func logRequests(next nethttp.Handler, logger *slog.Logger) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		logger.Debug("request", "remote", r.RemoteAddr, "method", r.Method, "url", r.URL.String())
		next.ServeHTTP(w, r)
	})
}

// Serve listens on p.Address until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, p Params, h nethttp.Handler, logger *slog.Logger) error {
	srv := &nethttp.Server{
		Addr:              p.Address,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", p.Address)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}
