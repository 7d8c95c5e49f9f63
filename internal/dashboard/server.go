// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/staranto/clientdash/internal/access"
	"github.com/staranto/clientdash/internal/report"
	"github.com/staranto/clientdash/internal/session"
)

// CookieName is the session cookie.
const CookieName = "clientdash_session"

// Server is the dashboard's HTTP API.
type Server struct {
	Access   *access.Table
	Reports  *report.Service
	Sessions *session.Manager
	Metrics  *Metrics
	// Origins allowed to make credentialed cross-origin requests.
	Origins []string
	// Secure marks the session cookie Secure.
	Secure bool
}

// Handler returns the routed, CORS wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	if s.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireSession)
	api.HandleFunc("/clients", s.clients).Methods(http.MethodGet)
	api.HandleFunc("/clients/{client}/datasets/{dataset}", s.dataset).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)
	api.HandleFunc("/cache", s.cacheStats).Methods(http.MethodGet)

	r.Use(s.logging)
	r.Use(recovery)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.Origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd
		ReadTimeout:       15 * time.Second, //nolint:mnd
		IdleTimeout:       60 * time.Second, //nolint:mnd
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("dashboard listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("dashboard shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
