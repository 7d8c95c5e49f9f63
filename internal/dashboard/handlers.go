// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gorilla/mux"

	"github.com/staranto/clientdash/internal/access"
	"github.com/staranto/clientdash/internal/datasets"
	"github.com/staranto/clientdash/internal/output"
	"github.com/staranto/clientdash/internal/report"
	"github.com/staranto/clientdash/internal/session"
	"github.com/staranto/clientdash/internal/source"
)

type ctxKey struct{}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKey{}).(*session.Session)
	return s
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func respondError(w http.ResponseWriter, code int, err error) {
	respondJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// maxLoginBytes caps the login request body.
const maxLoginBytes = 4 << 10

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	body := http.MaxBytesReader(w, r.Body, maxLoginBytes)
	if err := json.NewDecoder(body).Decode(&c); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, errors.New("login request too large"))
			return
		}
		respondError(w, http.StatusBadRequest, errors.New("invalid login request"))
		return
	}

	user, err := s.Access.Authenticate(c.Username, c.Password)
	if err != nil {
		log.WithField("user", c.Username).Warn("login failed")
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	sess := s.Sessions.Start(user)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		_ = s.Sessions.End(c.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

type overview struct {
	User    string          `json:"user"`
	Clients []report.Client `json:"clients"`
}

func (s *Server) clients(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	respondJSON(w, http.StatusOK, overview{
		User:    sess.User.Name,
		Clients: s.Reports.Overview(sess.User),
	})
}

type datasetResponse struct {
	Client  string           `json:"client"`
	Dataset string           `json:"dataset"`
	Sheet   string           `json:"sheet"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	vars := mux.Vars(r)
	client, dataset := vars["client"], vars["dataset"]

	tbl, err := s.Reports.Load(r.Context(), sess.Cache, sess.User, client, dataset)
	if err != nil {
		respondError(w, loadStatus(err), err)
		return
	}

	q := r.URL.Query()
	res, err := output.Slice(tbl, output.Options{
		Attrs:  q.Get("attrs"),
		Filter: q.Get("filter"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, datasetResponse{
		Client:  client,
		Dataset: dataset,
		Sheet:   tbl.Sheet,
		Columns: res.Columns,
		Rows:    res.Rows,
	})
}

// loadStatus maps a report.Load error to an HTTP status.
func loadStatus(err error) int {
	switch {
	case errors.Is(err, access.ErrClientNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, datasets.ErrUnknownClient),
		errors.Is(err, datasets.ErrUnknownDataset),
		errors.Is(err, source.ErrSheetNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	q := r.URL.Query()
	client, dataset := q.Get("client"), q.Get("dataset")

	if (client == "") != (dataset == "") {
		respondError(w, http.StatusBadRequest, errors.New("client and dataset go together"))
		return
	}
	if client != "" && !sess.User.Permits(client) {
		respondError(w, http.StatusForbidden, access.ErrClientNotPermitted)
		return
	}

	report.Refresh(sess.Cache, client, dataset)
	log.WithField("user", sess.User.Name).WithField("client", client).Debug("refreshed")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionFrom(r.Context()).Cache.Stats())
}
