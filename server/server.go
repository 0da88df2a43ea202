/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/suparena/entityquery"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/logger"
)

// CorrelationHeader carries the correlation id of a request. A fresh id is
// generated when the client sends none.
const CorrelationHeader = "X-Correlation-ID"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes the Document repositories of a MultiTypeStorage as a read-only
// HTTP API.
type Server struct {
	repos  *entityquery.MultiTypeStorage
	router *mux.Router
	logger zerolog.Logger
}

// New creates a server over the Document repositories registered in repos.
func New(repos *entityquery.MultiTypeStorage, log zerolog.Logger) *Server {
	s := &Server{
		repos:  repos,
		router: mux.NewRouter(),
		logger: log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.correlation)
	s.router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	s.router.HandleFunc("/entities", s.handleEntityNames).Methods(http.MethodGet)
	s.router.HandleFunc("/entities/{name}", s.handleReadAll).Methods(http.MethodGet)
	s.router.HandleFunc("/entities/{name}/index/{index}", s.handleReadByIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/entities/{name}/{id}", s.handleReadOne).Methods(http.MethodGet)
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(CorrelationHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithCorrelationID(r.Context(), id)))
	})
}

func (s *Server) repository(w http.ResponseWriter, r *http.Request) (*entityquery.Repository[entityquery.Document], bool) {
	name := mux.Vars(r)["name"]
	repo, err := entityquery.GetRepository[entityquery.Document](s.repos, name)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return nil, false
	}
	return repo, true
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, entityquery.GetVersionInfo())
}

func (s *Server) handleEntityNames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string][]string{
		"entities": entityquery.ListRepositories[entityquery.Document](s.repos),
	})
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repository(w, r)
	if !ok {
		return
	}
	opts, err := parseReadOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	docs, err := repo.ReadAllEntities(r.Context(), opts)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, listResponse{Items: docs, Count: len(docs)})
}

func (s *Server) handleReadByIndex(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repository(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	opts, err := parseReadOptions(query)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	key, err := parseKey(query)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	docs, err := repo.ReadByIndex(r.Context(), mux.Vars(r)["index"], key, opts)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, listResponse{Items: docs, Count: len(docs)})
}

func (s *Server) handleReadOne(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repository(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	doc, err := repo.ReadEntity(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if doc == nil {
		s.writeError(w, r, http.StatusNotFound, stderrors.New("entity not found"))
		return
	}
	s.writeJSON(w, r, http.StatusOK, *doc)
}

type listResponse struct {
	Items []entityquery.Document `json:"items"`
	Count int                    `json:"count"`
}

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId"`
}

// writeStoreError maps repository failures: bad input is the client's fault, a
// failing store is a bad gateway.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.IsContractViolation(err):
		s.writeError(w, r, http.StatusBadRequest, err)
	case errors.IsStoreError(err):
		s.writeError(w, r, http.StatusBadGateway, err)
	default:
		s.writeError(w, r, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	id := logger.CorrelationID(r.Context())
	s.logger.Warn().
		Str("correlation_id", id).
		Str("path", r.URL.Path).
		Int("status", status).
		Err(err).
		Msg("request failed")
	s.writeJSON(w, r, status, errorResponse{Error: err.Error(), CorrelationID: id})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write response")
	}
}
