package mockapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type ctxKey string

const userKey ctxKey = "user"

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "api_version": APIVersion})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/auth/token/login/", s.handleLogin).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/api/v1/auth/token/logout/", s.handleLogout).Methods(http.MethodPost)

	for _, c := range s.collections {
		v := c.variant
		name := v.Name
		authed.HandleFunc(v.ExercisePath, s.withCollection(name, s.handleExercise)).Methods(http.MethodPost)
		authed.HandleFunc(v.ProgressPath, s.withCollection(name, s.handleProgress)).Methods(http.MethodPost)
		authed.HandleFunc(v.ItemsPath, s.withCollection(name, s.handleList)).Methods(http.MethodGet)
		authed.HandleFunc(v.ItemsPath, s.withCollection(name, s.handleCreate)).Methods(http.MethodPost)
		itemPath := strings.TrimRight(v.ItemsPath, "/") + "/{id:[0-9]+}/"
		authed.HandleFunc(itemPath, s.withCollection(name, s.handleDelete)).Methods(http.MethodDelete)
	}
	return r
}

// requestIDMiddleware echoes the client's X-Request-ID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware rejects requests without a valid "Token <t>" header.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		s.mu.Lock()
		user, found := s.tokens[token]
		s.mu.Unlock()
		if !found {
			writeDetail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type collectionHandler func(w http.ResponseWriter, r *http.Request, c *collection)

// withCollection resolves the named collection under the server lock.
func (s *Server) withCollection(name string, h collectionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c := s.collection(name)
		if c == nil {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		h(w, r, c)
	}
}
