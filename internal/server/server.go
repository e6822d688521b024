package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type Action string

type Method string

const (
	Data Action = "data"
	Api  Action = "api"

	GET  Method = "GET"
	POST Method = "POST"
)

// Handler produces the response payload and status code for a request.
type Handler func(r *http.Request) ([]byte, int, error)

// Route binds a handler to '/<action>/<path>'.
type Route struct {
	Action Action
	Path   string
	Method Method
	Exec   Handler
}

// Server is a small http server for status and metrics endpoints.
type Server struct {
	name   string
	addr   string
	debug  bool
	mux    *http.ServeMux
	routes []Route
}

// NewServer creates a new server listening on the given address.
func NewServer(name string, addr string) *Server {
	return &Server{
		name:   name,
		addr:   addr,
		mux:    http.NewServeMux(),
		routes: make([]Route, 0),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// AddRoute adds a route for the given handler.
func (s *Server) AddRoute(method Method, action Action, path string, exec Handler) *Server {
	return s.Add(Route{
		Action: action,
		Path:   path,
		Method: method,
		Exec:   exec,
	})
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	for _, r := range route {
		s.mux.HandleFunc(r.pattern(), s.handle(r))
	}
	return s
}

// Handle mounts a plain http handler on the given pattern.
func (s *Server) Handle(pattern string, handler http.Handler) *Server {
	s.mux.Handle(pattern, handler)
	return s
}

// Handler returns the http handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (r Route) pattern() string {
	if r.Path != "" {
		return fmt.Sprintf("/%s/%s", r.Action, r.Path)
	}
	return fmt.Sprintf("/%s", r.Action)
}

func (s *Server) handle(route Route) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if Method(r.Method) != route.Method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		b, code, err := route.Exec(r)
		if err != nil {
			s.error(w, err)
		} else {
			s.respond(w, b, code)
		}
		if s.debug {
			log.Debug().
				Str("server", s.name).
				Str("route", route.pattern()).
				Int("code", code).
				Dur("duration", time.Since(start)).
				Msg("served request")
		}
	}
}

// Run serves until the context is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Str("server", s.name).Msg("could not shut down server")
		}
	}()

	log.Info().Str("server", s.name).Str("addr", s.addr).Int("routes", len(s.routes)).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) respond(w http.ResponseWriter, b []byte, code int) {
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	if _, err := w.Write(b); err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, err error) {
	log.Error().Err(err).Str("server", s.name).Msg("error for http request")
	s.respond(w, []byte(err.Error()), http.StatusInternalServerError)
}

// Live is a liveness route.
func Live() Route {
	return Route{
		Action: Data,
		Method: GET,
		Exec: func(r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, http.StatusOK, nil
		},
	}
}

// Json encodes the value as a json response.
func Json(v interface{}) ([]byte, int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, 0, fmt.Errorf("could not encode response: %w", err)
	}
	return b, http.StatusOK, nil
}
