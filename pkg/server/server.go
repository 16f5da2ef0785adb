package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pommapper/pkg/buildinfo"
	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/index"
	"github.com/matzehuels/pommapper/pkg/observability"
)

// NoEntriesMessage is the body of an empty by-id result.
const NoEntriesMessage = "No entries found."

// Index answers by-id queries. [*index.Indexer] implements it.
type Index interface {
	Query(ctx context.Context, id string, q index.Query) ([]index.Group, error)
	Catalog() *catalog.Catalog
}

// Config configures a [Server].
type Config struct {
	Index    Index       // Required
	BasePath string      // Route prefix; catalog.DefaultBasePath when empty
	Logger   *log.Logger // Defaults to log.Default()
}

// Server is the HTTP query surface.
type Server struct {
	index  Index
	base   string
	logger *log.Logger
	router chi.Router
}

// New creates a Server and builds its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Index == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server: index is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{
		index:  cfg.Index,
		base:   normalizeBase(cfg.BasePath),
		logger: cfg.Logger.WithPrefix("http"),
	}
	s.router = s.routes()
	return s, nil
}

// BasePath returns the normalized route prefix.
func (s *Server) BasePath() string { return s.base }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	getHead := func(pattern string, h http.HandlerFunc) {
		r.Get(s.base+pattern, h)
		r.Head(s.base+pattern, h)
	}
	getHead("/id/{id}", s.handleByID)
	getHead("/repo/{repository}/*", s.handleByCoordinate)
	r.Get(s.base+"/health", s.handleHealth)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

func (s *Server) handleByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	q := ParseQuery(r.URL.Query())

	groups, err := s.index.Query(r.Context(), id, q)
	observability.Query().OnQuery(r.Context(), id, len(groups), time.Since(start), err)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Error("query failed", "id", id, "err", err)
		}
		s.writeError(w, err)
		return
	}

	if len(groups) == 0 {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNoContent)
		// net/http drops bodies of 204 responses on the wire.
		w.Write([]byte(NoEntriesMessage))
		return
	}
	s.writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleByCoordinate(w http.ResponseWriter, r *http.Request) {
	repo := chi.URLParam(r, "repository")
	path := chi.URLParam(r, "*")

	a, ok := s.index.Catalog().FindArtifact(repo, path)
	if !ok {
		observability.Query().OnRedirect(r.Context(), repo, path, "")
		s.writeError(w, errors.New(errors.ErrCodeArtifactNotFound, "no artifact at %s/%s", repo, path))
		return
	}
	observability.Query().OnRedirect(r.Context(), repo, path, a.ID)

	http.Redirect(w, r, redirectTarget(s.base, a.ID, r.URL.RawQuery), http.StatusTemporaryRedirect)
}

// RedirectTarget returns the by-id URL for id below basePath, carrying
// rawQuery over unchanged.
func RedirectTarget(basePath, id, rawQuery string) string {
	return redirectTarget(normalizeBase(basePath), id, rawQuery)
}

func redirectTarget(base, id, rawQuery string) string {
	target := base + "/id/" + url.PathEscape(id)
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Artifacts int    `json:"artifacts"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   buildinfo.Version,
		Artifacts: s.index.Catalog().Len(),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"took", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "status", status, "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, errors.HTTPStatus(err), errors.ToResponse(err))
}

// normalizeBase returns "/a/b" for "a/b/", and "" for "/".
func normalizeBase(base string) string {
	if base == "" {
		base = catalog.DefaultBasePath
	}
	base = strings.Trim(base, "/")
	if base == "" {
		return ""
	}
	return "/" + base
}
