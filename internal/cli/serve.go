package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/specdex/specdex/pkg/errors"
	"github.com/specdex/specdex/pkg/specs"
)

// serveCommand creates the serve command, a read-only HTTP veneer over the
// query surface for local tooling.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve search, suggest, and list over a local HTTP API",
		Long: `Serve exposes the query surface as JSON endpoints:

  GET /v1/search?name=<name>&constraint=<c>&prerelease=1&latest=1
  GET /v1/suggest?q=<name>
  GET /v1/list?type=<latest|released|complete|prerelease>

The server is read-only: it never mutates anything except the spec cache
the engine maintains anyway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.newFetcher()
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), addr, f)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8217", "listen address")

	return cmd
}

func (c *CLI) serve(ctx context.Context, addr string, f *specs.Fetcher) error {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	api := &apiServer{fetcher: f}
	r.Get("/v1/search", api.handleSearch)
	r.Get("/v1/suggest", api.handleSuggest)
	r.Get("/v1/list", api.handleList)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("Serving on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

type apiServer struct {
	fetcher *specs.Fetcher
}

// tupleJSON is the wire shape of one release.
type tupleJSON struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Platform string `json:"platform,omitempty"`
	Source   string `json:"source"`
}

type searchResponse struct {
	Matches          []tupleJSON `json:"matches"`
	MissingPlatforms []string    `json:"missing_platforms,omitempty"`
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dep, err := specs.NewDependency(q.Get("name"), q.Get("constraint"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dep.Prerelease = boolParam(q.Get("prerelease"))
	dep.Latest = boolParam(q.Get("latest"))

	matches, mismatch, err := s.fetcher.Search(r.Context(), *dep, true)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	resp := searchResponse{Matches: make([]tupleJSON, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, tupleJSON{
			Name:     m.Tuple.Name,
			Version:  m.Tuple.Version,
			Platform: m.Tuple.Platform.String(),
			Source:   m.Source.String(),
		})
	}
	if mismatch != nil {
		for _, p := range mismatch.Platforms {
			resp.MissingPlatforms = append(resp.MissingPlatforms, p.String())
		}
	}
	writeJSON(w, resp)
}

func (s *apiServer) handleSuggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "missing q parameter"))
		return
	}
	names, err := s.fetcher.Suggest(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, map[string][]string{"suggestions": names})
}

func (s *apiServer) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := specs.ParseQueryType(orDefault(r.URL.Query().Get("type"), "latest"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	listing, err := s.fetcher.List(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	out := make(map[string][]tupleJSON, len(listing))
	for _, src := range s.fetcher.Sources() {
		rows := make([]tupleJSON, 0, len(listing[src]))
		for _, t := range listing[src] {
			rows = append(rows, tupleJSON{Name: t.Name, Version: t.Version, Platform: t.Platform.String()})
		}
		out[src.String()] = rows
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

func boolParam(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
