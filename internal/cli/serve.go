package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slipmap/pkg/buildinfo"
	"github.com/matzehuels/slipmap/pkg/cache"
	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/pipeline"
	"github.com/matzehuels/slipmap/pkg/render/sink"
	"github.com/matzehuels/slipmap/pkg/slips"
	"github.com/matzehuels/slipmap/pkg/source"
)

const (
	defaultAddr     = ":8080"
	maxRequestBody  = 8 << 20
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second

	// apiSource names datasets posted to the API.
	apiSource = "api"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	opts := newOptions()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve aggregate, layout and render over HTTP",
		Long: `Serve aggregate, layout and render over HTTP.

Every endpoint takes a time-slip CSV table as the request body.

  GET  /healthz
  POST /v1/aggregate?key=task
  POST /v1/layout/{treemap|wordcloud}?key=&width=&height=
  POST /v1/render/{treemap|wordcloud}?key=&format=png&width=&height=&title=

Flags and the config file set the defaults for query parameters left out.
Cache entries are scoped under "api:" so they never mix with CLI runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.config.apply(&opts, cmd.Flags().Changed)
			opts.Logger = c.Logger
			probe := opts
			if err := probe.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), addr, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	addLayoutFlags(cmd, &opts)
	cmd.Flags().Float64Var(&opts.PNGScale, "png-scale", opts.PNGScale, "PNG pixel density")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, opts pipeline.Options) error {
	cc, err := c.openCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, "api:"), c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, c.Logger, opts).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr, "version", buildinfo.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// server handles API requests. Base options are copied per request and
// overridden by query parameters.
type server struct {
	runner *pipeline.Runner
	logger *log.Logger
	base   pipeline.Options
}

func newServer(runner *pipeline.Runner, logger *log.Logger, base pipeline.Options) *server {
	return &server{runner: runner, logger: logger, base: base}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/aggregate", s.handleAggregate)
		r.Post("/layout/{viz}", s.handleLayout)
		r.Post("/render/{viz}", s.handleRender)
	})
	return r
}

// logRequests attaches a request-scoped logger and logs each response.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("req", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), logger)))

		logger.Info("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "bytes", ww.BytesWritten(), "duration", time.Since(start).Round(time.Microsecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Current()})
}

func (s *server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	agg, hit, err := s.aggregate(w, r, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, agg)
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	l, hit, _, ok := s.layout(w, r)
	if !ok {
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, l)
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	l, layoutHit, opts, ok := s.layout(w, r)
	if !ok {
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	setCacheHeader(w, layoutHit && hit)
	w.Header().Set("Content-Type", sink.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// layout runs aggregate and layout for the {viz} route. It writes the
// error response itself and reports ok=false on failure.
func (s *server) layout(w http.ResponseWriter, r *http.Request) (layout.Layout, bool, pipeline.Options, bool) {
	viz := chi.URLParam(r, "viz")
	opts, err := s.requestOptions(r, viz)
	if err != nil {
		writeError(w, r, err)
		return layout.Layout{}, false, opts, false
	}
	agg, aggHit, err := s.aggregate(w, r, opts)
	if err != nil {
		writeError(w, r, err)
		return layout.Layout{}, false, opts, false
	}
	if agg.Values.Len() == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "no %s has a positive total", agg.Key))
		return layout.Layout{}, false, opts, false
	}

	meta := pipeline.Meta{Title: r.URL.Query().Get("title"), Key: agg.Key}
	l, hit, err := s.runner.GenerateLayoutWithCacheInfo(r.Context(), agg.Values, viz, meta, opts)
	if err != nil {
		writeError(w, r, err)
		return layout.Layout{}, false, opts, false
	}
	if len(l.Dropped) > 0 {
		loggerFromContext(r.Context()).Warn("dropped words", "count", len(l.Dropped))
	}
	return l, aggHit && hit, opts, true
}

func (s *server) aggregate(w http.ResponseWriter, r *http.Request, opts pipeline.Options) (pipeline.Aggregation, bool, error) {
	records, err := slips.ReadCSV(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return pipeline.Aggregation{}, false, err
	}
	ds := source.Dataset{Title: r.URL.Query().Get("title"), Source: apiSource, Records: records}
	agg, hit, err := s.runner.AggregateWithCacheInfo(r.Context(), ds, opts.Keys[0], opts)
	if err == nil && len(agg.Skipped) > 0 {
		loggerFromContext(r.Context()).Warn("skipped records", "count", len(agg.Skipped))
	}
	return agg, hit, err
}

// requestOptions copies the base options and applies query parameters.
// viz is empty for routes that do not lay out.
func (s *server) requestOptions(r *http.Request, viz string) (pipeline.Options, error) {
	opts := s.base
	opts.Logger = loggerFromContext(r.Context())
	q := r.URL.Query()

	key := q.Get("key")
	if key == "" {
		key = string(slips.KeyTask)
	}
	opts.Keys = []string{key}
	if err := opts.ValidateForAggregate(); err != nil {
		return opts, err
	}
	if viz == "" {
		return opts, nil
	}

	if err := layout.ValidateVizType(viz); err != nil {
		return opts, err
	}
	opts.VizTypes = []string{viz}
	width, height := &opts.TreemapWidth, &opts.TreemapHeight
	if viz == layout.VizTypeWordCloud {
		width, height = &opts.CloudWidth, &opts.CloudHeight
	}
	if err := queryFloat(q.Get("width"), width); err != nil {
		return opts, err
	}
	if err := queryFloat(q.Get("height"), height); err != nil {
		return opts, err
	}
	if v := q.Get("show_time"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "show_time: %q is not a boolean", v)
		}
		opts.ShowTime = b
	}
	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}

	opts.Formats = []string{sink.FormatPNG}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	opts.Titles = q.Get("title") != ""
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryFloat(v string, dst *float64) error {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "%q is not a number", v)
	}
	*dst = f
	return nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
		return
	}
	w.Header().Set("X-Cache", "MISS")
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	if status >= 500 {
		loggerFromContext(r.Context()).Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
