package http

import (
	"context"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"trenerka/internal/cache"
	"trenerka/internal/core"
	applog "trenerka/internal/log"
	"trenerka/internal/metrics"
	"trenerka/internal/middleware/ratelimit"
	"trenerka/internal/middleware/security"
	"trenerka/internal/middleware/trace"
	appweb "trenerka/web"
)

// Journal is what the handlers need from the journal service.
type Journal interface {
	UpdateDraftField(ctx context.Context, field, value string) error
	Draft(ctx context.Context) (core.Draft, error)
	AddSession(ctx context.Context) (core.Session, error)
	Sessions(ctx context.Context, filter string) ([]core.Session, error)
	SessionCount(ctx context.Context) (int, error)
	WeeklyTotals(ctx context.Context) (core.WeeklySummary, error)
	ExportWorkbook(ctx context.Context, w io.Writer) error
}

type Options struct {
	RateLimitPerMinute int
	Metrics            *metrics.Recorder
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	journal   Journal
	logger    *applog.Logger
	started   time.Time

	// chartPages holds rendered chart pages keyed by session count.
	chartPages *cache.LRU[[]byte]

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server.
func NewServer(addr string, journal Journal, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		journal:          journal,
		logger:           logger,
		started:          time.Now(),
		chartPages:       cache.NewLRU[[]byte](4, 10*time.Minute),
		securityDetector: detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
		traceMiddleware: trace.NewMiddleware(detector.ExtractClientIP, logger),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /draft", s.handleUpdateDraft)
	mux.HandleFunc("POST /sessions", s.handleAddSession)
	mux.HandleFunc("GET /ui/sessions", s.handleSessionList)
	mux.HandleFunc("GET /ui/chart", s.handleChart)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	if opts.Metrics != nil {
		s.registerMiddlewareMetrics(opts.Metrics)
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = s.limitWrites(handler)
	handler = s.detectSuspicious(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// registerMiddlewareMetrics publishes the middleware counters and the chart
// cache hit count on the recorder.
func (s *Server) registerMiddlewareMetrics(m *metrics.Recorder) {
	m.CounterFunc("http_requests_total", "HTTP requests served.", func() float64 {
		return float64(s.traceMiddleware.GetMetrics().TotalRequests)
	})
	m.GaugeFunc("http_last_request_duration_seconds", "Duration of the most recent request.", func() float64 {
		return float64(s.traceMiddleware.GetMetrics().LastDurationUs) / 1e6
	})
	m.CounterFunc("http_rate_limited_total", "POST requests rejected by the rate limiter.", func() float64 {
		return float64(s.rateLimiter.GetMetrics().Rejected)
	})
	m.GaugeFunc("rate_limit_clients", "Clients tracked by the rate limiter.", func() float64 {
		return float64(s.rateLimiter.GetMetrics().ClientCount)
	})
	m.CounterFunc("http_suspicious_requests_total", "Requests flagged as probing.", func() float64 {
		return float64(s.securityDetector.GetMetrics().SuspiciousRequests)
	})
	m.CounterFunc("chart_cache_hits_total", "Chart pages served from cache.", func() float64 {
		return float64(s.chartPages.Stats().Hits)
	})
	m.CounterFunc("chart_cache_misses_total", "Chart pages rendered on a cache miss.", func() float64 {
		return float64(s.chartPages.Stats().Misses)
	})
	m.GaugeFunc("chart_cache_entries", "Rendered chart pages held in cache.", func() float64 {
		return float64(s.chartPages.Stats().Size)
	})
}

// limitWrites applies the per-client rate limit to POST requests only.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP,
		func(w http.ResponseWriter, r *http.Request) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
				WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
					applog.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "Слишком много запросов. Попробуйте позже.").Write(w)
		})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// detectSuspicious logs probing requests; they are still served.
func (s *Server) detectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).
				WarnContext(r.Context(), "Suspicious request",
					applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path,
					applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background goroutines and the HTTP server. Later calls
// return nil.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
