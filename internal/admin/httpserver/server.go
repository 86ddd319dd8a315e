package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	custommw "github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/ui"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
	"github.com/faithfulaborisade1/kilkennyquads/public"
)

// RequestTimeout bounds a single admin request, including every store call a
// save makes.
const RequestTimeout = 60 * time.Second

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address          string
	BasePath         string
	Environment      string
	Authenticator    custommw.Authenticator
	Sessions         custommw.SessionStore
	Editors          *editor.Registry
	Paths            editor.Paths
	Logger           *zap.Logger
	CSRFCookieName   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	if cfg.Authenticator == nil {
		panic("httpserver: authenticator is required")
	}
	if cfg.Sessions == nil {
		panic("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.RequestLogger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(RequestTimeout))

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("embed static", zap.Error(err))
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := joinBase(basePath, "/login")

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator: cfg.Authenticator,
		Sessions:      cfg.Sessions,
		LoginPath:     loginPath,
		Environment:   cfg.Environment,
		Handlers:      ui.New(ui.Dependencies{Editors: cfg.Editors, Paths: cfg.Paths}),
		Editors:       cfg.Editors,
		CSRF: custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			CookiePath: basePath,
			HeaderName: cfg.CSRFHeaderName,
			Secure:     cfg.CSRFCookieSecure,
		},
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: writeTimeout(cfg.WriteTimeout),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
		ErrorLog:     zap.NewStdLog(logger),
	}
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	Sessions      custommw.SessionStore
	LoginPath     string
	Environment   string
	Handlers      *ui.Handlers
	Editors       *editor.Registry
	CSRF          custommw.CSRFConfig
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	auth := newAuthHandlers(opts.Authenticator, opts.Editors, base, opts.LoginPath)
	h := opts.Handlers

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.Environment(opts.Environment))
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get("/login", auth.LoginForm)
		r.Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

			r.Get("/", h.ProductsPage)
			r.Post("/products/new", h.ProductNew)
			r.Post("/products/close", h.ProductClose)
			r.Get("/products/{productID}/edit", h.ProductEdit)
			r.Post("/products/{productID}", h.ProductSave)
			r.Post("/products/{productID}/features", h.ProductFeatures)
			r.Post("/products/{productID}/toggle", h.ProductToggle)
			r.Get("/products/{productID}/delete", h.ProductDeleteConfirm)
			r.Post("/products/{productID}/delete", h.ProductDelete)

			r.Get("/settings", h.SettingsPage)
			r.Post("/settings", h.SettingsSave)
			r.Post("/settings/benefits", h.SettingsBenefits)
		})
	})
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	return custommw.NormaliseBase(p)
}

func joinBase(base, suffix string) string {
	if base == "/" {
		return suffix
	}
	return base + suffix
}

// writeTimeout keeps the connection open past the handler deadline so a save
// that reaches the store always gets its response written.
func writeTimeout(configured time.Duration) time.Duration {
	floor := RequestTimeout + 15*time.Second
	if configured < floor {
		return floor
	}
	return configured
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
