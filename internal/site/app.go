// Package site composes the product catalog, auth, upload and inquiry
// handlers into the single HTTP surface served under /api.
package site

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SupremeFabrics/internal/auth"
	"SupremeFabrics/internal/catalog"
	"SupremeFabrics/internal/inquiry"
	"SupremeFabrics/internal/upload"
	"SupremeFabrics/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type ReadyCheck struct {
	Name   string
	Pinger Pinger
}

type Deps struct {
	Products  catalog.Store
	Cache     *catalog.ResponseCache
	Gate      *auth.Gate
	Inquiries inquiry.Store
	Images    upload.ImageStore

	// Static serves /generated_images/*; nil when images are hosted elsewhere.
	Static      http.Handler
	SubmitDelay time.Duration
	// Extra readiness checks beyond the stores above.
	Checks []ReadyCheck
}

const (
	compressLevel = 6
	readyTimeout  = 2 * time.Second
)

func (d Deps) validate() error {
	var errs []error
	if d.Products == nil {
		errs = append(errs, errors.New("products store is required"))
	}
	if d.Cache == nil {
		errs = append(errs, errors.New("response cache is required"))
	}
	if d.Gate == nil {
		errs = append(errs, errors.New("auth gate is required"))
	}
	if d.Inquiries == nil {
		errs = append(errs, errors.New("inquiry store is required"))
	}
	if d.Images == nil {
		errs = append(errs, errors.New("image store is required"))
	}
	return errors.Join(errs...)
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	checks := append([]ReadyCheck{
		{Name: "products", Pinger: deps.Products},
		{Name: "users", Pinger: deps.Gate.Users},
		{Name: "inquiries", Pinger: deps.Inquiries},
	}, deps.Checks...)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(checks, log))

	admin := deps.Gate.RequireAdmin

	products := &catalog.Server{Store: deps.Products, Cache: deps.Cache, Admin: admin, Log: log}
	authSrv := &auth.Server{Gate: deps.Gate, Log: log}
	uploads := &upload.Server{Images: deps.Images, Admin: admin, Log: log}
	inquiries := &inquiry.Server{Store: deps.Inquiries, Admin: admin, Log: log, Delay: deps.SubmitDelay}

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", authSrv.Routes())
		api.Mount("/products", products.Routes())
		api.Mount("/upload", uploads.Routes())
		api.Mount("/contact", inquiries.ContactRoutes())
		api.Mount("/quote", inquiries.QuoteRoutes())

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
		})
	})

	if deps.Static != nil {
		r.Handle(upload.DefaultURLPrefix+"/*", deps.Static)
	}

	return r, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(chimw.Compress(compressLevel))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(checks []ReadyCheck, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, c := range checks {
			if err := c.Pinger.Ping(ctx); err != nil {
				log.Warn("readyz failed: "+c.Name, zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, c.Name+" not ready", nil)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}
