package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"SupremeFabrics/internal/auth"
	"SupremeFabrics/internal/cache"
	"SupremeFabrics/internal/catalog"
	"SupremeFabrics/internal/config"
	"SupremeFabrics/internal/inquiry"
	"SupremeFabrics/internal/migrations"
	"SupremeFabrics/internal/site"
	"SupremeFabrics/internal/upload"
	"SupremeFabrics/pkg/kit"
)

const (
	service      = "site"
	pruneEvery   = time.Hour
	startTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := kit.NewLogger(service, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, cleanup, err := build(ctx, cfg, log)
	if err != nil {
		log.Fatal("init site failed", zap.Error(err))
	}
	defer cleanup()

	if err := kit.RunHTTPServer(ctx, cfg.Addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

type stores struct {
	products  catalog.Store
	users     auth.UserStore
	inquiries inquiry.Store
}

func build(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ http.Handler, _ func(), err error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			closeAll()
		}
	}()

	sctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	st, closeDB, err := openStores(sctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeDB)

	if created, err := auth.EnsureAdmin(sctx, st.users, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return nil, nil, fmt.Errorf("ensure admin: %w", err)
	} else if created {
		log.Info("admin user created", zap.String("username", cfg.AdminUsername))
	}

	var checks []site.ReadyCheck

	var sessions auth.SessionStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func() { _ = rdb.Close() })

		rs := auth.NewRedisSessionStore(rdb)
		if err := rs.Ping(sctx); err != nil {
			return nil, nil, err
		}
		sessions = rs
		checks = append(checks, site.ReadyCheck{Name: "sessions", Pinger: rs})
	} else {
		ms := auth.NewMemSessionStore()
		go ms.Run(ctx, pruneEvery, log)
		sessions = ms
	}

	images, static, err := openImages(sctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	cacheMetrics := cache.NewMetrics(reg, "products")

	h, err := site.NewHandler(
		site.Deps{
			Products: st.products,
			Cache:    catalog.NewResponseCache(cfg.CacheTTL, cache.WithMetrics(cacheMetrics)),
			Gate: &auth.Gate{
				Users:    st.users,
				Sessions: sessions,
				Signer:   auth.NewCookieSigner(cfg.SessionSecret),
				TTL:      cfg.SessionTTL,
				Secure:   cfg.Production(),
				Log:      log,
			},
			Inquiries:   st.inquiries,
			Images:      images,
			Static:      static,
			SubmitDelay: cfg.SubmitDelay,
			Checks:      checks,
		},
		site.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.MetricsToken != "",
			MetricsToken:   cfg.MetricsToken,
		},
	)
	if err != nil {
		return nil, nil, err
	}
	return h, closeAll, nil
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (stores, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		return stores{
			products:  catalog.NewMemStore(),
			users:     auth.NewMemUserStore(),
			inquiries: inquiry.NewMemStore(),
		}, func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return stores{}, nil, fmt.Errorf("open db: %w", err)
	}
	closeDB := func() { _ = db.Close() }

	if err := db.PingContext(ctx); err != nil {
		closeDB()
		return stores{}, nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		closeDB()
		return stores{}, nil, err
	}

	st := stores{
		products:  catalog.NewPostgresStore(db),
		users:     auth.NewPostgresUserStore(db),
		inquiries: inquiry.NewPostgresStore(db),
	}

	n, err := catalog.Seed(ctx, st.products)
	if err != nil {
		closeDB()
		return stores{}, nil, err
	}
	if n > 0 {
		log.Info("seeded products", zap.Int("count", n))
	}
	return st, closeDB, nil
}

func openImages(ctx context.Context, cfg *config.Config) (upload.ImageStore, http.Handler, error) {
	switch cfg.ImageBackend {
	case config.ImagesS3:
		s3cfg := upload.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		}
		client, err := upload.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, nil, err
		}
		return upload.NewS3Store(client, s3cfg), nil, nil
	default:
		fs, err := upload.NewFSStore(cfg.ImageDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs.Handler(), nil
	}
}
