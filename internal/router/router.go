package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	mem "eps-tracker/internal/adapters/storage/memory"
	pg "eps-tracker/internal/adapters/storage/postgres"
	sq "eps-tracker/internal/adapters/storage/sqlite"
	_ "eps-tracker/internal/docs"
	"eps-tracker/internal/domain/events"
	"eps-tracker/internal/platform/clock"
	"eps-tracker/internal/platform/config"
	"eps-tracker/internal/platform/logger"
	"eps-tracker/internal/platform/mailer"
	"eps-tracker/internal/realtime"
)

type Options struct {
	Cfg   config.Config
	Log   logger.Logger
	Clock clock.Clock

	// Opcional: repos explícitos (tests). Si vienen, la selección por
	// config se saltea.
	Repo     events.Repository
	Fallback events.Repository
}

// App agrupa lo que main necesita además del handler: el servicio para el
// scheduler del mail y el hub para arrancar su loop.
type App struct {
	Handler http.Handler
	Service *events.Service
	Hub     *realtime.Hub
	Mailer  *mailer.Mailer // nil si no hay SMTP configurado
}

func New(opts Options) (*App, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop{}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}

	repo, fallback, err := selectStores(opts, log)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(log)
	svc := events.NewService(repo, events.ServiceOptions{
		Fallback: fallback,
		Clock:    clk,
		Logger:   log,
		Notifier: hub,
	})

	var ml *mailer.Mailer
	var sender events.SummarySender
	if opts.Cfg.SMTP.Enabled() {
		ml = mailer.New(opts.Cfg.SMTP)
		sender = ml
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	events.RegisterRoutes(r, svc, sender)

	r.Get("/ws", hub.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &App{Handler: r, Service: svc, Hub: hub, Mailer: ml}, nil
}

// selectStores elige el primario y el fallback:
//   - DB_DSN presente: Postgres primario, SQLite local de respaldo si hay path
//   - solo SQLITE_PATH: SQLite primario, sin respaldo
//   - nada: memoria (dev/tests)
func selectStores(opts Options, log logger.Logger) (events.Repository, events.Repository, error) {
	if opts.Repo != nil {
		return opts.Repo, opts.Fallback, nil
	}

	cfg := opts.Cfg
	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(context.Background(), db); err != nil {
			return nil, nil, err
		}

		var fallback events.Repository
		if cfg.SQLitePath != "" {
			lite, err := sq.Open(cfg.SQLitePath)
			if err != nil {
				// sin respaldo local se puede seguir, pero queda dicho
				log.Warn("sqlite fallback unavailable", map[string]any{"err": err.Error()})
			} else {
				fallback = lite
			}
		}
		return pg.NewEventsRepo(db), fallback, nil
	}

	if cfg.SQLitePath != "" {
		lite, err := sq.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return lite, nil, nil
	}

	log.Info("no store configured, using in-memory", nil)
	return mem.NewEventsRepo(), nil, nil
}
