package wire

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/alanyang/prompt-manager/internal/adapter/fallback"
	"github.com/alanyang/prompt-manager/internal/adapter/file"
	"github.com/alanyang/prompt-manager/internal/adapter/memory"
	pgdb "github.com/alanyang/prompt-manager/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/prompt-manager/internal/adapter/postgres/eventbus"
	pgkv "github.com/alanyang/prompt-manager/internal/adapter/postgres/kv"
	"github.com/alanyang/prompt-manager/internal/adapter/sqlite"
	"github.com/alanyang/prompt-manager/internal/config"
	porteventbus "github.com/alanyang/prompt-manager/internal/port/eventbus"
	portstorage "github.com/alanyang/prompt-manager/internal/port/storage"
	"github.com/alanyang/prompt-manager/internal/service/backup"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
	"github.com/alanyang/prompt-manager/internal/transport"
	mcptransport "github.com/alanyang/prompt-manager/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Server    *http.Server
	Service   *promptsvc.Service
	Scheduler *backup.Scheduler // nil when BACKUP_SCHEDULE is empty
	MCPServer *mcptransport.Server

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Storage is the selected backend plus what must be released with it.
type Storage struct {
	Store portstorage.Store
	Pool  *pgxpool.Pool // set only when the postgres backend is live

	closers []func()
}

func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenStore opens the backend named by cfg.StorageBackend. When it cannot be
// opened or does not answer Ping, the in-memory store is used instead and the
// process keeps running without durability.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := &Storage{}
	var primary portstorage.Store

	switch cfg.StorageBackend {
	case config.BackendFile:
		primary = file.New(cfg.DataDir)
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			logger.Warn("failed to open sqlite store", zap.String("path", cfg.SQLitePath), zap.Error(err))
			break
		}
		st.closers = append(st.closers, func() { _ = db.Close() })
		primary = db
	case config.BackendPostgres:
		pool, err := pgdb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("failed to connect to postgres", zap.Error(err))
			break
		}
		st.closers = append(st.closers, pool.Close)
		st.Pool = pool
		primary = pgkv.New(pool)
	case config.BackendMemory:
		primary = memory.NewStore()
	}

	st.Store = fallback.Select(ctx, primary, memory.NewStore(), logger)
	if st.Store != primary {
		st.Close()
		st.Pool = nil
	}
	logger.Info("storage selected", zap.String("backend", string(cfg.StorageBackend)), zap.Bool("durable", st.Store == primary && cfg.StorageBackend != config.BackendMemory))
	return st
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{}

	// ── Storage ──────────────────────────────────────────────────────────────
	storage := OpenStore(ctx, cfg, logger)
	app.closers = append(app.closers, storage.Close)

	// ── Event bus ────────────────────────────────────────────────────────────
	// Subscriptions end before storage closes: a LISTEN holds a pool connection.
	subCtx, cancelSubs := context.WithCancel(ctx)
	app.closers = append(app.closers, cancelSubs)

	var eventBus porteventbus.EventBus = memory.NewEventBus()
	if storage.Pool != nil {
		eventBus = pgeventbus.New(storage.Pool)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	var opts []promptsvc.Option
	if cfg.StrictNotFound {
		opts = append(opts, promptsvc.WithStrictNotFound())
	}
	svc := promptsvc.NewService(storage.Store, eventBus, logger, opts...)
	if err := svc.Load(ctx); err != nil {
		logger.Error("failed to load prompts, starting with an empty collection", zap.Error(err))
	}
	app.Service = svc

	// ── Transport ─────────────────────────────────────────────────────────────
	if cfg.MCPEnabled {
		app.MCPServer = mcptransport.New(subCtx, svc, logger)
	}
	router := transport.NewRouter(subCtx, svc, eventBus, app.MCPServer, logger)

	app.Server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// ── Scheduled backups ─────────────────────────────────────────────────────
	if cfg.BackupSchedule != "" {
		sched := backup.New(svc, file.WriteExport, cfg.BackupDir, logger)
		if err := sched.Start(cfg.BackupSchedule); err != nil {
			sched.Stop()
			app.Close()
			return nil, err
		}
		app.Scheduler = sched
		app.closers = append(app.closers, sched.Stop)
	}

	logger.Info("application wired",
		zap.String("port", cfg.Port),
		zap.Int("prompts", len(svc.List(ctx))),
		zap.Bool("mcp", app.MCPServer != nil),
		zap.Bool("backups", app.Scheduler != nil),
	)
	return app, nil
}
