// cmd/container.go
//
// Composition root. Owns infrastructure (DB, Redis) and wires the users,
// processing and auth modules on top of it.
package main

import (
	"context"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/config"
	"github.com/Abraxas-365/userdesk/pkg/iam/auth"
	"github.com/Abraxas-365/userdesk/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/userdesk/pkg/iam/scopes"
	"github.com/Abraxas-365/userdesk/pkg/jobx"
	"github.com/Abraxas-365/userdesk/pkg/jobx/jobxmemory"
	"github.com/Abraxas-365/userdesk/pkg/jobx/jobxredis"
	"github.com/Abraxas-365/userdesk/pkg/logx"
	"github.com/Abraxas-365/userdesk/pkg/processx/processjob"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/Abraxas-365/userdesk/pkg/users/usersapi"
	"github.com/Abraxas-365/userdesk/pkg/users/usersinfra"
	"github.com/Abraxas-365/userdesk/pkg/users/userssrv"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the wired modules.
type Container struct {
	Config *config.Config

	// Infrastructure. DB and Redis are nil when not configured.
	DB    *sqlx.DB
	Redis *redis.Client

	// Users
	UserRepo     users.Repository
	UserService  *userssrv.Service
	UserHandlers *usersapi.Handlers

	// Processing
	Jobs            *jobx.Client
	ProcessHandlers *processjob.Handlers

	// Auth. TokenService is nil when auth is disabled.
	TokenService   *auth.JWTService
	AuthMiddleware *auth.TokenMiddleware
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	if c.Config.Database.Enabled() {
		db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		logx.Info("  ✅ Database connected")
	} else {
		logx.Info("  ⏭️ Database not configured")
	}

	if c.Config.Redis.Enabled() {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v", err)
		}
		logx.Info("  ✅ Redis connected")
	} else {
		logx.Info("  ⏭️ Redis not configured, jobs run on the in-memory queue")
	}

	logx.Info("✅ Infrastructure initialized")
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	c.initUsers()
	c.initProcessing()
	c.initAuth()
}

func (c *Container) initUsers() {
	cfg := c.Config.Users

	switch cfg.Source {
	case config.UsersSourcePostgres:
		repo := usersinfra.NewPostgresRepository(c.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			logx.Fatalf("Failed to prepare users schema: %v", err)
		}
		c.UserRepo = repo

	case config.UsersSourceRemote:
		dir := usersinfra.NewRemoteDirectory(usersinfra.RemoteConfig{
			BaseURL:           cfg.RemoteURL,
			PageSize:          cfg.RemotePageSize,
			Workers:           cfg.RemoteWorkers,
			RequestsPerSecond: cfg.RemoteRPS,
			Timeout:           cfg.RemoteTimeout,
			Retries:           cfg.RemoteRetries,
			RetryBackoff:      cfg.RemoteRetryBackoff,
		})
		c.UserRepo = usersinfra.NewRemoteRepository(dir)

	default:
		c.UserRepo = usersinfra.NewMemoryRepository(users.NewGenerator(uint64(time.Now().UnixNano())).Generate(cfg.Count)...)
	}

	c.UserService = userssrv.NewService(c.UserRepo)
	c.UserHandlers = usersapi.NewHandlers(c.UserService)
	logx.Infof("  ✅ Users module ready (source: %s)", cfg.Source)
}

func (c *Container) initProcessing() {
	var queue jobx.Queue
	if c.Redis != nil {
		queue = jobxredis.NewRedisQueue(c.Redis, jobxredis.WithPrefix(c.Config.Redis.Prefix))
	} else {
		queue = jobxmemory.New()
	}

	c.Jobs = jobx.NewClient(queue, c.Config.Jobx.WorkerOptions()...)
	processjob.NewHandler(c.Config.Processor.Delay).Register(c.Jobs)
	c.ProcessHandlers = processjob.NewHandlers(c.Jobs, c.Config.Processor.Delay)
	logx.Infof("  ✅ Processing module ready (delay: %s)", c.Config.Processor.Delay)
}

func (c *Container) initAuth() {
	if !c.Config.Auth.Enabled() {
		logx.Warn("  ⚠️ AUTH_JWT_SECRET not set, API routes are unauthenticated")
		return
	}

	c.TokenService = auth.NewJWTService(c.Config.Auth.JWTSecret, c.Config.Auth.AccessTokenTTL, c.Config.Auth.Issuer)
	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService, authinfra.NewLogxAuditService())
	logx.Info("  ✅ Auth module ready")
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

// RegisterRoutes mounts the module routes, guarded by scopes when auth
// is enabled.
func (c *Container) RegisterRoutes(app fiber.Router) {
	var usersMW, exportMW, processMW, processWriteMW []fiber.Handler
	if am := c.AuthMiddleware; am != nil {
		usersMW = []fiber.Handler{am.Authenticate(), am.RequireScope(scopes.UsersRead)}
		exportMW = []fiber.Handler{am.RequireScope(scopes.UsersExport)}
		processMW = []fiber.Handler{am.Authenticate(), am.RequireScope(scopes.ProcessRead)}
		processWriteMW = []fiber.Handler{am.RequireScope(scopes.ProcessWrite)}
	}

	c.UserHandlers.RegisterRoutes(app, usersMW, exportMW...)
	logx.Info("✓ User routes registered")

	c.ProcessHandlers.RegisterRoutes(app, processMW, processWriteMW...)
	logx.Info("✓ Process routes registered")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// StartBackgroundServices runs the job workers until ctx is cancelled.
// The returned channel closes once they have stopped.
func (c *Container) StartBackgroundServices(ctx context.Context) <-chan struct{} {
	logx.Info("🔄 Starting background services...")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Jobs.Start(ctx); err != nil {
			logx.WithError(err).Error("job workers stopped")
		}
	}()
	return done
}

// Health reports the state of each configured dependency.
func (c *Container) Health(ctx context.Context) map[string]error {
	checks := map[string]error{}
	if c.DB != nil {
		checks["db"] = c.DB.PingContext(ctx)
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping(ctx).Err()
	}
	return checks
}

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
