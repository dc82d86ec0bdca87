package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// newApp builds the fiber app with global middleware and every route.
func newApp(container *Container) *fiber.App {
	cfg := container.Config.Server

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             cfg.BodyLimit,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.StackTrace,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(requestContext)

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, DELETE, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID, Content-Disposition",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler(cfg.AppName, cfg.Version))

	container.RegisterRoutes(app)

	app.Use(notFoundHandler)
	return app
}

// requestContext copies the request id into the user context so
// logx.WithContext picks it up downstream.
func requestContext(c *fiber.Ctx) error {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		c.SetUserContext(context.WithValue(c.UserContext(), logx.RequestIDKey, id))
	}
	return c.Next()
}

// ============================================================================
// Handler Functions
// ============================================================================

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		health := fiber.Map{
			"status":  "healthy",
			"service": container.Config.Server.AppName,
			"version": container.Config.Server.Version,
			"users":   container.Config.Users.Source,
		}

		status := fiber.StatusOK
		for name, err := range container.Health(ctx) {
			if err != nil {
				health[name] = "unhealthy"
				health[name+"_error"] = err.Error()
				health["status"] = "degraded"
				status = fiber.StatusServiceUnavailable
			} else {
				health[name] = "healthy"
			}
		}

		return c.Status(status).JSON(health)
	}
}

func infoHandler(name, version string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": name,
			"version": version,
			"endpoints": fiber.Map{
				"health": "GET /health",
				"users": fiber.Map{
					"list":   "GET /api/v1/users",
					"get":    "GET /api/v1/users/:id",
					"export": "POST /api/v1/users/export",
				},
				"process": fiber.Map{
					"submit": "POST /api/v1/process",
					"get":    "GET /api/v1/process/jobs/:id",
					"cancel": "DELETE /api/v1/process/jobs/:id",
				},
			},
		})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return errx.Respond(c, errx.NotFound("Route not found").
		WithDetail("path", c.Path()).
		WithDetail("method", c.Method()))
}

// globalErrorHandler logs errors that escape handlers and renders them
// as the standard error body.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithContext(c.UserContext()).WithFields(logx.Fields{
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
	}).WithError(err).Error("request error")

	return errx.Respond(c, err)
}

// ============================================================================
// Lifecycle
// ============================================================================

// serve runs the HTTP server and job workers until SIGINT or SIGTERM.
func serve(container *Container) error {
	app := newApp(container)
	cfg := container.Config.Server

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workersDone := container.StartBackgroundServices(ctx)

	listenErr := make(chan error, 1)
	go func() {
		line := strings.Repeat("=", 61)
		logx.Info(line)
		logx.Infof("🚀 Server listening on port %s", cfg.Port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", cfg.Port)
		logx.Info(line)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		stop()
		<-workersDone
		return err
	case <-ctx.Done():
	}

	logx.Info("🛑 Shutting down gracefully...")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}
	<-workersDone

	logx.Info("✅ Server exited successfully")
	return nil
}
